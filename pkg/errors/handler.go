package errors

import (
	"errors"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// installed wraps the process-wide handler so it can be swapped atomically.
// Binding callbacks may report from any goroutine.
type installed struct {
	h ErrorHandler
}

var current atomic.Pointer[installed]

func init() {
	SetHandler(nil)
}

// SetHandler installs the process-wide error handler. Pass nil to restore
// the default LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&installed{h: h})
}

// Handler returns the installed error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// stamp fills a zero timestamp with the current time.
func stamp(ts *time.Time) {
	if ts.IsZero() {
		*ts = time.Now()
	}
}

// Report sends a structured error to the installed handler.
func Report(err *SproutError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleError(err)
}

// ReportPanic sends a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

// ReportBuildError sends a failed widget render to the installed handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleBuildError(err)
}

// Wrap returns err as a SproutError of the given kind, or nil for a nil err.
// An err that already is a SproutError is returned unchanged.
func Wrap(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var existing *SproutError
	if errors.As(err, &existing) {
		return err
	}
	return &SproutError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// Recover reports a panic unwinding through op. Defer it directly:
//
//	defer errors.Recover("engine.Dispatch")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
		})
	}
}

// RecoverEvent reports a panic from an event handler as a KindEvent error
// carrying an EventError. Defer it directly around the handler call.
func RecoverEvent(event, node, target string) {
	if r := recover(); r != nil {
		evErr := &EventError{Event: event, Node: node, Target: target, Value: r}
		if err, ok := r.(error); ok {
			evErr.Err = err
		}
		Report(&SproutError{
			Op:         "events.Dispatch",
			Kind:       KindEvent,
			Err:        evErr,
			StackTrace: CaptureStack(),
		})
	}
}

// CaptureStack returns the goroutine's call stack, one function per entry,
// starting at the caller of the deferred recover helper.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteByte('\n')
		if !more {
			break
		}
	}
	return sb.String()
}
