// Package errors provides structured error reporting for the runtime.
//
// Failures inside the render pass and event dispatch are isolated: they are
// recovered, wrapped in one of the types below and sent to a process-wide
// ErrorHandler instead of aborting the frame.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindBuild indicates a widget render failure.
	KindBuild
	// KindPanic indicates a recovered panic outside a widget render.
	KindPanic
	// KindEvent indicates an event handler failure.
	KindEvent
	// KindConfig indicates invalid configuration.
	KindConfig
	// KindFatal indicates a broken runtime invariant. The frame can't proceed.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindPanic:
		return "panic"
	case KindEvent:
		return "event"
	case KindConfig:
		return "config"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ErrDirtySetPoisoned is returned when the dirty set was left in an
// undefined state by a panic while its lock was held.
var ErrDirtySetPoisoned = errors.New("dirty set poisoned by an earlier panic")

// SproutError is a structured runtime error.
type SproutError struct {
	// Op is the operation that failed (e.g. "core.Render").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SproutError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SproutError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g. "events.Dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a widget render that failed. The node keeps its
// previous sub-tree, or renders empty if it had none.
type BuildError struct {
	// Widget is the type name of the widget that failed.
	Widget string
	// Node is the printed index of the failing node.
	Node string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error, when the panic value was an error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Render() at %s: %v", e.Widget, e.Node, e.Err)
	}
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Render() at %s: %v", e.Widget, e.Node, e.Recovered)
	}
	return fmt.Sprintf("unknown error in %s.Render() at %s", e.Widget, e.Node)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// EventError represents an event handler that panicked. Dispatch carries on
// as if the handler had returned normally.
type EventError struct {
	// Event is the event kind being delivered.
	Event string
	// Node is the printed index of the node whose handler failed.
	Node string
	// Target is the printed index of the event's target.
	Target string
	// Value is the panic value.
	Value any
	// Err is the panic value when it was an error.
	Err error
}

func (e *EventError) Error() string {
	if e.Node == e.Target {
		return fmt.Sprintf("panic in %s handler at %s: %v", e.Event, e.Node, e.Value)
	}
	return fmt.Sprintf("panic in %s handler at %s (target %s): %v", e.Event, e.Node, e.Target, e.Value)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// MissingProviderError reports that a widget required a provided value that
// no ancestor supplies.
type MissingProviderError struct {
	// Type is the requested value type.
	Type string
	// Node is the printed index of the consuming node.
	Node string
}

func (e *MissingProviderError) Error() string {
	return fmt.Sprintf("no provider for %s above %s", e.Type, e.Node)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SproutError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a widget render fails.
	HandleBuildError(err *BuildError)
}
