package testing

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/go-drift/sprout/pkg/config"
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/engine"
	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/layout"
	"github.com/go-drift/sprout/pkg/rendering"
	"github.com/go-drift/sprout/pkg/tree"
)

const (
	// DefaultTestWidth is the default viewport width.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default viewport height.
	DefaultTestHeight = 600
)

// ErrSettleTimeout is returned when PumpAndSettle runs out of frames.
var ErrSettleTimeout = stderrors.New("PumpAndSettle: tree did not settle")

// ErrNotMounted is returned by operations that need a pumped tree.
var ErrNotMounted = stderrors.New("no widget tree: call PumpWidget first")

// WidgetTester drives an engine frame by frame without a host.
type WidgetTester struct {
	engine    *engine.Engine
	size      graphics.Size
	pixelSnap bool
	measurer  layout.TextMeasurer
	frame     *rendering.Frame
	errors    *errorLog
}

// NewWidgetTester creates a tester with the default viewport. Build errors
// and handler panics are captured instead of logged; call Cleanup to restore
// the global handler, or use NewWidgetTesterWithT.
func NewWidgetTester() *WidgetTester {
	t := &WidgetTester{
		size:      graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
		pixelSnap: true,
		errors:    &errorLog{},
	}
	errors.SetHandler(t.errors)
	return t
}

// NewWidgetTesterWithT creates a tester that cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup restores the default error handler.
func (t *WidgetTester) Cleanup() {
	errors.SetHandler(nil)
	t.engine = nil
}

// SetSize sets the viewport. Must be called before PumpWidget.
func (t *WidgetTester) SetSize(size graphics.Size) {
	t.size = size
}

// SetPixelSnap toggles pixel snapping. Must be called before PumpWidget.
func (t *WidgetTester) SetPixelSnap(snap bool) {
	t.pixelSnap = snap
}

// SetMeasurer replaces the text measurer. Must be called before PumpWidget.
func (t *WidgetTester) SetMeasurer(m layout.TextMeasurer) {
	t.measurer = m
}

// PumpWidget mounts root in a fresh engine and runs one frame.
func (t *WidgetTester) PumpWidget(root core.Element) error {
	cfg := config.Default()
	cfg.Viewport = t.size
	cfg.PixelSnap = t.pixelSnap
	t.engine = engine.New(cfg, root, t.measurer)
	return t.Pump()
}

// Pump runs a single frame: dispatched callbacks, render, layout, projection.
func (t *WidgetTester) Pump() error {
	if t.engine == nil {
		return ErrNotMounted
	}
	frame, err := t.engine.Frame()
	if err != nil {
		return err
	}
	t.frame = frame
	return nil
}

// PumpAndSettle pumps until no frame is requested, up to maxFrames.
func (t *WidgetTester) PumpAndSettle(maxFrames int) error {
	for range maxFrames {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.engine.NeedsFrame() {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Dispatch queues fn for the next frame, mirroring engine.Dispatch.
func (t *WidgetTester) Dispatch(fn func()) {
	if t.engine != nil {
		t.engine.Dispatch(fn)
	}
}

// Engine returns the engine behind the tester, or nil before PumpWidget.
func (t *WidgetTester) Engine() *engine.Engine {
	return t.engine
}

// Frame returns the frame produced by the last pump.
func (t *WidgetTester) Frame() *rendering.Frame {
	return t.frame
}

// Root returns the root node.
func (t *WidgetTester) Root() tree.Index {
	if t.engine == nil {
		return tree.Index{}
	}
	return t.engine.Root()
}

// Rect returns the laid-out rectangle of idx.
func (t *WidgetTester) Rect(idx tree.Index) (graphics.Rect, bool) {
	if t.engine == nil {
		return graphics.Rect{}, false
	}
	return t.engine.Rect(idx)
}

// Find evaluates a finder against the current tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	result := FinderResult{finder: finder}
	if t.engine == nil {
		return result
	}
	t.engine.Inspect(func(rt *core.Runtime) {
		result.nodes = finder.Evaluate(rt)
	})
	return result
}

// BuildErrors returns the widget failures reported since the tester was
// created.
func (t *WidgetTester) BuildErrors() []*errors.BuildError {
	return t.errors.builds()
}

// Errors returns the structured errors reported since the tester was
// created, such as event handler failures.
func (t *WidgetTester) Errors() []*errors.SproutError {
	return t.errors.reported()
}

// Panics returns the panics recovered outside renders and event handlers,
// such as in dispatched callbacks or dispose functions.
func (t *WidgetTester) Panics() []*errors.PanicError {
	return t.errors.recoveredPanics()
}

type errorLog struct {
	mu        sync.Mutex
	errs      []*errors.SproutError
	panics    []*errors.PanicError
	buildErrs []*errors.BuildError
}

func (r *errorLog) HandleError(err *errors.SproutError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *errorLog) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

func (r *errorLog) HandleBuildError(err *errors.BuildError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildErrs = append(r.buildErrs, err)
}

func (r *errorLog) builds() []*errors.BuildError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.BuildError(nil), r.buildErrs...)
}

func (r *errorLog) recoveredPanics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

func (r *errorLog) reported() []*errors.SproutError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.SproutError(nil), r.errs...)
}
