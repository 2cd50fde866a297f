// Package engine runs frames: input dispatch, render, layout and projection.
//
// An Engine owns one widget tree. The host feeds it input with ProcessEvents
// and pulls frames with Frame; both are serialized by the engine's frame
// lock, so a host may call them from different goroutines.
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/sprout/pkg/config"
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/layout"
	"github.com/go-drift/sprout/pkg/rendering"
	"github.com/go-drift/sprout/pkg/style"
	"github.com/go-drift/sprout/pkg/text"
	"github.com/go-drift/sprout/pkg/tree"
)

// Stats reports engine counters.
type Stats struct {
	core.Stats
	Frames       int
	AverageFrame time.Duration
}

// Engine wires the runtime, layout engine, dispatcher and projector together.
type Engine struct {
	// frameLock serializes frames and input processing.
	frameLock sync.Mutex

	runtime    *core.Runtime
	layout     *layout.Engine
	dispatcher *events.Dispatcher
	projector  *rendering.Projector
	viewport   graphics.Size
	frames     int
	timings    *FrameTimingBuffer

	dispatchMu    sync.Mutex
	dispatchQueue []func()

	needsFrame   atomic.Bool
	onNeedsFrame atomic.Pointer[func()]

	debug debugServer
}

// New creates an engine for root. A nil cfg uses config.Default(); a nil
// measurer sizes text with the x/image basic font.
func New(cfg *config.Resolved, root core.Element, measurer layout.TextMeasurer) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if measurer == nil {
		measurer = text.NewMeasurer()
	}

	e := &Engine{
		runtime:   core.NewRuntime(),
		projector: rendering.NewProjector(),
		viewport:  cfg.Viewport,
		timings:   NewFrameTimingBuffer(60),
	}
	e.layout = layout.NewEngine(e.runtime, measurer, layout.Options{
		PixelSnap: cfg.PixelSnap,
		Debug:     cfg.LayoutWarnings,
	})
	e.dispatcher = events.NewDispatcher(e.runtime, e.layout)
	e.dispatcher.OnResize = func(size graphics.Size) {
		e.viewport = size
		e.requestFrame()
	}
	e.runtime.PointerSource = e.dispatcher.Pointer
	e.runtime.OnNeedsFrame = e.requestFrame
	e.runtime.Mount(root)
	return e
}

// SetOnNeedsFrame installs a callback fired when the engine wants a frame.
// It may be called from any goroutine.
func (e *Engine) SetOnNeedsFrame(fn func()) {
	if fn == nil {
		e.onNeedsFrame.Store(nil)
		return
	}
	e.onNeedsFrame.Store(&fn)
}

func (e *Engine) requestFrame() {
	e.needsFrame.Store(true)
	if fn := e.onNeedsFrame.Load(); fn != nil {
		(*fn)()
	}
}

// NeedsFrame reports whether a frame has been requested since the last one.
func (e *Engine) NeedsFrame() bool {
	return e.needsFrame.Load()
}

// Dispatch schedules callback to run at the start of the next frame, under
// the frame lock. It is safe to call from any goroutine; the callback must not
// call other Engine methods.
func (e *Engine) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	e.dispatchMu.Lock()
	e.dispatchQueue = append(e.dispatchQueue, callback)
	e.dispatchMu.Unlock()
	e.requestFrame()
}

func (e *Engine) drainDispatchQueue() []func() {
	e.dispatchMu.Lock()
	callbacks := e.dispatchQueue
	e.dispatchQueue = nil
	e.dispatchMu.Unlock()
	return callbacks
}

// ProcessEvents delivers host input in order. Handlers usually set bindings;
// the resulting renders happen in the next Frame.
func (e *Engine) ProcessEvents(input []events.InputEvent) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	e.dispatcher.Process(input)
	// Input can change hover and focus styling without touching bindings.
	e.requestFrame()
}

// Frame runs dispatched callbacks, renders dirty nodes, lays out and
// projects the tree. The error is non-nil only when the runtime can no longer
// render (a poisoned dirty set); it is also reported to the error handler.
func (e *Engine) Frame() (*rendering.Frame, error) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()

	start := time.Now()
	e.needsFrame.Store(false)
	for _, callback := range e.drainDispatchQueue() {
		e.runCallback(callback)
	}

	res, err := e.runtime.Render()
	if err != nil {
		if sproutErr, ok := err.(*errors.SproutError); ok {
			errors.Report(sproutErr)
		}
		return nil, err
	}
	e.applyRender(res)

	e.layout.Flush(e.runtime.Root(), e.viewport)
	frame := e.projector.Project(e.runtime.PaintOrder(), frameSource{runtime: e.runtime, layout: e.layout})

	e.frames++
	e.timings.Add(time.Since(start))
	return frame, nil
}

func (e *Engine) runCallback(callback func()) {
	defer errors.Recover("engine.Dispatch")
	callback()
}

// applyRender forwards structural changes to the layout engine and
// dispatcher.
func (e *Engine) applyRender(res core.RenderResult) {
	for _, idx := range res.Removed {
		e.layout.Forget(idx)
		e.dispatcher.Forget(idx)
	}
	for _, idx := range res.Created {
		e.layout.MarkSizeChanged(idx)
	}
	for _, idx := range res.Restyled {
		e.layout.MarkSizeChanged(idx)
	}
	for _, idx := range res.Touched {
		e.layout.MarkNeedsLayout(idx)
	}
}

// Viewport returns the current viewport size.
func (e *Engine) Viewport() graphics.Size {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.viewport
}

// Root returns the root node.
func (e *Engine) Root() tree.Index {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.runtime.Root()
}

// Rect returns the laid-out rectangle of idx from the last frame.
func (e *Engine) Rect(idx tree.Index) (graphics.Rect, bool) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.layout.Rect(idx)
}

// Focused returns the node with input focus.
func (e *Engine) Focused() (tree.Index, bool) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.dispatcher.Focused()
}

// RequestFocus moves focus to idx if it is focusable.
func (e *Engine) RequestFocus(idx tree.Index) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	e.dispatcher.RequestFocus(idx)
}

// MoveFocus cycles focus delta steps through focusable nodes in paint order.
func (e *Engine) MoveFocus(delta int) bool {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	if !e.dispatcher.MoveFocus(delta) {
		return false
	}
	e.requestFrame()
	return true
}

// FocusInDirection moves focus to the nearest focusable node in dir.
func (e *Engine) FocusInDirection(dir events.Direction) bool {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	if !e.dispatcher.FocusInDirection(dir) {
		return false
	}
	e.requestFrame()
	return true
}

// Inspect calls fn with the runtime while holding the frame lock. fn must not
// call back into the engine.
func (e *Engine) Inspect(fn func(rt *core.Runtime)) {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	fn(e.runtime)
}

// Stats returns runtime and frame counters.
func (e *Engine) Stats() Stats {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return Stats{
		Stats:        e.runtime.Stats(),
		Frames:       e.frames,
		AverageFrame: e.timings.Average(),
	}
}

type frameSource struct {
	runtime *core.Runtime
	layout  *layout.Engine
}

func (s frameSource) Style(idx tree.Index) *style.Style {
	return s.runtime.Style(idx)
}

func (s frameSource) Rect(idx tree.Index) (graphics.Rect, bool) {
	return s.layout.Rect(idx)
}
