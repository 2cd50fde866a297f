// Package term hosts a Sprout engine in a terminal using tcell.
package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/sprout/pkg/config"
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/engine"
	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

// Host runs the poll loop: tcell events become input for the engine, and
// every requested frame is painted to the screen.
type Host struct {
	screen  tcell.Screen
	engine  *engine.Engine
	painter painter
	// QuitKey stops Run. Defaults to Escape; Ctrl-C always quits.
	QuitKey tcell.Key

	buttons    tcell.ButtonMask
	pointer    graphics.Offset
	hasPointer bool
	done    chan struct{}
}

// NewHost creates a host drawing root on screen. The screen must be
// initialized; the viewport is taken from its size.
func NewHost(screen tcell.Screen, cfg *config.Resolved, root core.Element) *Host {
	if cfg == nil {
		cfg = config.Default()
	}
	resolved := *cfg
	w, h := screen.Size()
	resolved.Viewport = graphics.Size{Width: float64(w), Height: float64(h)}
	// Cells are whole units already.
	resolved.PixelSnap = true

	host := &Host{
		screen:  screen,
		engine:  engine.New(&resolved, root, CellMeasurer{}),
		painter: painter{screen: screen},
		QuitKey: tcell.KeyEscape,
		done:    make(chan struct{}),
	}
	host.engine.SetOnNeedsFrame(func() {
		// Wakes PollEvent when a binding changes off the UI goroutine. A
		// full queue already has a wakeup pending.
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	return host
}

// Engine returns the hosted engine.
func (h *Host) Engine() *engine.Engine {
	return h.engine
}

// Run paints the first frame and processes events until the quit key,
// Ctrl-C or Stop.
func (h *Host) Run() error {
	h.screen.EnableMouse()
	if err := h.Draw(); err != nil {
		return err
	}
	for {
		select {
		case <-h.done:
			return nil
		default:
		}

		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if key, ok := ev.(*tcell.EventKey); ok && (key.Key() == h.QuitKey || key.Key() == tcell.KeyCtrlC) {
			return nil
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			h.screen.Sync()
		}
		if !h.navigate(ev) {
			if input := h.Translate(ev); len(input) > 0 {
				h.engine.ProcessEvents(input)
			}
		}
		if h.engine.NeedsFrame() {
			if err := h.Draw(); err != nil {
				return err
			}
		}
	}
}

// Stop ends Run after the next event.
func (h *Host) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
		_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// Draw runs a frame and paints it.
func (h *Host) Draw() error {
	frame, err := h.engine.Frame()
	if err != nil {
		return err
	}
	depths := make(map[tree.Index]int, len(frame.Primitives))
	h.engine.Inspect(func(rt *core.Runtime) {
		for _, prim := range frame.Primitives {
			depths[prim.Node] = rt.Depth(prim.Node)
		}
	})
	h.painter.paint(frame, func(idx tree.Index) int { return depths[idx] })
	h.screen.Show()
	return nil
}

// Translate converts a tcell event to engine input. Mouse events yield a
// move when the pointer changed cells, then presses and releases inferred
// from the button mask, since tcell reports state rather than transitions.
func (h *Host) Translate(ev tcell.Event) []events.InputEvent {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, hgt := ev.Size()
		return []events.InputEvent{events.WindowResize{Width: float64(w), Height: float64(hgt)}}
	case *tcell.EventKey:
		if r, ok := keyRune(ev); ok {
			return []events.InputEvent{events.CharacterInput{Char: r}}
		}
	case *tcell.EventMouse:
		return h.translateMouse(ev)
	}
	return nil
}

// navigate handles focus keys: Tab and Backtab cycle focus, Alt with an
// arrow moves it spatially. It reports whether the key was consumed.
func (h *Host) navigate(event tcell.Event) bool {
	ev, ok := event.(*tcell.EventKey)
	if !ok {
		return false
	}
	switch ev.Key() {
	case tcell.KeyTab:
		h.engine.MoveFocus(1)
		return true
	case tcell.KeyBacktab:
		h.engine.MoveFocus(-1)
		return true
	}
	if ev.Modifiers()&tcell.ModAlt == 0 {
		return false
	}
	dir, ok := arrowDirections[ev.Key()]
	if !ok {
		return false
	}
	h.engine.FocusInDirection(dir)
	return true
}

var arrowDirections = map[tcell.Key]events.Direction{
	tcell.KeyUp:    events.DirectionUp,
	tcell.KeyDown:  events.DirectionDown,
	tcell.KeyLeft:  events.DirectionLeft,
	tcell.KeyRight: events.DirectionRight,
}

func keyRune(ev *tcell.EventKey) (rune, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		return ev.Rune(), true
	case tcell.KeyEnter:
		return '\n', true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return '\b', true
	}
	return 0, false
}

var buttonMap = []struct {
	mask   tcell.ButtonMask
	button events.Button
}{
	{tcell.ButtonPrimary, events.ButtonPrimary},
	{tcell.ButtonSecondary, events.ButtonSecondary},
	{tcell.ButtonMiddle, events.ButtonMiddle},
}

func (h *Host) translateMouse(ev *tcell.EventMouse) []events.InputEvent {
	x, y := ev.Position()
	pos := graphics.Offset{X: float64(x), Y: float64(y)}
	buttons := ev.Buttons()

	var out []events.InputEvent
	if !h.hasPointer || pos != h.pointer {
		h.pointer, h.hasPointer = pos, true
		out = append(out, events.PointerMove{X: pos.X, Y: pos.Y})
	}
	for _, b := range buttonMap {
		was, is := h.buttons&b.mask != 0, buttons&b.mask != 0
		switch {
		case is && !was:
			out = append(out, events.PointerDown{X: pos.X, Y: pos.Y, Button: b.button})
		case was && !is:
			out = append(out, events.PointerUp{X: pos.X, Y: pos.Y, Button: b.button})
		}
	}
	h.buttons = buttons & (tcell.ButtonPrimary | tcell.ButtonSecondary | tcell.ButtonMiddle)

	var dx, dy float64
	if buttons&tcell.WheelUp != 0 {
		dy--
	}
	if buttons&tcell.WheelDown != 0 {
		dy++
	}
	if buttons&tcell.WheelLeft != 0 {
		dx--
	}
	if buttons&tcell.WheelRight != 0 {
		dx++
	}
	if dx != 0 || dy != 0 {
		out = append(out, events.Scroll{X: pos.X, Y: pos.Y, DeltaX: dx, DeltaY: dy})
	}
	return out
}
