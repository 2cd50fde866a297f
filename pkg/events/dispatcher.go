package events

import (
	"sync"

	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

// Tree is the view of the committed widget tree the dispatcher needs.
type Tree interface {
	Contains(idx tree.Index) bool
	Parent(idx tree.Index) (tree.Index, bool)
	// PaintOrder lists live nodes in the order they are drawn: parents
	// before children, siblings in declaration order.
	PaintOrder() []tree.Index
	Handler(idx tree.Index) Handler
	Focusable(idx tree.Index) bool
	// Clips reports whether idx restricts its descendants to its rectangle.
	Clips(idx tree.Index) bool
}

// Geometry supplies the last laid-out rectangle of a node.
type Geometry interface {
	Rect(idx tree.Index) (graphics.Rect, bool)
}

// Dispatcher tracks pointer, hover and focus state across input cycles and
// delivers events to handlers. It runs on the UI goroutine; only Pointer
// may be called from elsewhere.
type Dispatcher struct {
	tree Tree
	geom Geometry

	// OnResize is called for WindowResize before the root is notified.
	OnResize func(size graphics.Size)

	pointerMu  sync.RWMutex
	pointer    graphics.Offset
	hasPointer bool

	hovered    []tree.Index // target first, root last
	focused    tree.Index
	pressed    tree.Index
	hasPressed bool
}

// NewDispatcher creates a dispatcher over t and g.
func NewDispatcher(t Tree, g Geometry) *Dispatcher {
	return &Dispatcher{tree: t, geom: g}
}

// Pointer returns the last known pointer position and whether the pointer
// has been seen at all.
func (d *Dispatcher) Pointer() (graphics.Offset, bool) {
	d.pointerMu.RLock()
	defer d.pointerMu.RUnlock()
	return d.pointer, d.hasPointer
}

// Focused returns the node with input focus.
func (d *Dispatcher) Focused() (tree.Index, bool) {
	if d.focused.IsZero() || !d.tree.Contains(d.focused) {
		return tree.Index{}, false
	}
	return d.focused, true
}

// Hovered returns the nodes under the pointer, deepest first.
func (d *Dispatcher) Hovered() []tree.Index {
	out := make([]tree.Index, len(d.hovered))
	copy(out, d.hovered)
	return out
}

// Process handles a batch of host events in order.
func (d *Dispatcher) Process(input []InputEvent) {
	for _, ev := range input {
		d.processOne(ev)
	}
}

func (d *Dispatcher) processOne(ev InputEvent) {
	switch ev := ev.(type) {
	case PointerMove:
		pos := graphics.Offset{X: ev.X, Y: ev.Y}
		target, ok := d.pointerCycle(pos)
		if ok {
			d.bubble(&Event{Kind: KindPointerMove, Target: target, Position: pos})
		}
	case PointerDown:
		pos := graphics.Offset{X: ev.X, Y: ev.Y}
		target, ok := d.pointerCycle(pos)
		d.pressed, d.hasPressed = target, ok
		if ok {
			d.bubble(&Event{Kind: KindPointerDown, Target: target, Position: pos, Button: ev.Button})
		}
	case PointerUp:
		pos := graphics.Offset{X: ev.X, Y: ev.Y}
		target, ok := d.pointerCycle(pos)
		clicked := ok && d.hasPressed && d.pressed == target
		d.hasPressed = false
		if !ok {
			return
		}
		d.bubble(&Event{Kind: KindPointerUp, Target: target, Position: pos, Button: ev.Button})
		if clicked && d.tree.Contains(target) {
			d.moveFocus(d.focusableOnPath(target))
			d.bubble(&Event{Kind: KindClick, Target: target, Position: pos, Button: ev.Button})
		}
	case Scroll:
		pos := graphics.Offset{X: ev.X, Y: ev.Y}
		target, ok := d.pointerCycle(pos)
		if ok {
			d.bubble(&Event{Kind: KindScroll, Target: target, Position: pos, Delta: graphics.Offset{X: ev.DeltaX, Y: ev.DeltaY}})
		}
	case CharacterInput:
		if focused, ok := d.Focused(); ok {
			d.bubble(&Event{Kind: KindCharacter, Target: focused, Char: ev.Char})
		}
	case WindowResize:
		size := graphics.Size{Width: ev.Width, Height: ev.Height}
		if d.OnResize != nil {
			d.OnResize(size)
		}
		if order := d.tree.PaintOrder(); len(order) > 0 {
			d.deliver(order[0], &Event{Kind: KindResize, Target: order[0], Size: size})
		}
	}
}

// pointerCycle records the pointer position, resolves the target and emits
// the hover transitions for this cycle.
func (d *Dispatcher) pointerCycle(pos graphics.Offset) (tree.Index, bool) {
	d.pointerMu.Lock()
	d.pointer = pos
	d.hasPointer = true
	d.pointerMu.Unlock()

	target, ok := d.HitTest(pos)
	var path []tree.Index
	if ok {
		path = d.path(target)
	}
	d.updateHover(path)
	return target, ok
}

// HitTest returns the topmost visible node whose rectangle contains pos.
// Nodes are checked in reverse paint order, so the last drawn wins on
// overlap. A node is only hit inside the rectangles of its clipping
// ancestors.
func (d *Dispatcher) HitTest(pos graphics.Offset) (tree.Index, bool) {
	order := d.tree.PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		rect, ok := d.geom.Rect(order[i])
		if ok && rect.Contains(pos) && !d.clippedOut(order[i], pos) {
			return order[i], true
		}
	}
	return tree.Index{}, false
}

// clippedOut reports whether a clipping ancestor of idx hides pos.
func (d *Dispatcher) clippedOut(idx tree.Index, pos graphics.Offset) bool {
	current, ok := d.tree.Parent(idx)
	for ok {
		if d.tree.Clips(current) {
			rect, laidOut := d.geom.Rect(current)
			if !laidOut || !rect.Contains(pos) {
				return true
			}
		}
		current, ok = d.tree.Parent(current)
	}
	return false
}

// path returns target followed by its ancestors up to the root.
func (d *Dispatcher) path(target tree.Index) []tree.Index {
	path := []tree.Index{target}
	current, ok := d.tree.Parent(target)
	for ok {
		path = append(path, current)
		current, ok = d.tree.Parent(current)
	}
	return path
}

// updateHover diffs the hovered path against the previous cycle. Leave
// events go out deepest first, then enter events outermost first.
func (d *Dispatcher) updateHover(path []tree.Index) {
	next := make(map[tree.Index]struct{}, len(path))
	for _, idx := range path {
		next[idx] = struct{}{}
	}
	prev := make(map[tree.Index]struct{}, len(d.hovered))
	for _, idx := range d.hovered {
		prev[idx] = struct{}{}
	}

	old := d.hovered
	d.hovered = path

	pos, _ := d.Pointer()
	for _, idx := range old {
		if _, still := next[idx]; still || !d.tree.Contains(idx) {
			continue
		}
		d.deliver(idx, &Event{Kind: KindPointerLeave, Target: idx, Position: pos})
	}
	for i := len(path) - 1; i >= 0; i-- {
		idx := path[i]
		if _, was := prev[idx]; was {
			continue
		}
		d.deliver(idx, &Event{Kind: KindPointerEnter, Target: idx, Position: pos})
	}
}

func (d *Dispatcher) focusableOnPath(target tree.Index) tree.Index {
	for _, idx := range d.path(target) {
		if d.tree.Focusable(idx) {
			return idx
		}
	}
	return tree.Index{}
}

// RequestFocus moves focus to idx, sending blur to the previous focus and
// focus to idx. Non-focusable nodes are ignored.
func (d *Dispatcher) RequestFocus(idx tree.Index) {
	if !d.tree.Contains(idx) || !d.tree.Focusable(idx) {
		return
	}
	d.moveFocus(idx)
}

// Unfocus clears focus, sending blur to the previous focus.
func (d *Dispatcher) Unfocus() {
	d.moveFocus(tree.Index{})
}

// moveFocus sends blur to the old focus target, then focus to next. A zero
// next just clears focus.
func (d *Dispatcher) moveFocus(next tree.Index) {
	if next == d.focused {
		return
	}
	prev := d.focused
	d.focused = next
	if !prev.IsZero() && d.tree.Contains(prev) {
		d.deliver(prev, &Event{Kind: KindBlur, Target: prev})
	}
	if !next.IsZero() {
		d.deliver(next, &Event{Kind: KindFocus, Target: next})
	}
}

// Forget drops state that refers to idx. Call it when a node is destroyed.
// A destroyed focus target loses focus without a blur event.
func (d *Dispatcher) Forget(idx tree.Index) {
	if d.focused == idx {
		d.focused = tree.Index{}
	}
	if d.hasPressed && d.pressed == idx {
		d.hasPressed = false
	}
	for i, h := range d.hovered {
		if h == idx {
			d.hovered = append(d.hovered[:i:i], d.hovered[i+1:]...)
			break
		}
	}
}

// bubble delivers ev to the target and then each ancestor until a handler
// stops propagation. Non-bubbling kinds reach only the target.
func (d *Dispatcher) bubble(ev *Event) {
	if !ev.Kind.Bubbles() {
		d.deliver(ev.Target, ev)
		return
	}
	for _, idx := range d.path(ev.Target) {
		d.deliver(idx, ev)
		if ev.stopped {
			return
		}
	}
}

// deliver runs one node's handler. A panicking handler is reported as an
// event error and treated as if it returned normally.
func (d *Dispatcher) deliver(idx tree.Index, ev *Event) {
	handler := d.tree.Handler(idx)
	if handler == nil {
		return
	}
	ev.Current = idx
	defer errors.RecoverEvent(ev.Kind.String(), idx.String(), ev.Target.String())
	handler(ev)
}
