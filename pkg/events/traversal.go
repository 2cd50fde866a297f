package events

import (
	"math"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

// Direction selects a neighbour for directional focus traversal.
type Direction int

const (
	// DirectionUp moves focus upward.
	DirectionUp Direction = iota
	// DirectionDown moves focus downward.
	DirectionDown
	// DirectionLeft moves focus leftward.
	DirectionLeft
	// DirectionRight moves focus rightward.
	DirectionRight
)

// focusOrder lists focusable nodes in paint order.
func (d *Dispatcher) focusOrder() []tree.Index {
	var out []tree.Index
	for _, idx := range d.tree.PaintOrder() {
		if d.tree.Focusable(idx) {
			out = append(out, idx)
		}
	}
	return out
}

// MoveFocus moves focus delta positions through the focusable nodes in paint
// order, wrapping at either end. With nothing focused, +1 focuses the first
// node and -1 the last. It reports whether focus changed.
func (d *Dispatcher) MoveFocus(delta int) bool {
	order := d.focusOrder()
	if len(order) == 0 || delta == 0 {
		return false
	}
	current := -1
	for i, idx := range order {
		if idx == d.focused {
			current = i
			break
		}
	}
	var next int
	switch {
	case current >= 0:
		next = wrapIndex(current+delta, len(order))
	case delta > 0:
		next = wrapIndex(delta-1, len(order))
	default:
		next = wrapIndex(delta, len(order))
	}
	if order[next] == d.focused {
		return false
	}
	d.moveFocus(order[next])
	return true
}

// FocusInDirection moves focus to the focusable node nearest in dir, scored
// by distance between centers with the cross-axis distance weighted double
// so aligned nodes win. Without a focused node, or without a candidate in
// dir, it falls back to linear traversal.
func (d *Dispatcher) FocusInDirection(dir Direction) bool {
	from, ok := d.geom.Rect(d.focused)
	if d.focused.IsZero() || !ok || !validRect(from) {
		return d.MoveFocus(linearDelta(dir))
	}

	var best tree.Index
	bestScore := math.MaxFloat64
	for _, idx := range d.focusOrder() {
		if idx == d.focused {
			continue
		}
		r, ok := d.geom.Rect(idx)
		if !ok || !validRect(r) || !inDirection(from, r, dir) {
			continue
		}
		if score := directionalScore(from, r, dir); score < bestScore {
			best, bestScore = idx, score
		}
	}
	if best.IsZero() {
		return d.MoveFocus(linearDelta(dir))
	}
	d.moveFocus(best)
	return true
}

func validRect(r graphics.Rect) bool {
	return r.Right > r.Left && r.Bottom > r.Top
}

func center(r graphics.Rect) (x, y float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

func linearDelta(dir Direction) int {
	if dir == DirectionUp || dir == DirectionLeft {
		return -1
	}
	return 1
}

func inDirection(from, to graphics.Rect, dir Direction) bool {
	fx, fy := center(from)
	tx, ty := center(to)
	switch dir {
	case DirectionUp:
		return ty < fy
	case DirectionDown:
		return ty > fy
	case DirectionLeft:
		return tx < fx
	case DirectionRight:
		return tx > fx
	}
	return false
}

func directionalScore(from, to graphics.Rect, dir Direction) float64 {
	fx, fy := center(from)
	tx, ty := center(to)
	primary, cross := math.Abs(ty-fy), math.Abs(tx-fx)
	if dir == DirectionLeft || dir == DirectionRight {
		primary, cross = cross, primary
	}
	return primary + cross*2
}

func wrapIndex(index, count int) int {
	index %= count
	if index < 0 {
		index += count
	}
	return index
}
