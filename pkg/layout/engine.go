// Package layout resolves node styles into rectangles.
//
// Layout is a two-pass algorithm over the committed tree. The measure pass
// runs bottom-up and computes each node's content size; the arrange pass runs
// top-down, distributing the parent's inner space among its children along
// the layout axis and positioning them one after another.
//
// Results are cached per node. Only nodes marked with MarkNeedsLayout or
// MarkSizeChanged, and the ancestors up to their relayout boundary, are
// recomputed by Flush.
package layout

import (
	"log"
	"math"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
	"github.com/go-drift/sprout/pkg/tree"
)

// Tree is the read-only view of the committed widget tree the engine needs.
type Tree interface {
	Parent(idx tree.Index) (tree.Index, bool)
	Children(idx tree.Index) []tree.Index
	// Style returns the node's style, or nil for the zero style.
	Style(idx tree.Index) *style.Style
}

// TextMeasurer reports the extent of text for auto-sized nodes.
type TextMeasurer interface {
	MeasureText(text string, st *style.Style) graphics.Size
}

// Options configure an Engine.
type Options struct {
	// PixelSnap floors stretch shares to whole pixels and hands the rounding
	// residue to the last stretch child.
	PixelSnap bool
	// Debug enables warnings about suspicious layouts.
	Debug bool
}

// Engine computes and caches node rectangles.
type Engine struct {
	tree     Tree
	measurer TextMeasurer
	opts     Options

	rects        map[tree.Index]graphics.Rect
	nodes        map[tree.Index]*nodeState
	scheduled    []tree.Index
	scheduledSet map[tree.Index]struct{}

	root     tree.Index
	viewport graphics.Size
	laidOut  bool

	changed map[tree.Index]struct{}
}

// NewEngine creates a layout engine over t. A nil measurer sizes text as
// zero.
func NewEngine(t Tree, measurer TextMeasurer, opts Options) *Engine {
	return &Engine{
		tree:         t,
		measurer:     measurer,
		opts:         opts,
		rects:        make(map[tree.Index]graphics.Rect),
		nodes:        make(map[tree.Index]*nodeState),
		scheduledSet: make(map[tree.Index]struct{}),
	}
}

// Rect returns the cached rectangle for idx.
func (e *Engine) Rect(idx tree.Index) (graphics.Rect, bool) {
	r, ok := e.rects[idx]
	return r, ok
}

// Forget drops everything cached for idx. Call it when a node is destroyed.
func (e *Engine) Forget(idx tree.Index) {
	delete(e.rects, idx)
	delete(e.nodes, idx)
	if _, ok := e.scheduledSet[idx]; ok {
		delete(e.scheduledSet, idx)
		for i, s := range e.scheduled {
			if s == idx {
				e.scheduled = append(e.scheduled[:i], e.scheduled[i+1:]...)
				break
			}
		}
	}
}

// Flush lays out every scheduled boundary and returns the nodes whose
// rectangle changed. A new root or viewport relayouts the whole tree.
func (e *Engine) Flush(root tree.Index, viewport graphics.Size) []tree.Index {
	e.changed = make(map[tree.Index]struct{})

	if !e.laidOut || root != e.root || viewport != e.viewport {
		e.root = root
		e.viewport = viewport
		e.laidOut = true
		for _, st := range e.nodes {
			st.needsLayout = true
			st.measured = false
		}
		e.scheduled = nil
		clear(e.scheduledSet)
		e.layoutRoot()
		return e.changedList()
	}

	for _, boundary := range e.takeScheduled() {
		if st, ok := e.nodes[boundary]; ok && !st.needsLayout {
			continue
		}
		if boundary == e.root {
			e.layoutRoot()
			continue
		}
		rect, ok := e.rects[boundary]
		if !ok {
			// Never laid out: its parent was scheduled alongside it.
			continue
		}
		e.measure(boundary)
		e.arrange(boundary, rect)
	}
	return e.changedList()
}

func (e *Engine) changedList() []tree.Index {
	out := make([]tree.Index, 0, len(e.changed))
	for idx := range e.changed {
		out = append(out, idx)
	}
	return out
}

// layoutRoot resolves the root against the viewport. An auto-sized root
// fills the viewport.
func (e *Engine) layoutRoot() {
	if e.root.IsZero() {
		return
	}
	st := e.tree.Style(e.root)
	if st == nil {
		st = &style.Style{}
	}
	e.measure(e.root)
	w := resolveRoot(st.Width, e.viewport.Width)
	h := resolveRoot(st.Height, e.viewport.Height)
	e.arrange(e.root, graphics.RectFromLTWH(0, 0, w, h))
}

func resolveRoot(d style.Dimension, viewport float64) float64 {
	switch d.Unit {
	case style.UnitPixels:
		return d.Value
	case style.UnitPercent:
		return viewport * d.Value / 100
	default:
		return viewport
	}
}

func (e *Engine) state(idx tree.Index) *nodeState {
	st, ok := e.nodes[idx]
	if !ok {
		st = &nodeState{needsLayout: true}
		e.nodes[idx] = st
	}
	return st
}

// measure returns the size idx would take with no outside pressure: fixed
// dimensions as given, everything else from content plus padding.
func (e *Engine) measure(idx tree.Index) sizeCache {
	st := e.state(idx)
	if !st.needsLayout && st.measured {
		return st.measuredSize
	}

	s := e.tree.Style(idx)
	if s == nil {
		s = &style.Style{}
	}
	content := e.contentSize(idx, s)

	size := sizeCache{
		width:  content.width + s.Padding.Horizontal(),
		height: content.height + s.Padding.Vertical(),
	}
	if s.Width.IsFixed() {
		size.width = s.Width.Value
	}
	if s.Height.IsFixed() {
		size.height = s.Height.Value
	}
	st.measuredSize = size
	st.measured = true
	return size
}

// contentSize is the union of the children's extents along the node's
// axis, or the intrinsic size of a text or image leaf, whichever is larger.
func (e *Engine) contentSize(idx tree.Index, s *style.Style) sizeCache {
	var main, cross float64
	for _, child := range e.tree.Children(idx) {
		m := e.measure(child)
		cm, cc := split(s.Direction, m)
		main += cm
		cross = math.Max(cross, cc)
	}
	content := join(s.Direction, main, cross)

	var intrinsic graphics.Size
	switch {
	case s.Text != "" && e.measurer != nil:
		intrinsic = e.measurer.MeasureText(s.Text, s)
	case s.Image != "":
		intrinsic = s.ImageSize
	}
	content.width = math.Max(content.width, intrinsic.Width)
	content.height = math.Max(content.height, intrinsic.Height)
	return content
}

// arrange assigns rect to idx and positions its children inside it.
func (e *Engine) arrange(idx tree.Index, rect graphics.Rect) {
	if old, ok := e.rects[idx]; !ok || old != rect {
		e.changed[idx] = struct{}{}
	}
	e.rects[idx] = rect
	st := e.state(idx)
	st.needsLayout = false

	children := e.tree.Children(idx)
	if len(children) == 0 {
		return
	}

	s := e.tree.Style(idx)
	if s == nil {
		s = &style.Style{}
	}
	inner := rect.Deflate(s.Padding)
	mainAvail, crossAvail := inner.Width(), inner.Height()
	if s.Direction == style.Column {
		mainAvail, crossAvail = crossAvail, mainAvail
	}

	mains := make([]float64, len(children))
	crosses := make([]float64, len(children))
	weights := make([]float64, len(children))
	var used, totalWeight float64
	lastStretch := -1

	for i, child := range children {
		cs := e.tree.Style(child)
		if cs == nil {
			cs = &style.Style{}
		}
		measuredMain, measuredCross := split(s.Direction, e.measure(child))
		mainDim, crossDim := cs.Height, cs.Width
		if s.Direction == style.Row {
			mainDim, crossDim = cs.Width, cs.Height
		}

		switch mainDim.Unit {
		case style.UnitPixels:
			mains[i] = mainDim.Value
		case style.UnitPercent:
			mains[i] = mainAvail * mainDim.Value / 100
		case style.UnitStretch:
			weights[i] = mainDim.Value
			totalWeight += mainDim.Value
			lastStretch = i
		default:
			mains[i] = measuredMain
		}
		if mainDim.Unit != style.UnitStretch {
			used += mains[i]
		}

		switch crossDim.Unit {
		case style.UnitPixels:
			crosses[i] = crossDim.Value
		case style.UnitPercent:
			crosses[i] = crossAvail * crossDim.Value / 100
		case style.UnitStretch:
			crosses[i] = crossAvail
		default:
			crosses[i] = measuredCross
		}
	}

	remaining := math.Max(0, mainAvail-used)
	if totalWeight > 0 {
		e.warnAutoStretch(idx, s, st)
		e.distribute(mains, weights, totalWeight, remaining, lastStretch)
	} else if e.opts.Debug && used > mainAvail+0.5 {
		log.Printf("layout: children of %v overflow its %s axis by %.1fpx", idx, s.Direction, used-mainAvail)
	}

	cursor := inner.Left
	if s.Direction == style.Column {
		cursor = inner.Top
	}
	for i, child := range children {
		var childRect graphics.Rect
		if s.Direction == style.Row {
			childRect = graphics.RectFromLTWH(cursor, inner.Top, mains[i], crosses[i])
		} else {
			childRect = graphics.RectFromLTWH(inner.Left, cursor, crosses[i], mains[i])
		}
		cursor += mains[i]

		if old, ok := e.rects[child]; ok && old == childRect {
			if cst, known := e.nodes[child]; known && !cst.needsLayout {
				continue
			}
		}
		e.arrange(child, childRect)
	}
}

// distribute splits remaining among stretch children by weight. With pixel
// snapping each share is floored and the residue goes to the last stretch
// child so rounding never drifts the total.
func (e *Engine) distribute(mains, weights []float64, totalWeight, remaining float64, last int) {
	var assigned float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		share := remaining * w / totalWeight
		if e.opts.PixelSnap {
			share = math.Floor(share)
		}
		mains[i] = share
		assigned += share
	}
	if e.opts.PixelSnap && last >= 0 {
		mains[last] += remaining - assigned
	}
}

func (e *Engine) warnAutoStretch(idx tree.Index, s *style.Style, st *nodeState) {
	mainDim := s.Height
	if s.Direction == style.Row {
		mainDim = s.Width
	}
	if mainDim.Unit != style.UnitAuto || st.stretchWarned || !e.opts.Debug {
		return
	}
	if _, hasParent := e.tree.Parent(idx); !hasParent {
		return
	}
	st.stretchWarned = true
	log.Printf("WARNING: stretch children inside auto-sized %s axis of %v share only their intrinsic extent. "+
		"Give the container a fixed, percent or stretch size.", s.Direction, idx)
}

func split(axis style.Axis, s sizeCache) (main, cross float64) {
	if axis == style.Row {
		return s.width, s.height
	}
	return s.height, s.width
}

func join(axis style.Axis, main, cross float64) sizeCache {
	if axis == style.Row {
		return sizeCache{width: main, height: cross}
	}
	return sizeCache{width: cross, height: main}
}
