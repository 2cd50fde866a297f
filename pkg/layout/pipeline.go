package layout

import (
	"slices"

	"github.com/go-drift/sprout/pkg/tree"
)

// nodeState is the per-node bookkeeping behind the rect cache.
type nodeState struct {
	needsLayout   bool
	measured      bool
	measuredSize  sizeCache
	stretchWarned bool
}

type sizeCache struct {
	width, height float64
}

// MarkNeedsLayout records that the content of idx changed (children added,
// removed or reordered, or a descendant resized).
//
// Marking walks up the tree setting needsLayout on each node until it reaches
// a relayout boundary, which is scheduled. A boundary is a node whose size
// can't depend on its children: the root, or a node with fixed width and
// height that has been laid out before. Layout later starts at the scheduled
// boundaries and descends through the marked nodes.
func (e *Engine) MarkNeedsLayout(idx tree.Index) {
	st, known := e.nodes[idx]
	if known && st.needsLayout {
		return
	}
	if !known {
		st = &nodeState{}
		e.nodes[idx] = st
	}
	st.needsLayout = true
	st.measured = false

	if e.isBoundary(idx) {
		e.schedule(idx)
		return
	}
	if parent, ok := e.tree.Parent(idx); ok {
		e.MarkNeedsLayout(parent)
		return
	}
	e.schedule(idx)
}

// MarkSizeChanged records that idx's own sizing inputs changed (its style or
// intrinsic content). Its parent must arrange again even when idx is a
// boundary, because the boundary's rect itself may move or resize.
func (e *Engine) MarkSizeChanged(idx tree.Index) {
	e.MarkNeedsLayout(idx)
	if parent, ok := e.tree.Parent(idx); ok {
		e.MarkNeedsLayout(parent)
	}
}

// NeedsLayout reports whether any boundary is scheduled.
func (e *Engine) NeedsLayout() bool {
	return len(e.scheduled) > 0 || !e.laidOut
}

func (e *Engine) isBoundary(idx tree.Index) bool {
	if _, ok := e.tree.Parent(idx); !ok {
		return true
	}
	if _, laidOut := e.rects[idx]; !laidOut {
		return false
	}
	return e.tree.Style(idx).IsFixedSize()
}

func (e *Engine) schedule(idx tree.Index) {
	if _, ok := e.scheduledSet[idx]; ok {
		return
	}
	e.scheduledSet[idx] = struct{}{}
	e.scheduled = append(e.scheduled, idx)
}

// takeScheduled returns scheduled boundaries parents first and clears the
// schedule. Laying out a parent first usually lays out the descendant
// boundaries too, so they are skipped when their turn comes.
func (e *Engine) takeScheduled() []tree.Index {
	dirty := e.scheduled
	e.scheduled = nil
	clear(e.scheduledSet)
	depths := make(map[tree.Index]int, len(dirty))
	for _, idx := range dirty {
		depths[idx] = e.depth(idx)
	}
	slices.SortStableFunc(dirty, func(a, b tree.Index) int {
		return depths[a] - depths[b]
	})
	return dirty
}

func (e *Engine) depth(idx tree.Index) int {
	d := 0
	current, ok := e.tree.Parent(idx)
	for ok {
		d++
		current, ok = e.tree.Parent(current)
	}
	return d
}
