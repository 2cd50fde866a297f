package core

import (
	"reflect"
	"slices"

	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
	"github.com/go-drift/sprout/pkg/tree"
)

// Stats counts runtime work since creation.
type Stats struct {
	Created   int
	Destroyed int
	Rendered  int
	Failed    int
	Live      int
}

// RenderResult reports what a render pass changed.
type RenderResult struct {
	// Touched lists every node rendered in the pass, including new ones.
	Touched []tree.Index
	// Created lists new nodes.
	Created []tree.Index
	// Restyled lists kept nodes whose layout-relevant style changed.
	Restyled []tree.Index
	// Removed lists destroyed nodes. They are no longer in the tree.
	Removed []tree.Index
}

// Empty reports whether the pass did nothing.
func (r RenderResult) Empty() bool {
	return len(r.Touched) == 0 && len(r.Removed) == 0
}

// Runtime owns the widget tree, hook state and dirty set. Everything except
// binding callbacks runs on the UI goroutine.
type Runtime struct {
	arena   *tree.Arena[*node]
	dirty   *DirtySet
	root    tree.Index
	globals map[reflect.Type]any
	stats   Stats

	result   RenderResult
	rendered map[tree.Index]struct{}

	order      []tree.Index
	orderValid bool

	// OnNeedsFrame is called when a node becomes dirty. It may be called
	// from any goroutine that sets a binding.
	OnNeedsFrame func()

	// PointerSource backs Context.Pointer.
	PointerSource func() (graphics.Offset, bool)
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		arena:   tree.NewArena[*node](),
		dirty:   NewDirtySet(),
		globals: make(map[reflect.Type]any),
	}
}

// Root returns the root node.
func (rt *Runtime) Root() tree.Index {
	return rt.root
}

// Dirty returns the runtime's dirty set.
func (rt *Runtime) Dirty() *DirtySet {
	return rt.dirty
}

// Stats returns a snapshot of the runtime counters.
func (rt *Runtime) Stats() Stats {
	s := rt.stats
	s.Live = rt.arena.Len()
	return s
}

// NeedsRender reports whether any node is waiting to render.
func (rt *Runtime) NeedsRender() bool {
	return rt.dirty.Len() > 0
}

// Mount replaces the whole tree with root. The new root renders on the next
// call to Render.
func (rt *Runtime) Mount(root Element) tree.Index {
	if !rt.root.IsZero() {
		rt.teardown(rt.root)
	}
	rt.root = rt.create(tree.Index{}, root, 0)
	rt.markDirty(rt.root)
	return rt.root
}

// MarkNeedsRender schedules idx for the next render pass.
func (rt *Runtime) MarkNeedsRender(idx tree.Index) {
	rt.markDirty(idx)
}

func (rt *Runtime) markDirty(idx tree.Index) {
	if rt.dirty.Add(idx) && rt.OnNeedsFrame != nil {
		rt.OnNeedsFrame()
	}
}

// Render drains the dirty set and re-renders the drained nodes, parents
// first. Nodes marked dirty while the pass runs wait for the next pass.
//
// A widget that panics keeps its previous children; the failure is reported
// through errors.ReportBuildError. Render itself fails only when the dirty set
// is poisoned.
func (rt *Runtime) Render() (RenderResult, error) {
	drained, err := rt.dirty.Drain()
	if err != nil {
		return RenderResult{}, errors.Wrap("core.Render", errors.KindFatal, err)
	}

	live := drained[:0]
	for _, idx := range drained {
		if rt.arena.Contains(idx) {
			live = append(live, idx)
		}
	}
	slices.SortStableFunc(live, func(a, b tree.Index) int {
		return rt.node(a).depth - rt.node(b).depth
	})

	rt.rendered = make(map[tree.Index]struct{}, len(live))
	for _, idx := range live {
		if !rt.arena.Contains(idx) {
			continue
		}
		if _, done := rt.rendered[idx]; done {
			continue
		}
		rt.renderNode(idx)
	}
	rt.rendered = nil

	result := rt.result
	rt.result = RenderResult{}
	return result, nil
}

func (rt *Runtime) node(idx tree.Index) *node {
	n, _ := rt.arena.Get(idx)
	return n
}

// Contains reports whether idx is a live node.
func (rt *Runtime) Contains(idx tree.Index) bool {
	return rt.arena.Contains(idx)
}

// Parent returns the parent of idx.
func (rt *Runtime) Parent(idx tree.Index) (tree.Index, bool) {
	return rt.arena.Parent(idx)
}

// Children returns the committed children of idx. The slice must not be
// modified.
func (rt *Runtime) Children(idx tree.Index) []tree.Index {
	return rt.arena.Children(idx)
}

// Style returns the style of idx, or nil.
func (rt *Runtime) Style(idx tree.Index) *style.Style {
	if n := rt.node(idx); n != nil {
		return n.style
	}
	return nil
}

// Handler returns the event handler of idx, or nil.
func (rt *Runtime) Handler(idx tree.Index) events.Handler {
	if n := rt.node(idx); n != nil {
		return n.handler
	}
	return nil
}

// Focusable reports whether idx accepts focus.
func (rt *Runtime) Focusable(idx tree.Index) bool {
	n := rt.node(idx)
	return n != nil && n.focusable
}

// Clips reports whether idx clips its descendants.
func (rt *Runtime) Clips(idx tree.Index) bool {
	n := rt.node(idx)
	return n != nil && n.style != nil && n.style.Clip
}

// Key returns the key idx was declared with.
func (rt *Runtime) Key(idx tree.Index) string {
	if n := rt.node(idx); n != nil {
		return n.key
	}
	return ""
}

// WidgetName returns a printable name for the widget mounted at idx.
func (rt *Runtime) WidgetName(idx tree.Index) string {
	if n := rt.node(idx); n != nil {
		return n.identity.String()
	}
	return ""
}

// Widget returns the widget mounted at idx.
func (rt *Runtime) Widget(idx tree.Index) Widget {
	if n := rt.node(idx); n != nil {
		return n.widget
	}
	return nil
}

// Depth returns the distance from the root, or -1 for dead indices.
func (rt *Runtime) Depth(idx tree.Index) int {
	if n := rt.node(idx); n != nil {
		return n.depth
	}
	return -1
}

// PaintOrder lists live nodes parents first, siblings in order.
func (rt *Runtime) PaintOrder() []tree.Index {
	if rt.orderValid {
		return rt.order
	}
	rt.order = rt.order[:0]
	rt.arena.Walk(rt.root, func(idx tree.Index) bool {
		rt.order = append(rt.order, idx)
		return true
	})
	rt.orderValid = true
	return rt.order
}
