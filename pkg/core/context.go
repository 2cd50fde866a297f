package core

import (
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

// Context is handed to Widget.Render and positions hooks at the rendering
// node. It is only valid for the duration of that call; event handlers and
// goroutines should capture bindings instead.
type Context struct {
	rt  *Runtime
	idx tree.Index
	n   *node
}

// Node returns the index of the rendering node.
func (c *Context) Node() tree.Index {
	return c.idx
}

// Runtime returns the runtime that owns the node.
func (c *Context) Runtime() *Runtime {
	return c.rt
}

// MarkNeedsRender schedules the node for another render on the next pass.
func (c *Context) MarkNeedsRender() {
	c.rt.markDirty(c.idx)
}

// Pointer returns the last known pointer position. The second result is
// false before the host reports any pointer event.
func (c *Context) Pointer() (graphics.Offset, bool) {
	if c.rt.PointerSource == nil {
		return graphics.Offset{}, false
	}
	return c.rt.PointerSource()
}

// OnDispose registers fn to run when the node is destroyed. Like other hooks
// it is keyed by call order: the function passed on the latest render of a
// given call replaces the previous one.
func (c *Context) OnDispose(fn func()) {
	n := c.n
	i := n.disposeIndex
	n.disposeIndex++
	if i < len(n.disposers) {
		n.disposers[i] = fn
		return
	}
	n.disposers = append(n.disposers, fn)
}
