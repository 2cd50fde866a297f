package core

import (
	"slices"

	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/style"
	"github.com/go-drift/sprout/pkg/tree"
)

// renderNode invokes the widget at idx and reconciles its output with the
// committed children. Matched and new children render recursively.
func (rt *Runtime) renderNode(idx tree.Index) {
	n := rt.node(idx)
	rt.rendered[idx] = struct{}{}
	rt.result.Touched = append(rt.result.Touched, idx)
	rt.stats.Rendered++

	ctx := &Context{rt: rt, idx: idx, n: n}
	n.beginRender()
	out, ok := rt.invoke(ctx)
	if !ok {
		// Keep the previous children. A node that never rendered stays empty.
		rt.stats.Failed++
		return
	}
	n.endRender()
	n.mounted = true
	rt.reconcile(idx, n, out)
}

// invoke runs the widget, recovering panics as build errors.
func (rt *Runtime) invoke(ctx *Context) (out []Element, ok bool) {
	n := ctx.n
	defer func() {
		if r := recover(); r != nil {
			buildErr := &errors.BuildError{
				Widget:     n.identity.String(),
				Node:       ctx.idx.String(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			}
			if err, isErr := r.(error); isErr {
				buildErr.Err = err
			}
			errors.ReportBuildError(buildErr)
			out, ok = nil, false
		}
	}()
	if n.widget == nil {
		return n.declared, true
	}
	return n.widget.Render(ctx, n.declared), true
}

// reconcile diffs the declared children of idx against its committed
// children. Keyed elements match the previous child with the same key;
// unkeyed elements match the unkeyed previous children in order. A match
// also needs the same widget identity.
func (rt *Runtime) reconcile(idx tree.Index, n *node, out []Element) {
	old := slices.Clone(rt.arena.Children(idx))

	keyed := make(map[string]tree.Index)
	var unkeyed []tree.Index
	for _, child := range old {
		c := rt.node(child)
		if c.key != "" {
			if _, dup := keyed[c.key]; !dup {
				keyed[c.key] = child
			}
			continue
		}
		unkeyed = append(unkeyed, child)
	}

	used := make(map[tree.Index]struct{}, len(old))
	next := make([]tree.Index, 0, len(out))
	position := 0
	for _, el := range out {
		var match tree.Index
		if el.Key != "" {
			match = keyed[el.Key]
		} else if position < len(unkeyed) {
			match = unkeyed[position]
			position++
		}
		if _, taken := used[match]; !match.IsZero() && !taken && rt.node(match).identity == identityOf(el.Widget) {
			used[match] = struct{}{}
			rt.update(match, el)
			next = append(next, match)
			continue
		}
		next = append(next, rt.create(idx, el, n.depth+1))
	}

	for _, child := range old {
		if _, ok := used[child]; !ok {
			rt.teardown(child)
		}
	}
	if !slices.Equal(old, next) {
		rt.arena.SetChildren(idx, next)
		rt.orderValid = false
	}

	for _, child := range next {
		if _, done := rt.rendered[child]; done {
			continue
		}
		if rt.arena.Contains(child) {
			rt.renderNode(child)
		}
	}
}

// update gives a kept node its new props.
func (rt *Runtime) update(idx tree.Index, el Element) {
	n := rt.node(idx)
	if !style.LayoutEqual(n.style, el.Style) {
		rt.result.Restyled = append(rt.result.Restyled, idx)
	}
	n.assign(el)
}

func (rt *Runtime) create(parent tree.Index, el Element, depth int) tree.Index {
	idx := rt.arena.Insert(parent, newNode(el, depth))
	rt.stats.Created++
	rt.result.Created = append(rt.result.Created, idx)
	rt.orderValid = false
	return idx
}

// teardown destroys idx and its subtree, releasing every subscription and
// running dispose callbacks children first.
func (rt *Runtime) teardown(idx tree.Index) {
	rt.arena.Remove(idx, func(i tree.Index, n *node) {
		n.dispose(n.identity.String())
		rt.stats.Destroyed++
		rt.result.Removed = append(rt.result.Removed, i)
	})
	if idx == rt.root {
		rt.root = tree.Index{}
	}
	rt.orderValid = false
}
