package core

import (
	"reflect"
	"slices"

	"github.com/go-drift/sprout/pkg/binding"
	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/tree"
)

// CreateState returns the binding held in the node's next state slot for
// type T, creating it with initial on first use. The binding survives
// re-renders, and setting it schedules the node to render again.
//
// Slots are keyed by call order and type. A call with a different type than
// the previous state call restarts the order at zero, so in the sequence
// int, string, int the first and third calls share a slot.
func CreateState[T any](ctx *Context, initial T) *binding.Binding[T] {
	n := ctx.n
	key := n.nextSlot(reflect.TypeFor[T]())
	if existing, ok := n.slots[key]; ok {
		return existing.(*binding.Binding[T])
	}
	b := binding.New(initial)
	if n.slots == nil {
		n.slots = make(map[slotKey]any)
	}
	n.slots[key] = b
	idx, rt := ctx.idx, ctx.rt
	n.lifetime.Add(b.WhenChanged(func() {
		rt.markDirty(idx)
	}))
	return b
}

// CreateProvider returns the node's provider binding for type T. The first
// call on a node creates it with initial; later calls return the same binding
// and ignore initial. Descendants find it with CreateConsumer. Like state,
// setting the binding schedules the providing node to render again.
func CreateProvider[T any](ctx *Context, initial T) *binding.Binding[T] {
	n := ctx.n
	typ := reflect.TypeFor[T]()
	if existing, ok := n.providers[typ]; ok {
		return existing.(*binding.Binding[T])
	}
	b := binding.New(initial)
	if n.providers == nil {
		n.providers = make(map[reflect.Type]any)
	}
	n.providers[typ] = b
	idx, rt := ctx.idx, ctx.rt
	n.lifetime.Add(b.WhenChanged(func() {
		rt.markDirty(idx)
	}))
	return b
}

// CreateConsumer returns the nearest provider binding for T above the node.
// The node re-renders when the provider's value changes. The second result is
// false when no ancestor provides T.
func CreateConsumer[T any](ctx *Context) (*binding.Binding[T], bool) {
	typ := reflect.TypeFor[T]()
	var found *binding.Binding[T]
	ctx.rt.arena.Ancestors(ctx.idx, func(idx tree.Index) bool {
		p := ctx.rt.node(idx)
		if existing, ok := p.providers[typ]; ok {
			found = existing.(*binding.Binding[T])
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	Watch(ctx, found)
	return found, true
}

// MustConsume is CreateConsumer for widgets that cannot render without the
// value. A missing provider panics with *errors.MissingProviderError, which
// fails the render of this node only.
func MustConsume[T any](ctx *Context) *binding.Binding[T] {
	b, ok := CreateConsumer[T](ctx)
	if !ok {
		panic(&errors.MissingProviderError{
			Type: reflect.TypeFor[T]().String(),
			Node: ctx.idx.String(),
		})
	}
	return b
}

// CreateEffect runs body when the node first registers the effect and again,
// exactly once, on the first render after any dependency changes. A body that
// panics fails the render and is retried on the node's next render. A render
// that passes a different set of dependencies than last time re-registers
// the effect and runs body.
func CreateEffect(ctx *Context, body func(), deps ...binding.Dependency) {
	n := ctx.n
	i := n.effectIndex
	n.effectIndex++

	ids := make([]binding.ID, len(deps))
	for j, dep := range deps {
		ids[j] = dep.ID()
	}

	if i < len(n.effects) {
		rec := n.effects[i]
		if slices.Equal(rec.deps, ids) {
			if rec.pending.Swap(false) {
				runEffect(rec, body)
			}
			return
		}
		rec.handles.ReleaseAll()
	}

	rec := &effectRecord{deps: ids}
	idx, rt := ctx.idx, ctx.rt
	for _, dep := range deps {
		rec.handles.Add(dep.WhenChanged(func() {
			rec.pending.Store(true)
			rt.markDirty(idx)
		}))
	}
	if i < len(n.effects) {
		n.effects[i] = rec
	} else {
		n.effects = append(n.effects, rec)
	}
	runEffect(rec, body)
}

// runEffect calls body. If body panics the effect stays pending, so the
// node's next successful render runs it again.
func runEffect(rec *effectRecord, body func()) {
	finished := false
	defer func() {
		if !finished {
			rec.pending.Store(true)
		}
	}()
	body()
	finished = true
}

// Watch re-renders the node whenever dep changes. The subscription lasts as
// long as every render of the node keeps calling Watch for dep.
func Watch(ctx *Context, dep binding.Dependency) {
	n := ctx.n
	id := dep.ID()
	if w, ok := n.watches[id]; ok {
		w.renewed = true
		return
	}
	if n.watches == nil {
		n.watches = make(map[binding.ID]*watchEntry)
	}
	idx, rt := ctx.idx, ctx.rt
	n.watches[id] = &watchEntry{
		handle: dep.WhenChanged(func() {
			rt.markDirty(idx)
		}),
		renewed: true,
	}
}

// Global returns the runtime-wide binding for T, creating it with initial on
// first use anywhere in the tree, and watches it from the calling node.
func Global[T any](ctx *Context, initial T) *binding.Binding[T] {
	b := GlobalOf(ctx.rt, initial)
	Watch(ctx, b)
	return b
}

// GlobalOf returns the runtime-wide binding for T outside of a render.
func GlobalOf[T any](rt *Runtime, initial T) *binding.Binding[T] {
	typ := reflect.TypeFor[T]()
	if existing, ok := rt.globals[typ]; ok {
		return existing.(*binding.Binding[T])
	}
	b := binding.New(initial)
	rt.globals[typ] = b
	return b
}
