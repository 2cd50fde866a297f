// Package tree provides the arena that owns widget-tree nodes.
//
// Nodes are addressed by Index, a small comparable value. Parent and child
// relationships are stored as indices, so the tree has no pointer cycles and
// removing a node is index invalidation rather than pointer surgery.
package tree

import "fmt"

// Index identifies a node in an Arena. The zero Index is never valid.
//
// A slot is recycled after its node is removed, but its generation is bumped,
// so an Index held past removal fails every lookup instead of aliasing the
// node that took over the slot.
type Index struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether idx is the zero (invalid) Index.
func (idx Index) IsZero() bool {
	return idx.gen == 0
}

func (idx Index) String() string {
	if idx.IsZero() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", idx.slot, idx.gen)
}

type entry[T any] struct {
	gen      uint32
	alive    bool
	value    T
	parent   Index
	children []Index
}

// Arena stores nodes with payload T. It is not safe for concurrent use; the
// UI goroutine owns it.
type Arena[T any] struct {
	entries []entry[T]
	free    []uint32
	len     int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	// Slot 0 is reserved so the zero Index never resolves.
	return &Arena[T]{entries: make([]entry[T], 1, 64)}
}

// Len returns the number of live nodes.
func (a *Arena[T]) Len() int {
	return a.len
}

// Insert allocates a node. A zero parent creates a root; otherwise the node
// is appended to parent's children.
func (a *Arena[T]) Insert(parent Index, value T) Index {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.entries = append(a.entries, entry[T]{})
		slot = uint32(len(a.entries) - 1)
	}
	e := &a.entries[slot]
	e.gen++
	e.alive = true
	e.value = value
	e.parent = Index{}
	e.children = nil
	idx := Index{slot: slot, gen: e.gen}
	a.len++

	if p := a.lookup(parent); p != nil {
		e.parent = parent
		p.children = append(p.children, idx)
	}
	return idx
}

// Contains reports whether idx refers to a live node.
func (a *Arena[T]) Contains(idx Index) bool {
	return a.lookup(idx) != nil
}

// Get returns the payload stored at idx.
func (a *Arena[T]) Get(idx Index) (T, bool) {
	if e := a.lookup(idx); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Set replaces the payload stored at idx. It returns false for dead indices.
func (a *Arena[T]) Set(idx Index, value T) bool {
	e := a.lookup(idx)
	if e == nil {
		return false
	}
	e.value = value
	return true
}

// Parent returns the parent of idx. Roots report false.
func (a *Arena[T]) Parent(idx Index) (Index, bool) {
	e := a.lookup(idx)
	if e == nil || e.parent.IsZero() {
		return Index{}, false
	}
	return e.parent, true
}

// Children returns the ordered children of idx. The slice is owned by the
// arena and must not be modified.
func (a *Arena[T]) Children(idx Index) []Index {
	if e := a.lookup(idx); e != nil {
		return e.children
	}
	return nil
}

// SetChildren replaces the ordered child list of idx. Every child must be a
// live node; each child's parent link is updated to idx.
func (a *Arena[T]) SetChildren(idx Index, children []Index) {
	e := a.lookup(idx)
	if e == nil {
		return
	}
	kept := make([]Index, 0, len(children))
	for _, child := range children {
		if c := a.lookup(child); c != nil {
			c.parent = idx
			kept = append(kept, child)
		}
	}
	e.children = kept
}

// Ancestors calls visit for each ancestor of idx, nearest first, until visit
// returns false or the root is passed.
func (a *Arena[T]) Ancestors(idx Index, visit func(Index) bool) {
	current, ok := a.Parent(idx)
	for ok {
		if !visit(current) {
			return
		}
		current, ok = a.Parent(current)
	}
}

// Walk visits idx and its descendants in pre-order (parent before children,
// children in order). Returning false from visit skips that node's subtree.
func (a *Arena[T]) Walk(idx Index, visit func(Index) bool) {
	if !a.Contains(idx) {
		return
	}
	if !visit(idx) {
		return
	}
	for _, child := range a.Children(idx) {
		a.Walk(child, visit)
	}
}

// Remove deletes idx and its whole subtree. before is called for every
// removed node in post-order (children first) while the node is still
// readable. The node is detached from its parent's child list.
func (a *Arena[T]) Remove(idx Index, before func(Index, T)) {
	e := a.lookup(idx)
	if e == nil {
		return
	}
	if p := a.lookup(e.parent); p != nil {
		for i, child := range p.children {
			if child == idx {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
	}
	a.removeSubtree(idx, before)
}

func (a *Arena[T]) removeSubtree(idx Index, before func(Index, T)) {
	e := a.lookup(idx)
	if e == nil {
		return
	}
	for _, child := range e.children {
		a.removeSubtree(child, before)
	}
	if before != nil {
		before(idx, e.value)
	}
	var zero T
	e.alive = false
	e.value = zero
	e.parent = Index{}
	e.children = nil
	a.free = append(a.free, idx.slot)
	a.len--
}

func (a *Arena[T]) lookup(idx Index) *entry[T] {
	if idx.IsZero() || int(idx.slot) >= len(a.entries) {
		return nil
	}
	e := &a.entries[idx.slot]
	if !e.alive || e.gen != idx.gen {
		return nil
	}
	return e
}
