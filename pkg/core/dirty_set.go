package core

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/tree"
)

// DirtySet holds the nodes waiting to re-render. Add may be called from any
// goroutine; Drain is called by the render pass.
//
// If a panic unwinds while the set's lock is held, the set is poisoned: its
// contents can no longer be trusted, and every later Drain fails with
// errors.ErrDirtySetPoisoned.
type DirtySet struct {
	mu       sync.Mutex
	set      map[tree.Index]struct{}
	order    []tree.Index
	poisoned atomic.Bool
}

// NewDirtySet creates an empty set.
func NewDirtySet() *DirtySet {
	return &DirtySet{set: make(map[tree.Index]struct{})}
}

// Add inserts idx and reports whether it was not already present.
func (d *DirtySet) Add(idx tree.Index) bool {
	added := false
	d.locked(func() {
		if _, ok := d.set[idx]; ok {
			return
		}
		d.set[idx] = struct{}{}
		d.order = append(d.order, idx)
		added = true
	})
	return added
}

// Len returns the number of pending nodes.
func (d *DirtySet) Len() int {
	n := 0
	d.locked(func() { n = len(d.order) })
	return n
}

// Drain removes and returns every pending node in insertion order.
func (d *DirtySet) Drain() ([]tree.Index, error) {
	if d.poisoned.Load() {
		return nil, errors.ErrDirtySetPoisoned
	}
	var out []tree.Index
	d.locked(func() {
		out = d.order
		d.order = nil
		clear(d.set)
	})
	return out, nil
}

// Poisoned reports whether a panic escaped while the lock was held.
func (d *DirtySet) Poisoned() bool {
	return d.poisoned.Load()
}

func (d *DirtySet) locked(fn func()) {
	d.mu.Lock()
	finished := false
	defer func() {
		if !finished {
			d.poisoned.Store(true)
		}
		d.mu.Unlock()
	}()
	fn()
	finished = true
}
