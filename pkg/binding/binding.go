// Package binding provides observable value cells.
//
// A Binding holds a value and a list of subscriptions. Set overwrites the
// value and synchronously calls every live subscription in registration
// order. Bindings are safe for concurrent use: a background goroutine may
// call Set while the UI goroutine reads the value or releases handles.
//
//	count := binding.New(0)
//	h := count.WhenChanged(func() { fmt.Println("changed") })
//	count.Set(1) // prints "changed"
//	h.Release()
//	count.Set(2) // prints nothing
package binding

import (
	"sync"
	"sync/atomic"
)

// ID uniquely identifies a binding for the lifetime of the process.
type ID uint64

var nextID atomic.Uint64

func newID() ID {
	return ID(nextID.Add(1))
}

// Dependency is the type-erased view of a Binding used by effects and
// watchers that don't care about the value type.
type Dependency interface {
	ID() ID
	WhenChanged(notify func()) *Handle
}

// Binding is an observable value cell.
//
// Set notifies even when the new value equals the old one; callers that
// want to skip redundant updates compare before calling Set.
type Binding[T any] struct {
	id ID

	mu    sync.RWMutex
	value T

	subMu sync.Mutex
	subs  []*Handle
}

// New creates a binding holding initial.
func New[T any](initial T) *Binding[T] {
	return &Binding[T]{id: newID(), value: initial}
}

// ID returns the binding's identity.
func (b *Binding[T]) ID() ID {
	return b.id
}

// Get returns a copy of the current value. Reference types inside T
// (slices, maps, pointers) are shared, not deep-copied.
func (b *Binding[T]) Get() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Set overwrites the value and notifies every live subscription.
func (b *Binding[T]) Set(value T) {
	b.mu.Lock()
	b.value = value
	b.mu.Unlock()
	b.notify()
}

// Update applies transform to the current value and notifies.
// The read-modify-write is atomic with respect to other Set/Update calls.
func (b *Binding[T]) Update(transform func(T) T) {
	b.mu.Lock()
	b.value = transform(b.value)
	b.mu.Unlock()
	b.notify()
}

// WhenChanged registers notify to run after every subsequent Set.
// The returned handle must be released to stop notifications.
func (b *Binding[T]) WhenChanged(notify func()) *Handle {
	h := &Handle{fn: notify, owner: b}
	if notify == nil {
		h.released.Store(true)
		return h
	}
	b.subMu.Lock()
	b.subs = append(b.subs, h)
	b.subMu.Unlock()
	return h
}

// SubscriberCount returns the number of unreleased subscriptions.
func (b *Binding[T]) SubscriberCount() int {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	n := 0
	for _, h := range b.subs {
		if !h.released.Load() {
			n++
		}
	}
	return n
}

func (b *Binding[T]) notify() {
	b.subMu.Lock()
	snapshot := make([]*Handle, len(b.subs))
	copy(snapshot, b.subs)
	b.subMu.Unlock()

	for _, h := range snapshot {
		h.deliver()
	}
}

func (b *Binding[T]) remove(h *Handle) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for i, sub := range b.subs {
		if sub == h {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
