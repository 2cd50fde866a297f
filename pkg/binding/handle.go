package binding

import (
	"sync"
	"sync/atomic"
)

type remover interface {
	remove(h *Handle)
}

// Handle is a releasable subscription returned by WhenChanged.
//
// Release is idempotent. Once it returns, the callback will not run again:
// a delivery already in progress on another goroutine finishes before
// Release returns, and later deliveries observe the released flag.
// A callback must not release its own handle or Set the binding it
// is subscribed to; both would wait on the delivery in progress.
type Handle struct {
	fn       func()
	owner    remover
	released atomic.Bool

	// deliverMu serialises delivery against release.
	deliverMu sync.Mutex
}

// Release stops further notifications. Calling it more than once is a no-op.
func (h *Handle) Release() {
	if h == nil || h.released.Swap(true) {
		return
	}
	h.deliverMu.Lock()
	h.fn = nil
	h.deliverMu.Unlock()
	if h.owner != nil {
		h.owner.remove(h)
	}
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	return h == nil || h.released.Load()
}

func (h *Handle) deliver() {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	if h.released.Load() || h.fn == nil {
		return
	}
	h.fn()
}

// Group collects handles so they can be released together.
// The zero value is ready to use.
type Group struct {
	mu      sync.Mutex
	handles []*Handle
}

// Add tracks h for a later ReleaseAll.
func (g *Group) Add(h *Handle) {
	if h == nil {
		return
	}
	g.mu.Lock()
	g.handles = append(g.handles, h)
	g.mu.Unlock()
}

// Len returns the number of tracked handles.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

// ReleaseAll releases every tracked handle and empties the group.
func (g *Group) ReleaseAll() {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()
	for _, h := range handles {
		h.Release()
	}
}
