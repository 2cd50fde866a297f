package core

import (
	"reflect"
	"sync/atomic"

	"github.com/go-drift/sprout/pkg/binding"
	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/style"
)

// slotKey addresses one state slot on a node.
type slotKey struct {
	index int
	typ   reflect.Type
}

type effectRecord struct {
	deps    []binding.ID
	handles binding.Group
	pending atomic.Bool
}

type watchEntry struct {
	handle  *binding.Handle
	renewed bool
}

// node is the payload stored in the arena for every mounted element.
type node struct {
	widget    Widget
	identity  widgetIdentity
	key       string
	style     *style.Style
	handler   events.Handler
	focusable bool
	declared  []Element
	depth     int
	mounted   bool

	// Hook cursor, reset at the start of each render.
	hookIndex    int
	lastType     reflect.Type
	effectIndex  int
	disposeIndex int

	slots     map[slotKey]any
	lifetime  binding.Group
	effects   []*effectRecord
	providers map[reflect.Type]any
	watches   map[binding.ID]*watchEntry
	disposers []func()
}

func newNode(el Element, depth int) *node {
	n := &node{depth: depth}
	n.assign(el)
	return n
}

// assign copies the declared props of el onto the node.
func (n *node) assign(el Element) {
	n.widget = el.Widget
	n.identity = identityOf(el.Widget)
	n.key = el.Key
	n.style = el.Style
	n.handler = el.OnEvent
	n.focusable = el.Focusable
	n.declared = el.Children
}

// nextSlot returns the key for the next state hook of type t. The counter
// restarts when the requested type differs from the previous request.
func (n *node) nextSlot(t reflect.Type) slotKey {
	if n.lastType != nil && n.lastType != t {
		n.hookIndex = 0
	}
	n.lastType = t
	key := slotKey{index: n.hookIndex, typ: t}
	n.hookIndex++
	return key
}

func (n *node) beginRender() {
	n.hookIndex = 0
	n.lastType = nil
	n.effectIndex = 0
	n.disposeIndex = 0
	for _, w := range n.watches {
		w.renewed = false
	}
}

// endRender drops hook registrations the last successful render did not
// repeat.
func (n *node) endRender() {
	for id, w := range n.watches {
		if !w.renewed {
			w.handle.Release()
			delete(n.watches, id)
		}
	}
	for _, rec := range n.effects[n.effectIndex:] {
		rec.handles.ReleaseAll()
	}
	n.effects = n.effects[:n.effectIndex]
}

// dispose releases everything the node holds. Dispose callbacks run last,
// most recent first.
func (n *node) dispose(name string) {
	n.lifetime.ReleaseAll()
	for _, rec := range n.effects {
		rec.handles.ReleaseAll()
	}
	for _, w := range n.watches {
		w.handle.Release()
	}
	for i := len(n.disposers) - 1; i >= 0; i-- {
		runDisposer(name, n.disposers[i])
	}
	n.effects = nil
	n.watches = nil
	n.disposers = nil
	n.slots = nil
	n.providers = nil
	n.declared = nil
}

func runDisposer(name string, fn func()) {
	if fn == nil {
		return
	}
	defer errors.Recover("core.Dispose(" + name + ")")
	fn()
}
