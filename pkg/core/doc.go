// Package core is the reactive widget-tree runtime.
//
// Widgets are plain values with a Render method. Every time a node renders,
// its widget declares the node's children as a slice of Element values; the
// Runtime diffs that declaration against the committed children, keeping the
// Index and hook state of matched nodes, creating new nodes and tearing down
// dropped ones.
//
// # Hooks
//
// State lives in hooks resolved against the rendering node:
//
//	func counter(ctx *core.Context, _ []core.Element) []core.Element {
//	    count := core.CreateState(ctx, 0)
//	    return []core.Element{{
//	        Style: &style.Style{Text: strconv.Itoa(count.Get())},
//	        OnEvent: func(e *events.Event) {
//	            if e.Kind == events.KindClick {
//	                count.Update(func(n int) int { return n + 1 })
//	            }
//	        },
//	    }}
//	}
//
// Hooks of the same type must be called in the same order on every render.
// The slot key is (call order, value type); calling a hook with a different
// type than the previous call restarts the call order at zero.
//
// # Dirty Tracking
//
// Changing a binding that a node subscribed to (through CreateState, Watch,
// CreateConsumer, Global or an effect dependency) adds the node to the
// runtime's DirtySet. Bindings may be set from any goroutine; the set is
// drained only by Render on the UI goroutine.
package core
