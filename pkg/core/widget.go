package core

import (
	"reflect"
	"runtime"

	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/style"
)

// Widget declares the children of the node it is mounted at. Render is
// called on every render of that node with the children declared for it by
// its parent, and returns the node's actual children.
type Widget interface {
	Render(ctx *Context, children []Element) []Element
}

// WidgetFunc adapts a function to the Widget interface. Two WidgetFunc values
// share an identity when they come from the same function literal or
// declaration.
type WidgetFunc func(ctx *Context, children []Element) []Element

// Render calls f.
func (f WidgetFunc) Render(ctx *Context, children []Element) []Element {
	return f(ctx, children)
}

// Element is one declared node: a widget plus the per-node data the runtime
// keeps for layout, painting and input.
//
// A nil Widget renders its Children unchanged, which makes plain styled
// containers and leaves cheap to declare.
type Element struct {
	Widget Widget
	// Key matches this element against a previous sibling with the same key
	// instead of by position. Empty means unkeyed.
	Key       string
	Style     *style.Style
	OnEvent   events.Handler
	Focusable bool
	Children  []Element
}

// Box declares a styled container.
func Box(st *style.Style, children ...Element) Element {
	return Element{Style: st, Children: children}
}

// Of declares a widget with no style.
func Of(w Widget, children ...Element) Element {
	return Element{Widget: w, Children: children}
}

// widgetIdentity is the dynamic type of a widget plus, for function kinds,
// the code pointer. Nodes only match declarations with the same identity.
type widgetIdentity struct {
	typ reflect.Type
	fn  uintptr
}

func identityOf(w Widget) widgetIdentity {
	if w == nil {
		return widgetIdentity{}
	}
	v := reflect.ValueOf(w)
	id := widgetIdentity{typ: v.Type()}
	if v.Kind() == reflect.Func && !v.IsNil() {
		id.fn = v.Pointer()
	}
	return id
}

func (id widgetIdentity) String() string {
	if id.typ == nil {
		return "Element"
	}
	if id.fn != 0 {
		if f := runtime.FuncForPC(id.fn); f != nil {
			return f.Name()
		}
	}
	return id.typ.String()
}
