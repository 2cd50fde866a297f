package events

import (
	stderrors "errors"
	"reflect"
	"slices"
	"testing"

	"github.com/go-drift/sprout/pkg/errors"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

type fakeNode struct {
	name      string
	rect      graphics.Rect
	handler   Handler
	focusable bool
	clip      bool
}

type fakeTree struct {
	arena *tree.Arena[*fakeNode]
	root  tree.Index
}

func newFakeTree() *fakeTree {
	return &fakeTree{arena: tree.NewArena[*fakeNode]()}
}

func (f *fakeTree) add(parent tree.Index, n *fakeNode) tree.Index {
	idx := f.arena.Insert(parent, n)
	if parent.IsZero() {
		f.root = idx
	}
	return idx
}

func (f *fakeTree) Contains(idx tree.Index) bool               { return f.arena.Contains(idx) }
func (f *fakeTree) Parent(idx tree.Index) (tree.Index, bool) { return f.arena.Parent(idx) }

func (f *fakeTree) PaintOrder() []tree.Index {
	var out []tree.Index
	if f.root.IsZero() {
		return nil
	}
	f.arena.Walk(f.root, func(idx tree.Index) bool {
		out = append(out, idx)
		return true
	})
	return out
}

func (f *fakeTree) Handler(idx tree.Index) Handler {
	n, ok := f.arena.Get(idx)
	if !ok {
		return nil
	}
	return n.handler
}

func (f *fakeTree) Focusable(idx tree.Index) bool {
	n, ok := f.arena.Get(idx)
	return ok && n.focusable
}

func (f *fakeTree) Clips(idx tree.Index) bool {
	n, ok := f.arena.Get(idx)
	return ok && n.clip
}

func (f *fakeTree) Rect(idx tree.Index) (graphics.Rect, bool) {
	n, ok := f.arena.Get(idx)
	if !ok {
		return graphics.Rect{}, false
	}
	return n.rect, true
}

type recorder struct {
	log []string
}

func (r *recorder) handler(name string, kinds ...Kind) Handler {
	return func(e *Event) {
		if len(kinds) > 0 {
			match := false
			for _, k := range kinds {
				if e.Kind == k {
					match = true
				}
			}
			if !match {
				return
			}
		}
		r.log = append(r.log, name+":"+e.Kind.String())
	}
}

func TestClickBubblesUntilStopped(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	window := ft.add(tree.Index{}, &fakeNode{name: "window", rect: graphics.RectFromLTWH(0, 0, 200, 200),
		handler: rec.handler("window", KindClick)})
	panel := ft.add(window, &fakeNode{name: "panel", rect: graphics.RectFromLTWH(0, 0, 100, 100),
		handler: rec.handler("panel", KindClick)})
	ft.add(panel, &fakeNode{name: "button", rect: graphics.RectFromLTWH(10, 10, 30, 20),
		handler: func(e *Event) {
			if e.Kind == KindClick {
				rec.log = append(rec.log, "button:click")
				e.StopPropagation()
			}
		}})

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{PointerDown{X: 15, Y: 15}, PointerUp{X: 15, Y: 15}})

	want := []string{"button:click"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Errorf("log = %v, want %v", rec.log, want)
	}

	rec.log = nil
	d.Process([]InputEvent{PointerDown{X: 50, Y: 50}, PointerUp{X: 50, Y: 50}})
	want = []string{"panel:click", "window:click"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Errorf("log = %v, want %v", rec.log, want)
	}
}

func TestClickRequiresSameTarget(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100),
		handler: rec.handler("root", KindClick)})
	ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 10, 10),
		handler: rec.handler("a", KindClick)})

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{PointerDown{X: 5, Y: 5}, PointerUp{X: 50, Y: 50}})
	if len(rec.log) != 0 {
		t.Errorf("click delivered across targets: %v", rec.log)
	}
}

func TestHoverEnterLeaveOnce(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 200, 200)})
	ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 50, 50),
		handler: rec.handler("box", KindPointerEnter, KindPointerLeave)})

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{
		PointerMove{X: 100, Y: 100},
		PointerMove{X: 10, Y: 10},
		PointerMove{X: 20, Y: 20},
		PointerMove{X: 49, Y: 49},
		PointerMove{X: 100, Y: 100},
	})

	want := []string{"box:pointer-enter", "box:pointer-leave"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Errorf("log = %v, want %v", rec.log, want)
	}
}

func TestHoverOrdering(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 200, 200),
		handler: rec.handler("root", KindPointerEnter, KindPointerLeave)})
	left := ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100),
		handler: rec.handler("left", KindPointerEnter, KindPointerLeave)})
	ft.add(left, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 50, 50),
		handler: rec.handler("inner", KindPointerEnter, KindPointerLeave)})
	ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(100, 0, 100, 100),
		handler: rec.handler("right", KindPointerEnter, KindPointerLeave)})

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{PointerMove{X: 10, Y: 10}})
	want := []string{"root:pointer-enter", "left:pointer-enter", "inner:pointer-enter"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Fatalf("enter log = %v, want %v", rec.log, want)
	}

	rec.log = nil
	d.Process([]InputEvent{PointerMove{X: 150, Y: 10}})
	want = []string{"inner:pointer-leave", "left:pointer-leave", "right:pointer-enter"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Errorf("transition log = %v, want %v", rec.log, want)
	}
	if got := d.Hovered(); len(got) != 2 {
		t.Errorf("Hovered() = %v, want right and root", got)
	}
}

func TestOverlapLastPaintedWins(t *testing.T) {
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100)})
	ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 60, 60)})
	top := ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(40, 40, 60, 60)})

	d := NewDispatcher(ft, ft)
	got, ok := d.HitTest(graphics.Offset{X: 50, Y: 50})
	if !ok || got != top {
		t.Errorf("HitTest = %v, %v; want %v", got, ok, top)
	}
	if _, ok := d.HitTest(graphics.Offset{X: 150, Y: 50}); ok {
		t.Error("HitTest outside root should miss")
	}
}

func TestFocusMovesOnClick(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 200, 100)})
	a := ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100), focusable: true,
		handler: rec.handler("a", KindFocus, KindBlur, KindClick, KindCharacter)})
	label := ft.add(a, &fakeNode{rect: graphics.RectFromLTWH(10, 10, 20, 20)})
	b := ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(100, 0, 100, 100), focusable: true,
		handler: rec.handler("b", KindFocus, KindBlur, KindClick, KindCharacter)})
	_ = label

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{PointerDown{X: 15, Y: 15}, PointerUp{X: 15, Y: 15}})
	if got, ok := d.Focused(); !ok || got != a {
		t.Fatalf("Focused() = %v, %v; want %v", got, ok, a)
	}

	d.Process([]InputEvent{CharacterInput{Char: 'x'}})
	d.Process([]InputEvent{PointerDown{X: 150, Y: 15}, PointerUp{X: 150, Y: 15}})
	if got, _ := d.Focused(); got != b {
		t.Errorf("Focused() = %v, want %v", got, b)
	}

	want := []string{"a:focus", "a:click", "a:character", "a:blur", "b:focus", "b:click"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Errorf("log = %v, want %v", rec.log, want)
	}
}

func TestClickOnNonFocusableClearsFocus(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 200, 100)})
	a := ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100), focusable: true,
		handler: rec.handler("a", KindFocus, KindBlur)})

	d := NewDispatcher(ft, ft)
	d.RequestFocus(a)
	d.Process([]InputEvent{PointerDown{X: 150, Y: 50}, PointerUp{X: 150, Y: 50}})

	if _, ok := d.Focused(); ok {
		t.Error("focus should be cleared")
	}
	want := []string{"a:focus", "a:blur"}
	if !reflect.DeepEqual(rec.log, want) {
		t.Errorf("log = %v, want %v", rec.log, want)
	}
}

func TestCharacterWithoutFocusDropped(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 10, 10), handler: rec.handler("root")})

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{CharacterInput{Char: 'q'}})
	if len(rec.log) != 0 {
		t.Errorf("log = %v, want nothing", rec.log)
	}
}

func TestScrollAndResize(t *testing.T) {
	var scrolled graphics.Offset
	var resized graphics.Size
	var hostSize graphics.Size
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100), handler: func(e *Event) {
		switch e.Kind {
		case KindResize:
			resized = e.Size
		case KindScroll:
			scrolled = e.Delta
		}
	}})
	ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 50, 50)})

	d := NewDispatcher(ft, ft)
	d.OnResize = func(s graphics.Size) { hostSize = s }
	d.Process([]InputEvent{
		Scroll{X: 10, Y: 10, DeltaY: -3},
		WindowResize{Width: 320, Height: 240},
	})

	if scrolled != (graphics.Offset{Y: -3}) {
		t.Errorf("scroll delta = %v", scrolled)
	}
	want := graphics.Size{Width: 320, Height: 240}
	if resized != want || hostSize != want {
		t.Errorf("resize = %v host %v, want %v", resized, hostSize, want)
	}
	if pos, ok := d.Pointer(); !ok || pos != (graphics.Offset{X: 10, Y: 10}) {
		t.Errorf("Pointer() = %v, %v", pos, ok)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	var reached bool
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100), handler: func(e *Event) {
		if e.Kind == KindClick {
			reached = true
		}
	}})
	button := ft.add(root, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 50, 50), handler: func(e *Event) {
		if e.Kind == KindClick {
			panic("boom")
		}
	}})

	var reported []*errors.SproutError
	errors.SetHandler(&eventErrors{onError: func(err *errors.SproutError) { reported = append(reported, err) }})
	t.Cleanup(func() { errors.SetHandler(nil) })

	d := NewDispatcher(ft, ft)
	d.Process([]InputEvent{PointerDown{X: 5, Y: 5}, PointerUp{X: 5, Y: 5}})
	if !reached {
		t.Error("ancestor handler should still run after a panic")
	}

	if len(reported) != 1 || reported[0].Kind != errors.KindEvent {
		t.Fatalf("reported = %v, want one event error", reported)
	}
	var evErr *errors.EventError
	if !stderrors.As(reported[0], &evErr) {
		t.Fatalf("%v does not wrap EventError", reported[0])
	}
	if evErr.Event != "click" || evErr.Node != button.String() || evErr.Value != "boom" {
		t.Errorf("EventError = %+v", evErr)
	}
}

type eventErrors struct {
	onError func(*errors.SproutError)
}

func (h *eventErrors) HandleError(err *errors.SproutError) { h.onError(err) }
func (h *eventErrors) HandlePanic(*errors.PanicError)      {}
func (h *eventErrors) HandleBuildError(*errors.BuildError) {}

func TestForgetDropsFocus(t *testing.T) {
	ft := newFakeTree()
	root := ft.add(tree.Index{}, &fakeNode{rect: graphics.RectFromLTWH(0, 0, 100, 100), focusable: true})
	d := NewDispatcher(ft, ft)
	d.RequestFocus(root)
	d.Forget(root)
	if _, ok := d.Focused(); ok {
		t.Error("forgotten node should not stay focused")
	}
}

func TestHitTestRespectsClip(t *testing.T) {
	rec := &recorder{}
	ft := newFakeTree()
	window := ft.add(tree.Index{}, &fakeNode{name: "window", rect: graphics.RectFromLTWH(0, 0, 200, 200),
		handler: rec.handler("window", KindPointerEnter, KindPointerLeave)})
	viewport := ft.add(window, &fakeNode{name: "viewport", rect: graphics.RectFromLTWH(0, 0, 100, 50), clip: true,
		handler: rec.handler("viewport", KindPointerEnter, KindPointerLeave)})
	content := ft.add(viewport, &fakeNode{name: "content", rect: graphics.RectFromLTWH(0, 0, 100, 40)})
	hidden := ft.add(content, &fakeNode{name: "hidden", rect: graphics.RectFromLTWH(0, 60, 100, 20),
		handler: rec.handler("hidden", KindPointerEnter, KindPointerLeave)})
	d := NewDispatcher(ft, ft)

	tests := []struct {
		name string
		pos  graphics.Offset
		want tree.Index
	}{
		{"inside clip", graphics.Offset{X: 10, Y: 10}, content},
		{"clipped row", graphics.Offset{X: 10, Y: 65}, window},
		{"clip edge", graphics.Offset{X: 10, Y: 45}, viewport},
	}
	for _, tt := range tests {
		got, ok := d.HitTest(tt.pos)
		if !ok || got != tt.want {
			t.Errorf("%s: HitTest = %v, want %v", tt.name, got, tt.want)
		}
	}

	d.Process([]InputEvent{PointerMove{X: 10, Y: 65}})
	for _, entry := range rec.log {
		if entry == "hidden:pointer-enter" {
			t.Fatalf("clipped node received enter: %v", rec.log)
		}
	}
	if slices.Contains(d.Hovered(), hidden) {
		t.Error("clipped node is hovered")
	}
}
