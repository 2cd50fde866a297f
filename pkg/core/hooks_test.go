package core

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/go-drift/sprout/pkg/binding"
	"github.com/go-drift/sprout/pkg/errors"
)

func TestCreateStateIdentityStable(t *testing.T) {
	var got []*binding.Binding[int]
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		a := CreateState(ctx, 1)
		b := CreateState(ctx, 2)
		got = append(got, a, b)
		return nil
	})

	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)

	got[0].Set(10)
	if !rt.NeedsRender() {
		t.Fatal("setting state should mark the node dirty")
	}
	mustRender(t, rt)

	if len(got) != 4 {
		t.Fatalf("rendered %d hook pairs, want 2", len(got)/2)
	}
	if got[2] != got[0] || got[3] != got[1] {
		t.Error("state bindings should be reused across renders")
	}
	if got[0] == got[1] {
		t.Error("consecutive same-type calls should get distinct slots")
	}
	if got[2].Get() != 10 || got[3].Get() != 2 {
		t.Errorf("values = %d, %d; want 10, 2", got[2].Get(), got[3].Get())
	}
}

func TestCreateStateTypeChangeResetsOrder(t *testing.T) {
	var first, third *binding.Binding[int]
	var second *binding.Binding[string]
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		first = CreateState(ctx, 1)
		second = CreateState(ctx, "x")
		third = CreateState(ctx, 3)
		return nil
	})

	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)

	if first != third {
		t.Fatal("int, string, int should put the first and third call in the same slot")
	}
	if third.Get() != 1 {
		t.Errorf("third.Get() = %d, want the first call's initial value 1", third.Get())
	}
	if second.Get() != "x" {
		t.Errorf("second.Get() = %q", second.Get())
	}
}

func TestStateSetFromGoroutine(t *testing.T) {
	var count *binding.Binding[int]
	frames := make(chan struct{}, 4)
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		count = CreateState(ctx, 0)
		return nil
	})

	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)
	rt.OnNeedsFrame = func() { frames <- struct{}{} }

	done := make(chan struct{})
	go func() {
		count.Set(5)
		close(done)
	}()
	<-done

	select {
	case <-frames:
	default:
		t.Fatal("OnNeedsFrame was not called")
	}
	res := mustRender(t, rt)
	if len(res.Touched) != 1 {
		t.Errorf("touched %d nodes, want 1", len(res.Touched))
	}
}

func TestProviderConsumer(t *testing.T) {
	type theme struct{ name string }

	var provided, consumed *binding.Binding[theme]
	var found bool
	var consumerRenders int
	initial := theme{"dark"}

	consumer := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		consumerRenders++
		consumed, found = CreateConsumer[theme](ctx)
		return nil
	})
	provider := WidgetFunc(func(ctx *Context, children []Element) []Element {
		provided = CreateProvider(ctx, initial)
		return children
	})

	rt := NewRuntime()
	root := rt.Mount(Of(provider, Box(nil, Of(consumer))))
	mustRender(t, rt)

	if !found || consumed != provided {
		t.Fatal("consumer should find the ancestor provider")
	}

	initial = theme{"light"}
	rt.MarkNeedsRender(root)
	mustRender(t, rt)
	if provided.Get().name != "dark" {
		t.Errorf("provider re-initialized to %q", provided.Get().name)
	}

	before := consumerRenders
	provided.Set(theme{"blue"})
	mustRender(t, rt)
	if consumerRenders != before+1 {
		t.Errorf("consumer rendered %d times after provider change, want 1", consumerRenders-before)
	}
}

func TestProviderRendersOwnerOnChange(t *testing.T) {
	var theme *binding.Binding[string]
	var seen []string
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		theme = CreateProvider(ctx, "light")
		seen = append(seen, theme.Get())
		return nil
	})

	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)

	theme.Set("dark")
	if !rt.NeedsRender() {
		t.Fatal("provider Set should schedule the providing node")
	}
	mustRender(t, rt)
	if want := []string{"light", "dark"}; !slices.Equal(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}

	rt.Mount(Box(nil))
	mustRender(t, rt)
	if n := theme.SubscriberCount(); n != 0 {
		t.Errorf("subscribers after teardown = %d, want 0", n)
	}
}

func TestConsumerWithoutProvider(t *testing.T) {
	found := true
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		_, found = CreateConsumer[float64](ctx)
		return nil
	})
	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)
	if found {
		t.Error("CreateConsumer should report no provider")
	}
}

func TestProviderIsNotVisibleToItself(t *testing.T) {
	found := true
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		CreateProvider(ctx, 1)
		_, found = CreateConsumer[int](ctx)
		return nil
	})
	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)
	if found {
		t.Error("a node should not consume its own provider")
	}
}

func TestEffectRunsOnceThenOnChange(t *testing.T) {
	dep := binding.New(0)
	runs := 0
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		CreateEffect(ctx, func() { runs++ }, dep)
		return nil
	})

	rt := NewRuntime()
	root := rt.Mount(Of(w))
	mustRender(t, rt)
	if runs != 1 {
		t.Fatalf("runs after mount = %d, want 1", runs)
	}

	rt.MarkNeedsRender(root)
	mustRender(t, rt)
	if runs != 1 {
		t.Errorf("runs after unchanged render = %d, want 1", runs)
	}

	dep.Set(1)
	dep.Set(2)
	mustRender(t, rt)
	if runs != 2 {
		t.Errorf("runs after dependency change = %d, want 2", runs)
	}

	rt.MarkNeedsRender(root)
	mustRender(t, rt)
	if runs != 2 {
		t.Errorf("runs after second unchanged render = %d, want 2", runs)
	}
}

func TestEffectRetriedAfterPanic(t *testing.T) {
	h := captureErrors(t)
	dep := binding.New(0)
	runs := 0
	fail := false
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		CreateEffect(ctx, func() {
			runs++
			if fail {
				panic("effect failed")
			}
		}, dep)
		return nil
	})

	rt := NewRuntime()
	root := rt.Mount(Of(w))
	mustRender(t, rt)

	fail = true
	dep.Set(1)
	mustRender(t, rt)
	if runs != 2 || len(h.builds) != 1 {
		t.Fatalf("runs = %d, build errors = %d, want 2 and 1", runs, len(h.builds))
	}

	fail = false
	rt.MarkNeedsRender(root)
	mustRender(t, rt)
	if runs != 3 {
		t.Errorf("runs after retry = %d, want 3", runs)
	}

	rt.MarkNeedsRender(root)
	mustRender(t, rt)
	if runs != 3 {
		t.Errorf("runs after unchanged render = %d, want 3", runs)
	}
}

func TestEffectDependencyBundleChange(t *testing.T) {
	a := binding.New("a")
	b := binding.New("b")
	withB := binding.New(false)
	runs := 0
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		Watch(ctx, withB)
		if withB.Get() {
			CreateEffect(ctx, func() { runs++ }, a, b)
		} else {
			CreateEffect(ctx, func() { runs++ }, a)
		}
		return nil
	})

	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)

	withB.Set(true)
	mustRender(t, rt)
	if runs != 2 {
		t.Errorf("runs = %d, want 2 after the bundle grew", runs)
	}
	if a.SubscriberCount() != 1 || b.SubscriberCount() != 1 {
		t.Errorf("subscribers a=%d b=%d, want 1 each", a.SubscriberCount(), b.SubscriberCount())
	}
}

func TestEffectWithoutDepsRunsOnce(t *testing.T) {
	runs := 0
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		CreateEffect(ctx, func() { runs++ })
		return nil
	})
	rt := NewRuntime()
	root := rt.Mount(Of(w))
	mustRender(t, rt)
	rt.MarkNeedsRender(root)
	mustRender(t, rt)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestWatchReleasedWhenNotRenewed(t *testing.T) {
	ext := binding.New(0)
	watching := binding.New(true)
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		Watch(ctx, watching)
		if watching.Get() {
			Watch(ctx, ext)
		}
		return nil
	})

	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)
	if ext.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", ext.SubscriberCount())
	}

	ext.Set(1)
	mustRender(t, rt)
	if ext.SubscriberCount() != 1 {
		t.Errorf("renewed watch should not duplicate, got %d", ext.SubscriberCount())
	}

	watching.Set(false)
	mustRender(t, rt)
	if ext.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d after the watch was dropped", ext.SubscriberCount())
	}
	ext.Set(2)
	if rt.NeedsRender() {
		t.Error("dropped watch still marks the node dirty")
	}
}

func TestGlobalShared(t *testing.T) {
	var seen []*binding.Binding[int]
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		seen = append(seen, Global(ctx, 7))
		return nil
	})
	rt := NewRuntime()
	rt.Mount(Box(nil, Of(w), Of(w)))
	mustRender(t, rt)

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatal("Global should return one binding per type")
	}
	if GlobalOf(rt, 0) != seen[0] {
		t.Error("GlobalOf should return the same binding")
	}

	seen = nil
	seen0 := GlobalOf(rt, 0)
	seen0.Set(8)
	res := mustRender(t, rt)
	if len(res.Touched) != 2 {
		t.Errorf("touched %d nodes, want both watchers", len(res.Touched))
	}
}

func TestMustConsumePanicsWithMissingProvider(t *testing.T) {
	h := captureErrors(t)
	w := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		MustConsume[string](ctx)
		return nil
	})
	rt := NewRuntime()
	rt.Mount(Of(w))
	mustRender(t, rt)

	if len(h.builds) != 1 {
		t.Fatalf("build errors = %d, want 1", len(h.builds))
	}
	var missing *errors.MissingProviderError
	if !stderrors.As(h.builds[0], &missing) {
		t.Fatalf("build error %v does not wrap MissingProviderError", h.builds[0])
	}
	if missing.Type != "string" {
		t.Errorf("missing.Type = %q", missing.Type)
	}
}

func TestOnDisposeLatestWins(t *testing.T) {
	var calls []int
	show := binding.New(true)
	version := 0
	child := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		version++
		v := version
		ctx.OnDispose(func() { calls = append(calls, v) })
		return nil
	})
	parent := WidgetFunc(func(ctx *Context, _ []Element) []Element {
		Watch(ctx, show)
		if show.Get() {
			return []Element{Of(child)}
		}
		return nil
	})

	rt := NewRuntime()
	root := rt.Mount(Of(parent))
	mustRender(t, rt)
	rt.MarkNeedsRender(root)
	mustRender(t, rt)

	show.Set(false)
	mustRender(t, rt)
	if len(calls) != 1 || calls[0] != 2 {
		t.Errorf("dispose calls = %v, want [2]", calls)
	}
}
