package core_test

import (
	"fmt"

	"github.com/go-drift/sprout/pkg/core"
)

// This example shows state surviving re-renders of the same node.
func ExampleCreateState() {
	counter := core.WidgetFunc(func(ctx *core.Context, _ []core.Element) []core.Element {
		count := core.CreateState(ctx, 0)
		fmt.Printf("render with count=%d\n", count.Get())
		if count.Get() < 2 {
			count.Update(func(n int) int { return n + 1 })
		}
		return nil
	})

	rt := core.NewRuntime()
	rt.Mount(core.Of(counter))
	for rt.NeedsRender() {
		if _, err := rt.Render(); err != nil {
			fmt.Println(err)
			return
		}
	}

	// Output:
	// render with count=0
	// render with count=1
	// render with count=2
}

// This example shows a provider value reaching a descendant.
func ExampleCreateConsumer() {
	type locale string

	app := core.WidgetFunc(func(ctx *core.Context, children []core.Element) []core.Element {
		core.CreateProvider(ctx, locale("en-GB"))
		return children
	})
	label := core.WidgetFunc(func(ctx *core.Context, _ []core.Element) []core.Element {
		if l, ok := core.CreateConsumer[locale](ctx); ok {
			fmt.Println("locale:", l.Get())
		}
		return nil
	})

	rt := core.NewRuntime()
	rt.Mount(core.Of(app, core.Box(nil, core.Of(label))))
	if _, err := rt.Render(); err != nil {
		fmt.Println(err)
	}

	// Output:
	// locale: en-GB
}
