// Package testbed provides internal test widgets for the testing framework.
package testbed

import (
	"strconv"

	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
)

// Counter displays a count and increments it on click.
type Counter struct {
	Initial int
	OnTap   func(count int)
}

func (c Counter) Render(ctx *core.Context, _ []core.Element) []core.Element {
	count := core.CreateState(ctx, c.Initial)
	return []core.Element{{
		Key: "increment",
		Style: &style.Style{
			Width:      style.Px(80),
			Height:     style.Px(24),
			Background: graphics.ColorBlue,
			Text:       strconv.Itoa(count.Get()),
		},
		Focusable: true,
		OnEvent: func(e *events.Event) {
			if e.Kind != events.KindClick {
				return
			}
			count.Update(func(n int) int { return n + 1 })
			if c.OnTap != nil {
				c.OnTap(count.Get())
			}
		},
	}}
}

// Input collects typed characters while focused.
type Input struct {
	Width float64
}

func (in Input) Render(ctx *core.Context, _ []core.Element) []core.Element {
	value := core.CreateState(ctx, "")
	focused := core.CreateState(ctx, false)
	border := graphics.ColorBlack
	if focused.Get() {
		border = graphics.ColorBlue
	}
	return []core.Element{{
		Key: "input",
		Style: &style.Style{
			Width:       style.Px(in.Width),
			Height:      style.Px(20),
			BorderColor: border,
			BorderWidth: 1,
			Text:        value.Get(),
		},
		Focusable: true,
		OnEvent: func(e *events.Event) {
			switch e.Kind {
			case events.KindFocus:
				focused.Set(true)
			case events.KindBlur:
				focused.Set(false)
			case events.KindCharacter:
				value.Update(func(s string) string { return s + string(e.Char) })
			}
		},
	}}
}
