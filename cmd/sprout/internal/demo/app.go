package demo

import (
	"fmt"
	"strings"

	"github.com/go-drift/sprout/pkg/binding"
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
)

// Clicks is the app-wide click counter, shared through core.Global.
type Clicks int

// Log is the list of lines shown in the log pane.
type Log []string

// App is the demo root.
type App struct {
	Title string
}

func (a App) Render(ctx *core.Context, _ []core.Element) []core.Element {
	theme := core.CreateProvider(ctx, Dark)
	log := core.CreateProvider(ctx, Log{"ready"})
	clicks := core.Global(ctx, Clicks(0))

	core.CreateEffect(ctx, func() {
		if n := clicks.Get(); n > 0 {
			appendLog(log, fmt.Sprintf("clicked %d", n))
		}
	}, clicks)

	th := theme.Get()
	return []core.Element{core.Box(&style.Style{
		Width:      style.Stretch(1),
		Height:     style.Stretch(1),
		Background: th.Background,
	},
		core.Box(&style.Style{
			Width:      style.Stretch(1),
			Height:     style.Px(1),
			Background: th.Accent,
			TextColor:  th.Background,
			Text:       fmt.Sprintf(" %s (%s)", a.Title, th.Name),
		}),
		core.Box(&style.Style{Direction: style.Row, Height: style.Px(1)},
			core.Of(Button{Label: "+1", OnClick: func() { clicks.Update(func(n Clicks) Clicks { return n + 1 }) }}),
			gap(),
			core.Of(Button{Label: "theme", OnClick: func() { theme.Update(Theme.Toggle) }}),
			gap(),
			core.Of(Button{Label: "clear", OnClick: func() { log.Set(nil) }}),
			gap(),
			core.Of(ClickLabel{}),
		),
		core.Of(Input{Width: 30, OnSubmit: func(line string) { appendLog(log, "> "+line) }}),
		fill(core.Of(LogView{})),
	)}
}

func fill(el core.Element) core.Element {
	el.Style = &style.Style{Width: style.Stretch(1), Height: style.Stretch(1)}
	return el
}

func gap() core.Element {
	return core.Box(&style.Style{Width: style.Px(1)})
}

func appendLog(log *binding.Binding[Log], line string) {
	log.Update(func(l Log) Log { return append(l[:len(l):len(l)], line) })
}

// Button is a one-line button that highlights while hovered.
type Button struct {
	Label   string
	OnClick func()
}

func (b Button) Render(ctx *core.Context, _ []core.Element) []core.Element {
	th := core.MustConsume[Theme](ctx).Get()
	hovered := core.CreateState(ctx, false)
	bg := th.Surface
	if hovered.Get() {
		bg = th.Hover
	}
	return []core.Element{{
		Key: b.Label,
		Style: &style.Style{
			Height:     style.Px(1),
			Padding:    graphics.Symmetric(1, 0),
			Background: bg,
			TextColor:  th.Text,
			Text:       b.Label,
		},
		Focusable: true,
		OnEvent: func(e *events.Event) {
			switch e.Kind {
			case events.KindPointerEnter:
				hovered.Set(true)
			case events.KindPointerLeave:
				hovered.Set(false)
			case events.KindClick:
				if b.OnClick != nil {
					b.OnClick()
				}
			}
		},
	}}
}

// ClickLabel shows the global click count.
type ClickLabel struct{}

func (ClickLabel) Render(ctx *core.Context, _ []core.Element) []core.Element {
	clicks := core.Global(ctx, Clicks(0))
	th := core.MustConsume[Theme](ctx).Get()
	return []core.Element{core.Box(&style.Style{
		TextColor: th.Text,
		Text:      fmt.Sprintf("clicks: %d", clicks.Get()),
	})}
}

// Input is a bordered single-line text field. Enter submits the line.
type Input struct {
	Width    float64
	OnSubmit func(line string)
}

func (in Input) Render(ctx *core.Context, _ []core.Element) []core.Element {
	th := core.MustConsume[Theme](ctx).Get()
	value := core.CreateState(ctx, "")
	focused := core.CreateState(ctx, false)

	border := th.Surface
	text := value.Get()
	if focused.Get() {
		border = th.Accent
		text += "_"
	}
	el := core.Box(&style.Style{
		Width:       style.Px(in.Width),
		Height:      style.Px(3),
		Padding:     graphics.Symmetric(1, 1),
		BorderColor: border,
		BorderWidth: 1,
	}, core.Box(&style.Style{Width: style.Stretch(1), TextColor: th.Text, Text: text}))
	el.Key = "input"
	el.Focusable = true
	el.OnEvent = func(e *events.Event) {
		switch e.Kind {
		case events.KindFocus:
			focused.Set(true)
		case events.KindBlur:
			focused.Set(false)
		case events.KindCharacter:
			switch e.Char {
			case '\n':
				if line := value.Get(); line != "" && in.OnSubmit != nil {
					in.OnSubmit(line)
				}
				value.Set("")
			case '\b':
				value.Update(func(s string) string {
					if r := []rune(s); len(r) > 0 {
						return string(r[:len(r)-1])
					}
					return s
				})
			default:
				value.Update(func(s string) string { return s + string(e.Char) })
			}
		}
	}
	return []core.Element{el}
}

// LogView lists the log lines in a clipped pane that scrolls with the wheel.
type LogView struct{}

func (LogView) Render(ctx *core.Context, _ []core.Element) []core.Element {
	th := core.MustConsume[Theme](ctx).Get()
	lines := core.MustConsume[Log](ctx).Get()
	offset := core.CreateState(ctx, 0)

	first := min(max(offset.Get(), 0), max(len(lines)-1, 0))
	var visible []string
	if first < len(lines) {
		visible = lines[first:]
	}

	el := core.Box(&style.Style{
		Width:      style.Stretch(1),
		Height:     style.Stretch(1),
		Background: th.Surface,
	}, core.Box(&style.Style{
		Width:  style.Stretch(1),
		Height: style.Stretch(1),
		Clip:   true,
	}, core.Box(&style.Style{
		TextColor: th.Text,
		Text:      strings.Join(visible, "\n"),
	})))
	el.Key = "log"
	el.OnEvent = func(e *events.Event) {
		if e.Kind == events.KindScroll {
			offset.Update(func(n int) int { return min(max(n+int(e.Delta.Y), 0), max(len(lines)-1, 0)) })
		}
	}
	return []core.Element{el}
}
