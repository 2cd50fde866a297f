package testbed

import (
	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
)

// LayoutBox is a fixed-size colored box for layout testing.
type LayoutBox struct {
	Width  float64
	Height float64
	Color  graphics.Color
}

func (b LayoutBox) Render(_ *core.Context, children []core.Element) []core.Element {
	return []core.Element{core.Box(&style.Style{
		Width:      style.Px(b.Width),
		Height:     style.Px(b.Height),
		Background: b.Color,
	}, children...)}
}
