// Package demo is the sample application shown by "sprout run".
package demo

import "github.com/go-drift/sprout/pkg/graphics"

// Theme holds the demo's colors. App provides it; widgets below consume it.
type Theme struct {
	Name       string
	Background graphics.Color
	Surface    graphics.Color
	Hover      graphics.Color
	Accent     graphics.Color
	Text       graphics.Color
}

var (
	// Dark is the default theme.
	Dark = Theme{
		Name:       "dark",
		Background: graphics.RGB(0x1e, 0x1e, 0x2e),
		Surface:    graphics.RGB(0x31, 0x32, 0x44),
		Hover:      graphics.RGB(0x45, 0x47, 0x5a),
		Accent:     graphics.RGB(0x89, 0xb4, 0xfa),
		Text:       graphics.RGB(0xcd, 0xd6, 0xf4),
	}
	// Light is the alternate theme.
	Light = Theme{
		Name:       "light",
		Background: graphics.RGB(0xef, 0xf1, 0xf5),
		Surface:    graphics.RGB(0xcc, 0xd0, 0xda),
		Hover:      graphics.RGB(0xbc, 0xc0, 0xcc),
		Accent:     graphics.RGB(0x1e, 0x66, 0xf5),
		Text:       graphics.RGB(0x4c, 0x4f, 0x69),
	}
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t.Name == Dark.Name {
		return Light
	}
	return Dark
}
