// Package text measures text for auto-sized layout.
//
// Glyph rasterization and shaping belong to the renderer. Layout only needs
// an extent, which this package derives from a fixed-metric face scaled to
// the requested font size.
package text

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
)

// FaceMeasurer measures text with a font.Face. Sizes are scaled linearly
// from the face's native line height to the style's font size.
type FaceMeasurer struct {
	Face font.Face
}

// NewMeasurer returns a measurer backed by the 7x13 basic font.
func NewMeasurer() *FaceMeasurer {
	return &FaceMeasurer{Face: basicfont.Face7x13}
}

// MeasureText returns the extent of s rendered with st's font size.
// Each newline starts a new line.
func (m *FaceMeasurer) MeasureText(s string, st *style.Style) graphics.Size {
	if s == "" {
		return graphics.Size{}
	}
	face := m.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	lineHeight := face.Metrics().Height
	if lineHeight <= 0 {
		lineHeight = fixed.I(13)
	}
	scale := st.EffectiveFontSize() / fixedToFloat(lineHeight)

	lines := strings.Split(s, "\n")
	var widest fixed.Int26_6
	for _, line := range lines {
		if w := font.MeasureString(face, line); w > widest {
			widest = w
		}
	}
	return graphics.Size{
		Width:  math.Ceil(fixedToFloat(widest) * scale),
		Height: math.Ceil(fixedToFloat(lineHeight) * scale * float64(len(lines))),
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
