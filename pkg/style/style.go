// Package style describes how a node is sized, laid out and painted.
package style

import (
	"fmt"

	"golang.org/x/image/font"

	"github.com/go-drift/sprout/pkg/graphics"
)

// Unit selects how a Dimension is resolved.
type Unit uint8

const (
	// UnitAuto sizes the node from its content.
	UnitAuto Unit = iota
	// UnitPixels is a fixed size in logical pixels.
	UnitPixels
	// UnitPercent is a percentage of the parent's inner extent.
	UnitPercent
	// UnitStretch takes a weighted share of the space left over after
	// fixed, percentage and auto siblings along the layout axis.
	UnitStretch
)

func (u Unit) String() string {
	switch u {
	case UnitPixels:
		return "px"
	case UnitPercent:
		return "percent"
	case UnitStretch:
		return "stretch"
	default:
		return "auto"
	}
}

// Dimension is one axis of a node's requested size.
type Dimension struct {
	Unit  Unit
	Value float64
}

// Auto sizes from content.
var Auto = Dimension{}

// Px returns a fixed dimension.
func Px(v float64) Dimension {
	return Dimension{Unit: UnitPixels, Value: v}
}

// Percent returns a dimension relative to the parent's inner extent.
// Percent(50) is half of the parent.
func Percent(p float64) Dimension {
	return Dimension{Unit: UnitPercent, Value: p}
}

// Stretch returns a proportional dimension with the given weight.
// Non-positive weights are treated as 1.
func Stretch(weight float64) Dimension {
	if weight <= 0 {
		weight = 1
	}
	return Dimension{Unit: UnitStretch, Value: weight}
}

// IsFixed reports whether the dimension is a pixel size.
func (d Dimension) IsFixed() bool {
	return d.Unit == UnitPixels
}

func (d Dimension) String() string {
	switch d.Unit {
	case UnitPixels:
		return fmt.Sprintf("%gpx", d.Value)
	case UnitPercent:
		return fmt.Sprintf("%g%%", d.Value)
	case UnitStretch:
		return fmt.Sprintf("stretch(%g)", d.Value)
	default:
		return "auto"
	}
}

// Axis is the direction children are placed in.
type Axis uint8

const (
	// Column places children top to bottom.
	Column Axis = iota
	// Row places children left to right.
	Row
)

func (a Axis) String() string {
	if a == Row {
		return "row"
	}
	return "column"
}

// Style holds the layout and paint properties of a node. The zero value is
// an auto-sized, transparent column.
type Style struct {
	Width     Dimension
	Height    Dimension
	Padding   graphics.EdgeInsets
	Direction Axis

	Background   graphics.Color
	BorderColor  graphics.Color
	BorderWidth  float64
	CornerRadius float64
	Clip         bool

	Text       string
	FontSize   float64
	FontWeight font.Weight
	TextColor  graphics.Color

	// Image names an asset resolved by the renderer. ImageSize is its
	// intrinsic size, used when the node is auto-sized.
	Image     string
	ImageSize graphics.Size
	// NineSlice, when non-zero, draws Image as a nine-patch with these
	// edge insets.
	NineSlice graphics.EdgeInsets
}

// DefaultFontSize applies when Style.FontSize is zero.
const DefaultFontSize = 13

// EffectiveFontSize returns FontSize or DefaultFontSize.
func (s *Style) EffectiveFontSize() float64 {
	if s == nil || s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// HasBoxDecoration reports whether the style paints a background or border.
func (s *Style) HasBoxDecoration() bool {
	if s == nil {
		return false
	}
	return !s.Background.IsTransparent() || (s.BorderWidth > 0 && !s.BorderColor.IsTransparent())
}

// IsFixedSize reports whether both dimensions are pixel sizes, which makes
// the node a relayout boundary: its size never depends on its children.
func (s *Style) IsFixedSize() bool {
	return s != nil && s.Width.IsFixed() && s.Height.IsFixed()
}

// LayoutEqual reports whether two styles resolve to the same geometry.
// Paint-only changes don't require relayout.
func LayoutEqual(a, b *Style) bool {
	if a == nil {
		a = &Style{}
	}
	if b == nil {
		b = &Style{}
	}
	return a.Width == b.Width &&
		a.Height == b.Height &&
		a.Padding == b.Padding &&
		a.Direction == b.Direction &&
		a.Text == b.Text &&
		a.FontSize == b.FontSize &&
		a.ImageSize == b.ImageSize
}
