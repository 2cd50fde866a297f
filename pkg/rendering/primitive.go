// Package rendering projects laid-out nodes into flat draw instructions.
//
// Each node yields exactly one Primitive per frame. The Projector remembers
// the previous frame so a renderer can redraw only what changed.
package rendering

import (
	"golang.org/x/image/font"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
	"github.com/go-drift/sprout/pkg/tree"
)

// Kind selects how a Primitive is drawn.
type Kind uint8

const (
	// KindEmpty draws nothing.
	KindEmpty Kind = iota
	// KindClip restricts descendants to Rect.
	KindClip
	// KindQuad fills Rect with Color and strokes the border.
	KindQuad
	// KindText draws Text inside Rect.
	KindText
	// KindImage draws Image scaled to Rect.
	KindImage
	// KindNinePatch draws Image with fixed NineSlice borders and stretched center.
	KindNinePatch
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindClip:
		return "clip"
	case KindQuad:
		return "quad"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindNinePatch:
		return "nine-patch"
	default:
		return "unknown"
	}
}

// Primitive is the draw instruction for one node. Paint parameters are
// copied from the node's style whatever the kind, so a renderer may paint a
// background behind text. Primitive is comparable.
type Primitive struct {
	Node tree.Index
	Kind Kind
	Rect graphics.Rect

	Color        graphics.Color
	BorderColor  graphics.Color
	BorderWidth  float64
	CornerRadius float64

	Text       string
	FontSize   float64
	FontWeight font.Weight
	TextColor  graphics.Color

	Image     string
	NineSlice graphics.EdgeInsets
}

// Resolve builds the primitive for a node from its style and rectangle.
// Text wins over images, images over clipping, clipping over plain boxes.
func Resolve(idx tree.Index, st *style.Style, rect graphics.Rect) Primitive {
	p := Primitive{Node: idx, Kind: KindEmpty, Rect: rect}
	if st == nil {
		return p
	}
	p.Color = st.Background
	p.BorderColor = st.BorderColor
	p.BorderWidth = st.BorderWidth
	p.CornerRadius = st.CornerRadius
	p.Image = st.Image
	p.NineSlice = st.NineSlice

	switch {
	case st.Text != "":
		p.Kind = KindText
		p.Text = st.Text
		p.FontSize = st.EffectiveFontSize()
		p.FontWeight = st.FontWeight
		p.TextColor = st.TextColor
	case st.Image != "" && !st.NineSlice.IsZero():
		p.Kind = KindNinePatch
	case st.Image != "":
		p.Kind = KindImage
	case st.Clip:
		p.Kind = KindClip
	case st.HasBoxDecoration():
		p.Kind = KindQuad
	}
	return p
}
