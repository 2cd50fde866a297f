package term

import (
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/rendering"
	"github.com/go-drift/sprout/pkg/tree"
)

// cellRect is a rectangle snapped to whole cells.
type cellRect struct {
	x, y, w, h int
}

func toCells(r graphics.Rect) cellRect {
	x := int(math.Round(r.Left))
	y := int(math.Round(r.Top))
	return cellRect{
		x: x,
		y: y,
		w: int(math.Round(r.Right)) - x,
		h: int(math.Round(r.Bottom)) - y,
	}
}

func (c cellRect) intersect(o cellRect) cellRect {
	x0, y0 := max(c.x, o.x), max(c.y, o.y)
	x1, y1 := min(c.x+c.w, o.x+o.w), min(c.y+c.h, o.y+o.h)
	return cellRect{x: x0, y: y0, w: max(0, x1-x0), h: max(0, y1-y0)}
}

func (c cellRect) contains(x, y int) bool {
	return x >= c.x && y >= c.y && x < c.x+c.w && y < c.y+c.h
}

func toColor(c graphics.Color) tcell.Color {
	if c.IsTransparent() {
		return tcell.ColorDefault
	}
	r, g, b, _ := c.Components()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

type clipEntry struct {
	depth int
	rect  cellRect
}

// painter draws primitives onto a screen. A clip primitive restricts the
// primitives that follow it in paint order until one at the same or a
// shallower depth appears.
type painter struct {
	screen tcell.Screen
	clips  []clipEntry
}

func (p *painter) paint(frame *rendering.Frame, depth func(tree.Index) int) {
	p.screen.Clear()
	p.clips = p.clips[:0]
	for _, prim := range frame.Primitives {
		d := depth(prim.Node)
		for len(p.clips) > 0 && p.clips[len(p.clips)-1].depth >= d {
			p.clips = p.clips[:len(p.clips)-1]
		}
		p.draw(prim, d)
	}
}

func (p *painter) visible(r cellRect) cellRect {
	w, h := p.screen.Size()
	out := r.intersect(cellRect{w: w, h: h})
	if n := len(p.clips); n > 0 {
		out = out.intersect(p.clips[n-1].rect)
	}
	return out
}

func (p *painter) draw(prim rendering.Primitive, depth int) {
	rect := toCells(prim.Rect)
	visible := p.visible(rect)
	switch prim.Kind {
	case rendering.KindClip:
		p.clips = append(p.clips, clipEntry{depth: depth, rect: visible})
	case rendering.KindQuad:
		p.fill(visible, toColor(prim.Color))
		if prim.BorderWidth > 0 {
			p.border(rect, visible, toColor(prim.BorderColor))
		}
	case rendering.KindText:
		if !prim.Color.IsTransparent() {
			p.fill(visible, toColor(prim.Color))
		}
		p.text(rect, visible, prim.Text, toColor(prim.TextColor))
	case rendering.KindImage, rendering.KindNinePatch:
		p.text(rect, visible, "["+prim.Image+"]", tcell.ColorDefault)
	}
}

func (p *painter) fill(r cellRect, bg tcell.Color) {
	st := tcell.StyleDefault.Background(bg)
	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			p.screen.SetContent(x, y, ' ', nil, st)
		}
	}
}

func (p *painter) border(r, visible cellRect, fg tcell.Color) {
	if r.w < 2 || r.h < 2 {
		return
	}
	set := func(x, y int, ch rune) {
		if !visible.contains(x, y) {
			return
		}
		_, _, st, _ := p.screen.GetContent(x, y)
		p.screen.SetContent(x, y, ch, nil, st.Foreground(fg))
	}
	right, bottom := r.x+r.w-1, r.y+r.h-1
	for x := r.x + 1; x < right; x++ {
		set(x, r.y, '-')
		set(x, bottom, '-')
	}
	for y := r.y + 1; y < bottom; y++ {
		set(r.x, y, '|')
		set(right, y, '|')
	}
	set(r.x, r.y, '+')
	set(right, r.y, '+')
	set(r.x, bottom, '+')
	set(right, bottom, '+')
}

// text draws s line by line from the top-left of r, truncating lines to the
// rectangle's width. Cells keep the background painted underneath.
func (p *painter) text(r, visible cellRect, s string, fg tcell.Color) {
	for i, line := range strings.Split(s, "\n") {
		y := r.y + i
		if y >= r.y+r.h {
			return
		}
		if runewidth.StringWidth(line) > r.w {
			line = runewidth.Truncate(line, r.w, "…")
		}
		col := 0
		for _, ch := range line {
			x := r.x + col
			col += runewidth.RuneWidth(ch)
			if !visible.contains(x, y) {
				continue
			}
			_, _, st, _ := p.screen.GetContent(x, y)
			p.screen.SetContent(x, y, ch, nil, st.Foreground(fg))
		}
	}
}
