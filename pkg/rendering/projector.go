package rendering

import (
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
	"github.com/go-drift/sprout/pkg/tree"
)

// Source supplies the resolved style and rectangle of each node.
type Source interface {
	Style(idx tree.Index) *style.Style
	Rect(idx tree.Index) (graphics.Rect, bool)
}

// Frame is one projected frame.
type Frame struct {
	// Primitives holds every node's primitive in paint order.
	Primitives []Primitive
	// Changed holds the primitives that are new or differ from the
	// previous frame, in paint order.
	Changed []Primitive
	// Removed lists nodes that had a primitive in the previous frame and
	// have none now, in the previous frame's paint order.
	Removed []tree.Index
}

// Projector turns a paint order into frames and diffs them against the
// previous one.
type Projector struct {
	last      map[tree.Index]Primitive
	lastOrder []tree.Index
}

// NewProjector creates a projector with an empty previous frame.
func NewProjector() *Projector {
	return &Projector{last: make(map[tree.Index]Primitive)}
}

// Project resolves a primitive for each node in order.
func (p *Projector) Project(order []tree.Index, src Source) *Frame {
	frame := &Frame{Primitives: make([]Primitive, 0, len(order))}
	next := make(map[tree.Index]Primitive, len(order))
	for _, idx := range order {
		rect, _ := src.Rect(idx)
		prim := Resolve(idx, src.Style(idx), rect)
		frame.Primitives = append(frame.Primitives, prim)
		next[idx] = prim
		if prev, ok := p.last[idx]; !ok || prev != prim {
			frame.Changed = append(frame.Changed, prim)
		}
	}
	for _, idx := range p.lastOrder {
		if _, kept := next[idx]; !kept {
			frame.Removed = append(frame.Removed, idx)
		}
	}
	p.last = next
	p.lastOrder = append(p.lastOrder[:0], order...)
	return frame
}

// Reset forgets the previous frame so the next one reports everything as
// changed.
func (p *Projector) Reset() {
	clear(p.last)
	p.lastOrder = p.lastOrder[:0]
}
