package testing

import (
	"fmt"

	"github.com/go-drift/sprout/pkg/events"
	"github.com/go-drift/sprout/pkg/graphics"
)

// Tap simulates a click at the center of the first node matched by finder,
// then pumps a frame.
func (t *WidgetTester) Tap(finder Finder) error {
	center, err := t.center("Tap", finder)
	if err != nil {
		return err
	}
	return t.TapAt(center)
}

// TapAt simulates a click at pos, then pumps a frame.
func (t *WidgetTester) TapAt(pos graphics.Offset) error {
	return t.Send(
		events.PointerDown{X: pos.X, Y: pos.Y},
		events.PointerUp{X: pos.X, Y: pos.Y},
	)
}

// Hover moves the pointer to the center of the first node matched by
// finder, then pumps a frame.
func (t *WidgetTester) Hover(finder Finder) error {
	center, err := t.center("Hover", finder)
	if err != nil {
		return err
	}
	return t.MoveTo(center)
}

// MoveTo moves the pointer to pos, then pumps a frame.
func (t *WidgetTester) MoveTo(pos graphics.Offset) error {
	return t.Send(events.PointerMove{X: pos.X, Y: pos.Y})
}

// Scroll scrolls by delta at the center of the first node matched by finder,
// then pumps a frame.
func (t *WidgetTester) Scroll(finder Finder, delta graphics.Offset) error {
	center, err := t.center("Scroll", finder)
	if err != nil {
		return err
	}
	return t.Send(events.Scroll{X: center.X, Y: center.Y, DeltaX: delta.X, DeltaY: delta.Y})
}

// Type sends one CharacterInput per rune of text to the focused node, then
// pumps a frame.
func (t *WidgetTester) Type(text string) error {
	input := make([]events.InputEvent, 0, len(text))
	for _, r := range text {
		input = append(input, events.CharacterInput{Char: r})
	}
	return t.Send(input...)
}

// Resize changes the viewport, then pumps a frame.
func (t *WidgetTester) Resize(size graphics.Size) error {
	t.size = size
	return t.Send(events.WindowResize{Width: size.Width, Height: size.Height})
}

// Send delivers raw input in order, then pumps a frame.
func (t *WidgetTester) Send(input ...events.InputEvent) error {
	if t.engine == nil {
		return ErrNotMounted
	}
	t.engine.ProcessEvents(input)
	return t.Pump()
}

func (t *WidgetTester) center(op string, finder Finder) (graphics.Offset, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return graphics.Offset{}, fmt.Errorf("%s: finder matched no nodes: %s", op, finder.Description())
	}
	rect, ok := t.Rect(result.First())
	if !ok {
		return graphics.Offset{}, fmt.Errorf("%s: node has not been laid out: %s", op, finder.Description())
	}
	return graphics.Offset{
		X: rect.Left + rect.Width()/2,
		Y: rect.Top + rect.Height()/2,
	}, nil
}
