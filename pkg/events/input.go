// Package events resolves host input into widget events.
//
// The host delivers InputEvent values in order. For each one the Dispatcher
// resolves a target by hit-testing cached layout rectangles, synthesizes
// hover and focus transitions, then delivers the primary event along the
// bubble path from the target up to the root. There is no capture phase:
// each node has at most one handler and it runs during bubbling.
package events

import (
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

// InputEvent is a raw event from the host. It is one of PointerMove,
// PointerDown, PointerUp, CharacterInput, Scroll or WindowResize.
type InputEvent interface {
	isInputEvent()
}

// Button identifies a pointer button.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// PointerMove reports the pointer at a new position.
type PointerMove struct {
	X, Y float64
}

// PointerDown reports a button press at a position.
type PointerDown struct {
	X, Y   float64
	Button Button
}

// PointerUp reports a button release at a position.
type PointerUp struct {
	X, Y   float64
	Button Button
}

// CharacterInput reports a typed character. It goes to the focused node.
type CharacterInput struct {
	Char rune
}

// Scroll reports a wheel or trackpad scroll at a position.
type Scroll struct {
	X, Y           float64
	DeltaX, DeltaY float64
}

// WindowResize reports a new viewport size.
type WindowResize struct {
	Width, Height float64
}

func (PointerMove) isInputEvent()    {}
func (PointerDown) isInputEvent()    {}
func (PointerUp) isInputEvent()      {}
func (CharacterInput) isInputEvent() {}
func (Scroll) isInputEvent()         {}
func (WindowResize) isInputEvent()   {}

// Kind identifies a widget-level event.
type Kind uint8

const (
	KindPointerMove Kind = iota
	KindPointerDown
	KindPointerUp
	KindClick
	KindCharacter
	KindScroll
	KindPointerEnter
	KindPointerLeave
	KindFocus
	KindBlur
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindPointerMove:
		return "pointer-move"
	case KindPointerDown:
		return "pointer-down"
	case KindPointerUp:
		return "pointer-up"
	case KindClick:
		return "click"
	case KindCharacter:
		return "character"
	case KindScroll:
		return "scroll"
	case KindPointerEnter:
		return "pointer-enter"
	case KindPointerLeave:
		return "pointer-leave"
	case KindFocus:
		return "focus"
	case KindBlur:
		return "blur"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Bubbles reports whether events of this kind propagate to ancestors.
// Hover, focus and resize notifications are delivered to their target only.
func (k Kind) Bubbles() bool {
	switch k {
	case KindPointerEnter, KindPointerLeave, KindFocus, KindBlur, KindResize:
		return false
	default:
		return true
	}
}

// Event is what handlers receive.
type Event struct {
	Kind Kind
	// Target is the node the event was resolved to.
	Target tree.Index
	// Current is the node whose handler is running.
	Current tree.Index

	Position graphics.Offset
	Button   Button
	Char     rune
	Delta    graphics.Offset
	Size     graphics.Size

	stopped bool
}

// StopPropagation prevents ancestors from receiving this event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Handler receives events for one node.
type Handler func(e *Event)
