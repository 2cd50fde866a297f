package term

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/style"
)

// CellMeasurer sizes text in terminal cells: one unit per column and one
// per line. Font size and weight have no effect in a terminal.
type CellMeasurer struct{}

// MeasureText returns the widest line's column count and the line count.
func (CellMeasurer) MeasureText(text string, _ *style.Style) graphics.Size {
	if text == "" {
		return graphics.Size{}
	}
	lines := strings.Split(text, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, runewidth.StringWidth(line))
	}
	return graphics.Size{Width: float64(width), Height: float64(len(lines))}
}
