package engine

import (
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/tree"
)

// maxTreeDepth limits recursion depth when serializing malformed trees.
const maxTreeDepth = 500

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

// SafeRect is a JSON-safe version of graphics.Rect.
type SafeRect struct {
	X      SafeFloat `json:"x"`
	Y      SafeFloat `json:"y"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

func safeRect(r graphics.Rect) *SafeRect {
	return &SafeRect{
		X:      SafeFloat(r.Left),
		Y:      SafeFloat(r.Top),
		Width:  SafeFloat(r.Width()),
		Height: SafeFloat(r.Height()),
	}
}

// TreeNode is one node of the serialized widget tree.
type TreeNode struct {
	Index     string     `json:"index"`
	Widget    string     `json:"widget"`
	Key       string     `json:"key,omitempty"`
	Depth     int        `json:"depth"`
	Rect      *SafeRect  `json:"rect,omitempty"`
	Text      string     `json:"text,omitempty"`
	Focusable bool       `json:"focusable,omitempty"`
	Focused   bool       `json:"focused,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

// Tree serializes the current widget tree. It returns nil before anything
// is mounted.
func (e *Engine) Tree() *TreeNode {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	root := e.runtime.Root()
	if !e.runtime.Contains(root) {
		return nil
	}
	focused, _ := e.dispatcher.Focused()
	node := e.serializeNode(root, focused, 0)
	return &node
}

func (e *Engine) serializeNode(idx tree.Index, focused tree.Index, depth int) TreeNode {
	rt := e.runtime
	node := TreeNode{
		Index:     idx.String(),
		Widget:    rt.WidgetName(idx),
		Key:       rt.Key(idx),
		Depth:     rt.Depth(idx),
		Focusable: rt.Focusable(idx),
		Focused:   idx == focused,
	}
	if st := rt.Style(idx); st != nil {
		node.Text = st.Text
	}
	if r, ok := e.layout.Rect(idx); ok {
		node.Rect = safeRect(r)
	}
	if depth >= maxTreeDepth {
		return node
	}
	for _, child := range rt.Children(idx) {
		node.Children = append(node.Children, e.serializeNode(child, focused, depth+1))
	}
	return node
}

// DumpTree writes the widget tree as indented JSON.
func (e *Engine) DumpTree(w io.Writer) error {
	data, err := json.MarshalIndent(e.Tree(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// describeStats renders Stats for the debug endpoint.
func describeStats(s Stats) map[string]any {
	return map[string]any{
		"created":        s.Created,
		"destroyed":      s.Destroyed,
		"rendered":       s.Rendered,
		"failed":         s.Failed,
		"live":           s.Live,
		"frames":         s.Frames,
		"averageFrameUs": s.AverageFrame.Microseconds(),
	}
}

