package testing

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/rendering"
	"github.com/go-drift/sprout/pkg/tree"
)

// UpdateSnapshotsEnv, when set to "1", makes MatchesFile rewrite golden
// files instead of comparing against them.
const UpdateSnapshotsEnv = "SPROUT_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the laid-out tree and the projected primitives.
type Snapshot struct {
	Tree       *SnapshotNode `json:"tree"`
	Primitives []PrimitiveOp `json:"primitives,omitempty"`
}

// SnapshotNode is a node in the serialized tree. IDs are stable across runs:
// the widget name plus a per-name counter in paint order.
type SnapshotNode struct {
	ID       string          `json:"id"`
	Widget   string          `json:"widget"`
	Key      string          `json:"key,omitempty"`
	Rect     [4]float64      `json:"rect"`
	Text     string          `json:"text,omitempty"`
	Children []*SnapshotNode `json:"children,omitempty"`
}

// PrimitiveOp is a serialized primitive.
type PrimitiveOp struct {
	Node   string     `json:"node"`
	Kind   string     `json:"kind"`
	Rect   [4]float64 `json:"rect"`
	Color  string     `json:"color,omitempty"`
	Border string     `json:"border,omitempty"`
	Text   string     `json:"text,omitempty"`
	Image  string     `json:"image,omitempty"`
}

// CaptureSnapshot captures the current tree and the last frame's primitives.
func (t *WidgetTester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	if t.engine == nil {
		return snap
	}
	ids := make(map[tree.Index]string)
	rects := make(map[tree.Index]graphics.Rect)
	if t.frame != nil {
		for _, prim := range t.frame.Primitives {
			rects[prim.Node] = prim.Rect
		}
	}
	t.engine.Inspect(func(rt *core.Runtime) {
		counter := &nameCounter{}
		for _, idx := range rt.PaintOrder() {
			ids[idx] = counter.next(rt.WidgetName(idx))
		}
		if root := rt.Root(); !root.IsZero() {
			snap.Tree = captureNode(rt, root, ids, rects)
		}
	})
	if t.frame != nil {
		for _, prim := range t.frame.Primitives {
			if prim.Kind == rendering.KindEmpty {
				continue
			}
			snap.Primitives = append(snap.Primitives, capturePrimitive(prim, ids[prim.Node]))
		}
	}
	return snap
}

// captureNode runs under the engine's frame lock, so rects come from the
// last frame rather than Engine.Rect.
func captureNode(rt *core.Runtime, idx tree.Index, ids map[tree.Index]string, rects map[tree.Index]graphics.Rect) *SnapshotNode {
	node := &SnapshotNode{
		ID:     ids[idx],
		Widget: rt.WidgetName(idx),
		Key:    rt.Key(idx),
		Rect:   rectArray(rects[idx]),
	}
	if st := rt.Style(idx); st != nil {
		node.Text = st.Text
	}
	for _, child := range rt.Children(idx) {
		node.Children = append(node.Children, captureNode(rt, child, ids, rects))
	}
	return node
}

func capturePrimitive(prim rendering.Primitive, id string) PrimitiveOp {
	op := PrimitiveOp{
		Node: id,
		Kind: prim.Kind.String(),
		Rect: rectArray(prim.Rect),
	}
	switch prim.Kind {
	case rendering.KindQuad:
		op.Color = prim.Color.Hex()
		if prim.BorderWidth > 0 {
			op.Border = fmt.Sprintf("%s/%g", prim.BorderColor.Hex(), round2(prim.BorderWidth))
		}
	case rendering.KindText:
		op.Text = prim.Text
		op.Color = prim.TextColor.Hex()
	case rendering.KindImage, rendering.KindNinePatch:
		op.Image = prim.Image
	}
	return op
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When SPROUT_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns the
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// nameCounter assigns IDs like "Element#0", "Element#1".
type nameCounter struct {
	counts map[string]int
}

func (c *nameCounter) next(name string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[name]
	c.counts[name] = n + 1
	return fmt.Sprintf("%s#%d", name, n)
}

func rectArray(r graphics.Rect) [4]float64 {
	return [4]float64{round2(r.Left), round2(r.Top), round2(r.Width()), round2(r.Height())}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e == a {
			continue
		}
		if i < len(expectedLines) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(actualLines) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}
