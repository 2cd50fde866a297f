package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/graphics"
	"github.com/go-drift/sprout/pkg/testing/internal/testbed"
)

func TestCaptureSnapshot_Golden(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.SetSize(graphics.Size{Width: 200, Height: 100})
	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 80, Height: 40, Color: graphics.ColorRed}))

	tester.CaptureSnapshot().MatchesFile(t, "testdata/layout_box.snapshot.json")
}

func TestCaptureSnapshot_BeforeMount(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	snap := tester.CaptureSnapshot()
	if snap == nil || snap.Tree != nil {
		t.Fatalf("expected an empty snapshot, got %+v", snap)
	}
}

func TestCaptureSnapshot_IDsAreStable(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(core.Box(nil,
		core.Of(testbed.Counter{}),
		core.Of(testbed.Counter{}),
	))

	snap := tester.CaptureSnapshot()
	if len(snap.Tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(snap.Tree.Children))
	}
	if got := snap.Tree.Children[1].ID; got != "testbed.Counter#1" {
		t.Errorf("second counter ID = %q", got)
	}
	// The second counter's button is the third anonymous element in paint
	// order after the root.
	if got := snap.Tree.Children[1].Children[0].ID; got != "Element#2" {
		t.Errorf("second button ID = %q", got)
	}
	var texts int
	for _, op := range snap.Primitives {
		if op.Kind == "text" {
			texts++
		}
	}
	if texts != 2 {
		t.Errorf("expected 2 text primitives, got %d", texts)
	}
}

func TestSnapshot_Diff_Equal(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 50, Height: 50}))

	a := tester.CaptureSnapshot()
	b := tester.CaptureSnapshot()
	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff, got:\n%s", diff)
	}
}

func TestSnapshot_Diff_Different(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(core.Of(testbed.Counter{}))
	before := tester.CaptureSnapshot()

	tester.Tap(ByKey("increment"))
	after := tester.CaptureSnapshot()

	diff := after.Diff(before)
	var removed, added bool
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "-") && strings.Contains(line, `"text": "0"`):
			removed = true
		case strings.HasPrefix(line, "+") && strings.Contains(line, `"text": "1"`):
			added = true
		}
	}
	if !removed || !added {
		t.Errorf("diff does not show the text change:\n%s", diff)
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 80, Height: 40}))

	snap := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "testdata", "box.snapshot.json")
	if err := snap.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("snapshot file should exist after UpdateFile")
	}

	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_MissingFile(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 50, Height: 50}))
	snap := tester.CaptureSnapshot()

	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, "/nonexistent/path/snap.json")

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewWidgetTesterWithT(t)

	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 50, Height: 50, Color: graphics.RGB(255, 0, 0)}))
	first := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "snap.json")
	first.UpdateFile(path)

	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 99, Height: 99, Color: graphics.RGB(0, 0, 255)}))
	second := tester.CaptureSnapshot()

	errored := false
	sub := &errorTB{name: t.Name(), onError: func() { errored = true }}
	second.MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(core.Of(testbed.LayoutBox{Width: 60, Height: 30}))
	snap := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "update.snapshot.json")

	t.Setenv(UpdateSnapshotsEnv, "1")
	snap.MatchesFile(t, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorTB intercepts Errorf calls for testing MatchesFile mismatches.
type errorTB struct {
	name    string
	onError func()
}

func (r *errorTB) Fatalf(format string, args ...any) {}
func (r *errorTB) Errorf(format string, args ...any) { r.onError() }
func (r *errorTB) Helper()                           {}
func (r *errorTB) Name() string                      { return r.name }
