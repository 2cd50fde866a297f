// Package testing provides a widget testing harness for Sprout.
//
// # Quick Start
//
// Create a tester, pump a tree, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := sprouttest.NewWidgetTesterWithT(t)
//	    tester.PumpWidget(core.Of(Counter{}))
//
//	    tester.Tap(sprouttest.ByKey("increment"))
//
//	    if !tester.Find(sprouttest.ByText("1")).Exists() {
//	        t.Error("expected count 1")
//	    }
//	}
//
// Gestures pump a frame after delivering their input, so assertions see the
// re-rendered tree.
//
// # Snapshot Testing
//
// Capture and compare laid-out tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	SPROUT_UPDATE_SNAPSHOTS=1 go test ./...
package testing
