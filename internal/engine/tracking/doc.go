// Package tracking records how a buffer changes over time.
//
// A Tracker keeps a bounded log of Changes keyed by buffer revision, the
// buffer state before each recorded revision, and named Snapshots:
//
//	tracker := tracking.NewTracker(tracking.WithMaxChanges(500))
//	id := tracker.CreateSnapshot("before_format", buf.Snapshot())
//	// ... edits recorded with tracker.RecordChange ...
//	result, _ := tracker.ComputeDiffSinceSnapshot(id, buf.Snapshot(), tracking.DefaultDiffOptions())
//	fmt.Print(tracking.UnifiedDiff(result, "a", "b"))
//
// Snapshots are piece-table clones, so holding many of them costs memory
// proportional to their segment counts, not their text.
//
// Line diffs are computed with diffmatchpatch over one rune per distinct
// line, then grouped into hunks with context.
package tracking
