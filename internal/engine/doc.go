// Package engine is the facade over the piece-table text engine.
//
// An Engine combines a buffer (a piecetable.Document behind a lock), an
// undo history and a change tracker:
//
//	e := engine.New(engine.WithContent("Hello, World!"))
//	e.Replace(7, 12, "Go")  // "Hello, Go!"
//	e.Undo()                // "Hello, World!"
//
// Batches of edits run atomically, either as reverse-ordered Edits or as a
// piecetable.Transaction whose offsets follow the running document:
//
//	tx := piecetable.NewTransaction(
//		piecetable.DeleteOp(0, 5),
//		piecetable.InsertOp(0, "Howdy"),
//	)
//	if err := e.Apply(tx); err != nil {
//		// nothing was applied
//	}
//
// Named snapshots are cheap piece-table clones and can be diffed against the
// current text:
//
//	id := e.CreateSnapshot("before")
//	// ... edits ...
//	result, _ := e.ComputeDiffSinceSnapshot(id, tracking.DefaultDiffOptions())
//
// Lines are 0-based and separated by '\n' only.
//
// All Engine methods are safe for concurrent use. Reads share a read lock;
// writes, undo and redo are serialized.
package engine
