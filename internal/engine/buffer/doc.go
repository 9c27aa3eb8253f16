// Package buffer provides a thread-safe text buffer built on top of the
// piece table. It is the single-writer/multi-reader wrapper that the
// piecetable package leaves to its callers.
//
// The buffer package provides:
//
//   - Read/write exclusion via sync.RWMutex
//   - Coordinate conversion between byte offsets and line/column positions
//   - Line ending normalization of inserted text
//   - Atomic batches of edits
//   - Read-only snapshots for concurrent access
//   - Revision tracking for change management
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//
//	buf.Insert(7, "Beautiful ")  // "Hello, Beautiful World!"
//	buf.Delete(0, 7)             // "Beautiful World!"
//
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text()
//	    // Process text...
//	}()
//
// Positions are ByteOffset values or 0-indexed Points whose Column counts
// bytes from the start of the line.
package buffer
