// Package piecetable provides the piece-table text storage used by the engine.
//
// A Document is an ordered list of Segments. Each Segment is a view
// (source, offset, length) into one of two Blocks:
//
//   - the original block, built once from the initial text and never mutated
//   - the insertions block, which only ever grows at its end
//
// Edits never shift or copy bulk text. An insert appends the new text to the
// insertions block and splices one Segment into the list (splitting at most
// one existing Segment). A delete only drops or trims Segment references;
// neither block ever shrinks.
//
// Every Block keeps a sorted index of its line-break offsets, and every
// Segment caches the line breaks it covers, so line counts and line start
// lookups are answered by a forward scan over Segments without touching text.
//
// Basic usage:
//
//	doc := piecetable.From("Old title")
//	doc.Insert(3, " revised")   // "Old revised title"
//	doc.Delete(0, 5)            // "revised title"
//	doc.Insert(0, "R")          // "Revised title"
//
// Lines are 0-indexed. LineCount is the number of '\n' bytes plus one, and
// LineStartOffset(n) is the byte offset just after the n-th line break.
//
// Thread Safety:
//
// A Document performs no internal synchronization. Reads may run concurrently
// with each other but never with Insert, Delete or Apply. The buffer package
// provides the locking wrapper.
package piecetable
