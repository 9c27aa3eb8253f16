package buffer

import "github.com/dshills/motto/internal/engine/piecetable"

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It holds a cloned piece table that shares block bytes with the buffer, so
// taking one costs O(segments) and later buffer edits never show through.
type Snapshot struct {
	doc        *piecetable.Document
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.doc.String()
}

// TextRange returns text in the byte range [start, end).
func (s *Snapshot) TextRange(start, end ByteOffset) (string, error) {
	return textRange(s.doc, start, end)
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return ByteOffset(s.doc.Len())
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return uint32(s.doc.LineCount())
}

// LineText returns the text of a line without its line break.
func (s *Snapshot) LineText(line uint32) string {
	return lineText(s.doc, line)
}

// LineLen returns the length of a line in bytes, without its line break.
func (s *Snapshot) LineLen(line uint32) int {
	return lineLen(s.doc, line)
}

// LineStartOffset returns the byte offset of the start of a line.
func (s *Snapshot) LineStartOffset(line uint32) (ByteOffset, error) {
	return lineStartOffset(s.doc, line)
}

// LineEndOffset returns the byte offset of the end of a line.
func (s *Snapshot) LineEndOffset(line uint32) (ByteOffset, error) {
	return lineEndOffset(s.doc, line)
}

// ByteAt returns the byte at the given offset.
func (s *Snapshot) ByteAt(offset ByteOffset) (byte, bool) {
	return s.doc.ByteAt(int(offset))
}

// RuneAt returns the rune at the given byte offset.
func (s *Snapshot) RuneAt(offset ByteOffset) (rune, int) {
	return runeAt(s.doc, offset)
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(offset ByteOffset) Point {
	return offsetToPoint(s.doc, offset)
}

// PointToOffset converts line/column to a byte offset.
func (s *Snapshot) PointToOffset(point Point) ByteOffset {
	return pointToOffset(s.doc, point)
}

// RevisionID returns the revision ID of this snapshot.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return s.doc.Len() == 0
}

// LineEnding returns the snapshot's line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}
