package piecetable

import (
	"fmt"
	"sort"
)

// Source identifies the block a Segment points into.
type Source uint8

const (
	SourceOriginal   Source = iota // the frozen block built from the initial text
	SourceInsertions                // the append-only block holding inserted text
)

// String returns the name of the source.
func (s Source) String() string {
	switch s {
	case SourceOriginal:
		return "original"
	case SourceInsertions:
		return "insertions"
	default:
		return "unknown"
	}
}

// Segment is a view of [Offset, Offset+Length) in one block. It never owns
// text. lines holds the absolute block offsets of the line breaks inside the
// view; local line i maps to lines[i].
type Segment struct {
	Source Source
	Offset int
	Length int

	lines []int
}

// NewSegment creates a segment over [offset, offset+length) of source.
// breaks must be exactly the block's line breaks in that range, ascending,
// as returned by Block.LineBreaksInRange.
func NewSegment(source Source, offset, length int, breaks []int) Segment {
	return Segment{
		Source: source,
		Offset: offset,
		Length: length,
		lines:  breaks,
	}
}

// SplitAt divides the segment at a local byte offset in [0, Length].
// The cached line breaks are partitioned at the split point; the block is
// not consulted again. Splitting at 0 or Length yields one empty segment,
// which callers drop.
func (s Segment) SplitAt(local int) (left, right Segment) {
	if local < 0 || local > s.Length {
		panic(fmt.Sprintf("piecetable: split at %d outside segment of length %d", local, s.Length))
	}

	at := s.Offset + local
	k := sort.SearchInts(s.lines, at)

	left = Segment{
		Source: s.Source,
		Offset: s.Offset,
		Length: local,
		lines:  s.lines[:k:k],
	}
	right = Segment{
		Source: s.Source,
		Offset: at,
		Length: s.Length - local,
		lines:  s.lines[k:],
	}
	return left, right
}

// LineCount returns the number of line breaks the segment covers.
func (s Segment) LineCount() int {
	return len(s.lines)
}

// LineBreak returns the absolute block offset of local line break i.
func (s Segment) LineBreak(i int) int {
	return s.lines[i]
}

// End returns the exclusive end offset within the block.
func (s Segment) End() int {
	return s.Offset + s.Length
}

// IsEmpty reports whether the segment covers no bytes.
func (s Segment) IsEmpty() bool {
	return s.Length == 0
}

// String returns a debug representation of the segment.
func (s Segment) String() string {
	return fmt.Sprintf("%s[%d:%d) lines=%d", s.Source, s.Offset, s.End(), len(s.lines))
}
