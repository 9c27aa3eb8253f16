package piecetable

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Document is the logical text: the concatenation, in order, of the slices
// its segments reference. It is backed by one frozen original block and one
// append-only insertions block.
type Document struct {
	original   *Block
	insertions *Block
	segments   []Segment
	length     int
}

// From creates a document whose original block holds text.
// An empty text yields a document with no segments.
func From(text string) *Document {
	original := NewBlock(text)
	d := &Document{
		original:   original,
		insertions: NewAppendBlock(),
		length:     original.Len(),
	}
	if n := original.Len(); n > 0 {
		d.segments = []Segment{
			NewSegment(SourceOriginal, 0, n, original.LineBreaksInRange(0, n)),
		}
	}
	return d
}

// New creates an empty document.
func New() *Document {
	return From("")
}

func (d *Document) block(src Source) *Block {
	if src == SourceInsertions {
		return d.insertions
	}
	return d.original
}

// Len returns the document length in bytes.
func (d *Document) Len() int {
	return d.length
}

// String materializes the whole document.
func (d *Document) String() string {
	var sb strings.Builder
	sb.Grow(d.length)
	for _, s := range d.segments {
		sb.Write(d.block(s.Source).bytes(s.Offset, s.Length))
	}
	return sb.String()
}

// locate returns the index of the segment containing offset and the local
// offset inside it. An offset on a segment boundary resolves to local 0 of
// the following segment; the document end resolves to (len(segments), 0).
func (d *Document) locate(offset int) (index, local int) {
	pos := 0
	for i, s := range d.segments {
		if offset < pos+s.Length {
			return i, offset - pos
		}
		pos += s.Length
	}
	return len(d.segments), 0
}

func (d *Document) checkInsert(offset int) error {
	if offset < 0 || offset > d.length {
		return fmt.Errorf("insert at %d in document of length %d: %w", offset, d.length, ErrOutOfBounds)
	}
	return nil
}

func (d *Document) checkRange(start, end int) error {
	if start < 0 || end > d.length {
		return fmt.Errorf("range [%d:%d) in document of length %d: %w", start, end, d.length, ErrOutOfBounds)
	}
	if start > end {
		return fmt.Errorf("range [%d:%d): %w", start, end, ErrInvalidRange)
	}
	return nil
}

// Insert inserts text at a byte offset in [0, Len()].
// Inserting an empty string is a no-op.
func (d *Document) Insert(offset int, text string) error {
	if err := d.checkInsert(offset); err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	start, n, err := d.insertions.Append(text)
	if err != nil {
		return err
	}
	added := NewSegment(SourceInsertions, start, n, d.insertions.LineBreaksInRange(start, n))

	i, local := d.locate(offset)
	if local == 0 {
		d.segments = slices.Insert(d.segments, i, added)
	} else {
		left, right := d.segments[i].SplitAt(local)
		d.segments = slices.Replace(d.segments, i, i+1, left, added, right)
	}

	d.length += n
	return nil
}

// Delete removes the bytes in [start, end). Only segment references change;
// the blocks keep the deleted bytes.
func (d *Document) Delete(start, end int) error {
	if err := d.checkRange(start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}

	first, last := -1, -1
	var kept []Segment

	pos := 0
	for i, s := range d.segments {
		segStart, segEnd := pos, pos+s.Length
		pos = segEnd

		if segEnd <= start {
			continue
		}
		if segStart >= end {
			break
		}

		if first < 0 {
			first = i
		}
		last = i

		if start > segStart {
			left, _ := s.SplitAt(start - segStart)
			kept = append(kept, left)
		}
		if end < segEnd {
			_, right := s.SplitAt(end - segStart)
			kept = append(kept, right)
		}
	}

	d.segments = slices.Replace(d.segments, first, last+1, kept...)
	d.length -= end - start
	return nil
}

// Replace deletes [start, end) and inserts text at start as one step.
// Nothing changes if the range is invalid.
func (d *Document) Replace(start, end int, text string) error {
	if err := d.checkRange(start, end); err != nil {
		return err
	}
	if err := d.Delete(start, end); err != nil {
		return err
	}
	return d.Insert(start, text)
}

// LineCount returns the number of line breaks plus one.
func (d *Document) LineCount() int {
	n := 1
	for _, s := range d.segments {
		n += s.LineCount()
	}
	return n
}

// LineStartOffset returns the byte offset where a 0-indexed line starts.
// Line 0 starts at 0; line n starts right after the n-th line break, which
// is Len() when the document ends with a line break.
func (d *Document) LineStartOffset(line int) (int, error) {
	if line == 0 {
		return 0, nil
	}
	if line > 0 {
		seen, pos := 0, 0
		for _, s := range d.segments {
			n := s.LineCount()
			if seen+n >= line {
				brk := s.LineBreak(line - seen - 1)
				return pos + brk - s.Offset + 1, nil
			}
			seen += n
			pos += s.Length
		}
	}
	return 0, fmt.Errorf("line %d: %w", line, ErrOutOfBounds)
}

// LineEndOffset returns the offset of the line break ending a 0-indexed
// line, or Len() for the last line.
func (d *Document) LineEndOffset(line int) (int, error) {
	if line >= 0 {
		seen, pos := 0, 0
		for _, s := range d.segments {
			n := s.LineCount()
			if seen+n > line {
				return pos + s.LineBreak(line-seen) - s.Offset, nil
			}
			seen += n
			pos += s.Length
		}
		if line == seen {
			return d.length, nil
		}
	}
	return 0, fmt.Errorf("line %d: %w", line, ErrOutOfBounds)
}

// LineAt returns the 0-indexed line containing a byte offset in [0, Len()].
func (d *Document) LineAt(offset int) (int, error) {
	if offset < 0 || offset > d.length {
		return 0, fmt.Errorf("offset %d in document of length %d: %w", offset, d.length, ErrOutOfBounds)
	}

	line, pos := 0, 0
	for _, s := range d.segments {
		if offset >= pos+s.Length {
			line += s.LineCount()
			pos += s.Length
			continue
		}
		line += sort.SearchInts(s.lines, s.Offset+offset-pos)
		break
	}
	return line, nil
}

// Slice returns the text in [start, end).
func (d *Document) Slice(start, end int) (string, error) {
	if err := d.checkRange(start, end); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(end - start)

	pos := 0
	for _, s := range d.segments {
		segStart, segEnd := pos, pos+s.Length
		pos = segEnd
		if segEnd <= start {
			continue
		}
		if segStart >= end {
			break
		}
		from := max(start, segStart) - segStart
		to := min(end, segEnd) - segStart
		sb.Write(d.block(s.Source).bytes(s.Offset+from, to-from))
	}
	return sb.String(), nil
}

// ByteAt returns the byte at offset.
func (d *Document) ByteAt(offset int) (byte, bool) {
	if offset < 0 || offset >= d.length {
		return 0, false
	}
	i, local := d.locate(offset)
	s := d.segments[i]
	return d.block(s.Source).content[s.Offset+local], true
}

// SegmentCount returns the number of segments.
func (d *Document) SegmentCount() int {
	return len(d.segments)
}

// Segments returns a copy of the segment list.
func (d *Document) Segments() []Segment {
	return slices.Clone(d.segments)
}

// Clone returns an independent document sharing the current block bytes.
// It costs O(segments); edits to either document never affect the other.
func (d *Document) Clone() *Document {
	return &Document{
		original:   d.original,
		insertions: d.insertions.fork(),
		segments:   slices.Clone(d.segments),
		length:     d.length,
	}
}
