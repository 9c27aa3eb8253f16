package buffer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dshills/motto/internal/engine/piecetable"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = piecetable.ErrOutOfBounds
	ErrRangeInvalid     = piecetable.ErrInvalidRange
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// String returns the escaped representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	default:
		return "\n"
	}
}

// Buffer guards a piece table document with a read-write mutex.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	doc        *piecetable.Document
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		doc:        piecetable.New(),
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer whose original block holds s.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.doc = piecetable.From(b.normalizeLineEndings(s))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read everything first: a CRLF pair may straddle two reads.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading buffer content: %w", err)
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeLineEndings converts all line endings to the buffer's style.
func (b *Buffer) normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') && b.lineEnding == LineEndingLF {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if b.lineEnding != LineEndingLF {
		s = strings.ReplaceAll(s, "\n", b.lineEnding.Sequence())
	}
	return s
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.String()
}

// TextRange returns text in the byte range [start, end).
func (b *Buffer) TextRange(start, end ByteOffset) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return textRange(b.doc, start, end)
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(b.doc.Len())
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(b.doc.LineCount())
}

// LineText returns the text of a line without its line break.
// Returns "" for lines past the end.
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineText(b.doc, line)
}

// LineLen returns the length of a line in bytes, without its line break.
func (b *Buffer) LineLen(line uint32) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineLen(b.doc, line)
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineStartOffset(b.doc, line)
}

// LineEndOffset returns the byte offset of the end of a line (before the
// line break).
func (b *Buffer) LineEndOffset(line uint32) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineEndOffset(b.doc, line)
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.ByteAt(int(offset))
}

// RuneAt returns the rune at the given byte offset.
// Returns utf8.RuneError and size 0 if offset is out of range.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return runeAt(b.doc, offset)
}

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offsetToPoint(b.doc, offset)
}

// PointToOffset converts line/column to a byte offset.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return pointToOffset(b.doc, point)
}

// SegmentCount returns the number of piece table segments backing the text.
func (b *Buffer) SegmentCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.SegmentCount()
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text = b.normalizeLineEndings(text)
	if err := b.doc.Insert(int(offset), text); err != nil {
		return 0, err
	}
	b.revisionID = NewRevisionID()

	return offset + ByteOffset(len(text)), nil
}

// Delete removes text in the range [start, end).
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.doc.Delete(int(start), int(end)); err != nil {
		return err
	}
	b.revisionID = NewRevisionID()

	return nil
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text = b.normalizeLineEndings(text)
	if err := b.doc.Replace(int(start), int(end), text); err != nil {
		return 0, err
	}
	b.revisionID = NewRevisionID()

	return start + ByteOffset(len(text)), nil
}

// ApplyEdit applies a single edit to the buffer.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	oldText, err := textRange(b.doc, edit.Range.Start, edit.Range.End)
	if err != nil {
		return EditResult{}, err
	}

	text := b.normalizeLineEndings(edit.NewText)
	if err := b.doc.Replace(int(edit.Range.Start), int(edit.Range.End), text); err != nil {
		return EditResult{}, err
	}
	b.revisionID = NewRevisionID()

	newEnd := edit.Range.Start + ByteOffset(len(text))

	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		Delta:    int64(len(text)) - int64(edit.Range.Len()),
	}, nil
}

// ApplyEdits applies multiple edits atomically.
// Edits must be in reverse order (highest offset first) and must not overlap.
// Either every edit is applied or none is.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	tx, err := EditsTransaction(edits)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range tx.Ops {
		tx.Ops[i].Text = b.normalizeLineEndings(tx.Ops[i].Text)
	}
	if err := b.doc.Apply(tx); err != nil {
		return err
	}
	b.revisionID = NewRevisionID()
	return nil
}

// ApplyTransaction applies tx atomically and returns the transaction that
// reverts it. Insert texts are normalized to the buffer's line ending before
// the transaction is checked.
func (b *Buffer) ApplyTransaction(tx *piecetable.Transaction) (*piecetable.Transaction, error) {
	if tx == nil || tx.Len() == 0 {
		return piecetable.NewTransaction(), nil
	}

	normalized := piecetable.NewTransaction()
	for _, op := range tx.Ops {
		op.Text = b.normalizeLineEndings(op.Text)
		if op.Kind == piecetable.OpInsert {
			op.End = op.Offset
		}
		normalized.Append(op)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	inverse, err := b.doc.ApplyReversible(normalized)
	if err != nil {
		return nil, err
	}
	b.revisionID = NewRevisionID()
	return inverse, nil
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.Len() == 0
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetLineEnding sets the buffer's line ending style.
// This does not convert existing line endings.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 {
		b.tabWidth = width
	}
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		doc:        b.doc.Clone(),
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}
