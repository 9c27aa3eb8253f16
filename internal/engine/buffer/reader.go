package buffer

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/motto/internal/engine/piecetable"
)

// Read helpers shared by Buffer and Snapshot. Callers hold whatever lock
// protects doc.

func textRange(doc *piecetable.Document, start, end ByteOffset) (string, error) {
	if start < 0 || end < 0 {
		return "", fmt.Errorf("range [%d:%d): %w", start, end, ErrOffsetOutOfRange)
	}
	return doc.Slice(int(start), int(end))
}

// lineBounds returns the byte range of a line's content. A '\r' directly
// before the line's '\n' belongs to the break, not the content.
func lineBounds(doc *piecetable.Document, line uint32) (start, end int, err error) {
	start, err = doc.LineStartOffset(int(line))
	if err != nil {
		return 0, 0, err
	}
	end, err = doc.LineEndOffset(int(line))
	if err != nil {
		return 0, 0, err
	}
	if end > start && end < doc.Len() {
		if c, ok := doc.ByteAt(end - 1); ok && c == '\r' {
			end--
		}
	}
	return start, end, nil
}

func lineText(doc *piecetable.Document, line uint32) string {
	start, end, err := lineBounds(doc, line)
	if err != nil {
		return ""
	}
	s, _ := doc.Slice(start, end)
	return s
}

func lineLen(doc *piecetable.Document, line uint32) int {
	start, end, err := lineBounds(doc, line)
	if err != nil {
		return 0
	}
	return end - start
}

func lineStartOffset(doc *piecetable.Document, line uint32) (ByteOffset, error) {
	off, err := doc.LineStartOffset(int(line))
	return ByteOffset(off), err
}

func lineEndOffset(doc *piecetable.Document, line uint32) (ByteOffset, error) {
	_, end, err := lineBounds(doc, line)
	return ByteOffset(end), err
}

func runeAt(doc *piecetable.Document, offset ByteOffset) (rune, int) {
	n := ByteOffset(doc.Len())
	if offset < 0 || offset >= n {
		return utf8.RuneError, 0
	}
	s, err := doc.Slice(int(offset), int(min(offset+utf8.UTFMax, n)))
	if err != nil {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(s)
}

// offsetToPoint clamps offset into the document before converting. An
// offset on the '\n' of a CRLF pair maps to the end of the line's content.
func offsetToPoint(doc *piecetable.Document, offset ByteOffset) Point {
	offset = max(0, min(offset, ByteOffset(doc.Len())))

	line, err := doc.LineAt(int(offset))
	if err != nil {
		return Point{}
	}
	start, end, err := lineBounds(doc, uint32(line))
	if err != nil {
		return Point{}
	}
	return Point{Line: uint32(line), Column: uint32(min(int(offset), end) - start)}
}

// pointToOffset clamps the line to the last line and the column to the
// line's content, so a column never lands inside a CRLF pair.
func pointToOffset(doc *piecetable.Document, p Point) ByteOffset {
	line := min(int(p.Line), doc.LineCount()-1)

	start, end, err := lineBounds(doc, uint32(line))
	if err != nil {
		return ByteOffset(doc.Len())
	}
	return ByteOffset(min(start+int(p.Column), end))
}
