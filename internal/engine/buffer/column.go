package buffer

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// VisualColumn returns the display column of offset within its line.
// Tabs advance to the next multiple of the tab width; wide runes count
// as two cells.
func (b *Buffer) VisualColumn(offset ByteOffset) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := offsetToPoint(b.doc, offset)
	text := lineText(b.doc, p.Line)
	return visualWidth(text[:min(int(p.Column), len(text))], b.tabWidth)
}

// OffsetAtVisualColumn returns the offset of the rune occupying display
// column col on line. Columns past the end of the line clamp to its end;
// a column inside a tab or wide rune resolves to that rune's start.
func (b *Buffer) OffsetAtVisualColumn(line uint32, col int) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start, err := lineStartOffset(b.doc, line)
	if err != nil {
		return 0, err
	}

	text := lineText(b.doc, line)
	cells := 0
	for i, r := range text {
		w := runeCells(r, cells, b.tabWidth)
		if cells+w > col {
			return start + ByteOffset(i), nil
		}
		cells += w
	}
	return start + ByteOffset(len(text)), nil
}

// visualWidth returns the display width of s starting at column zero.
func visualWidth(s string, tabWidth int) int {
	cells := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		cells += runeCells(r, cells, tabWidth)
		s = s[size:]
	}
	return cells
}

func runeCells(r rune, at, tabWidth int) int {
	if r == '\t' {
		return tabWidth - at%tabWidth
	}
	return runewidth.RuneWidth(r)
}
