package piecetable

import "sort"

// LineBreak is the byte that terminates a line.
const LineBreak = '\n'

// Block is a text buffer paired with a sorted index of its line-break offsets.
//
// The original block is frozen at construction. The insertions block only
// grows through Append, so offsets handed out for it stay valid forever and
// its line index only ever gains entries at the end.
type Block struct {
	content    []byte
	lineBreaks []int // ascending, one entry per LineBreak byte in content
	frozen     bool
}

// NewBlock builds a frozen block from content, indexing its line breaks once.
func NewBlock(content string) *Block {
	b := &Block{
		content: []byte(content),
		frozen:  true,
	}
	b.lineBreaks = indexLineBreaks(b.content, 0, nil)
	return b
}

// NewAppendBlock creates an empty append-only block.
func NewAppendBlock() *Block {
	return &Block{}
}

// indexLineBreaks appends base+i to dst for every line break at index i in p.
func indexLineBreaks(p []byte, base int, dst []int) []int {
	for i, c := range p {
		if c == LineBreak {
			dst = append(dst, base+i)
		}
	}
	return dst
}

// Append adds text to the end of the block and returns the byte range it
// now occupies. It is the only way a block changes.
func (b *Block) Append(text string) (start, length int, err error) {
	if b.frozen {
		return 0, 0, ErrFrozenBlock
	}

	start = len(b.content)
	b.content = append(b.content, text...)
	b.lineBreaks = indexLineBreaks(b.content[start:], start, b.lineBreaks)

	return start, len(text), nil
}

// LineBreaksInRange returns, in ascending order, the line-break offsets in
// [offset, offset+length). The result aliases the block index and must not
// be modified.
func (b *Block) LineBreaksInRange(offset, length int) []int {
	lo := sort.SearchInts(b.lineBreaks, offset)
	hi := sort.SearchInts(b.lineBreaks, offset+length)
	return b.lineBreaks[lo:hi:hi]
}

// Len returns the byte length of the block.
func (b *Block) Len() int {
	return len(b.content)
}

// LineBreakCount returns the number of line breaks in the block.
func (b *Block) LineBreakCount() int {
	return len(b.lineBreaks)
}

// Frozen reports whether the block rejects appends.
func (b *Block) Frozen() bool {
	return b.frozen
}

// Slice returns the text in [offset, offset+length).
func (b *Block) Slice(offset, length int) string {
	return string(b.content[offset : offset+length])
}

// bytes returns the raw bytes in [offset, offset+length) without copying.
func (b *Block) bytes(offset, length int) []byte {
	return b.content[offset : offset+length : offset+length]
}

// fork returns a block sharing b's current bytes. Capacities are clipped so
// an append to either block reallocates instead of writing into the other.
func (b *Block) fork() *Block {
	return &Block{
		content:    b.content[:len(b.content):len(b.content)],
		lineBreaks: b.lineBreaks[:len(b.lineBreaks):len(b.lineBreaks)],
		frozen:     b.frozen,
	}
}
