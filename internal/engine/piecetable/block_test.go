package piecetable

import (
	"errors"
	"slices"
	"testing"
)

func TestNewBlockLineBreaks(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []int
	}{
		{"empty", "", nil},
		{"no newlines", "single line", nil},
		{"single newline", "first\nsecond", []int{5}},
		{"multiple newlines", "first\nsecond\n\nfourth", []int{5, 12, 13}},
		{"dangling newline", "line\n", []int{4}},
		{"carriage return is not a break", "a\r\nb\rc", []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlock(tt.content)
			got := b.LineBreaksInRange(0, b.Len())
			if !slices.Equal(got, tt.expected) {
				t.Errorf("expected breaks %v, got %v", tt.expected, got)
			}
			if b.LineBreakCount() != len(tt.expected) {
				t.Errorf("expected count %d, got %d", len(tt.expected), b.LineBreakCount())
			}
		})
	}
}

func TestNewBlockByteIndexing(t *testing.T) {
	// Multi-byte runes before the break must count in bytes.
	elf := string([]byte{240, 159, 167, 157, 226, 128, 141, 226, 153, 130, 239, 184, 143})
	b := NewBlock(elf + "\n")

	got := b.LineBreaksInRange(0, b.Len())
	if len(got) != 1 || got[0] != len(elf) {
		t.Errorf("expected break at %d, got %v", len(elf), got)
	}
}

func TestBlockAppendFrozen(t *testing.T) {
	b := NewBlock("original")
	if !b.Frozen() {
		t.Fatal("original block should be frozen")
	}

	_, _, err := b.Append("more")
	if !errors.Is(err, ErrFrozenBlock) {
		t.Errorf("expected ErrFrozenBlock, got %v", err)
	}
	if b.Slice(0, b.Len()) != "original" {
		t.Errorf("frozen block changed: %q", b.Slice(0, b.Len()))
	}
}

func TestBlockAppend(t *testing.T) {
	b := NewAppendBlock()
	if b.Frozen() || b.Len() != 0 {
		t.Fatal("append block should start empty and writable")
	}

	start, n, err := b.Append("ab\n")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if start != 0 || n != 3 {
		t.Errorf("expected (0, 3), got (%d, %d)", start, n)
	}

	start, n, err = b.Append("\nc")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if start != 3 || n != 2 {
		t.Errorf("expected (3, 2), got (%d, %d)", start, n)
	}

	if got := b.Slice(0, b.Len()); got != "ab\n\nc" {
		t.Errorf("expected %q, got %q", "ab\n\nc", got)
	}
	if !slices.Equal(b.LineBreaksInRange(0, b.Len()), []int{2, 3}) {
		t.Errorf("unexpected breaks %v", b.LineBreaksInRange(0, b.Len()))
	}
}

func TestBlockLineBreaksInRange(t *testing.T) {
	b := NewBlock("a\nb\nc\nd\ne\nf")

	tests := []struct {
		offset, length int
		expected       []int
	}{
		{0, 0, nil},
		{0, 1, nil},
		{0, 2, []int{1}},
		{1, 1, []int{1}},
		{2, 5, []int{3, 5}},
		{2, 6, []int{3, 5, 7}},
		{0, 11, []int{1, 3, 5, 7, 9}},
		{10, 1, nil},
	}

	for _, tt := range tests {
		got := b.LineBreaksInRange(tt.offset, tt.length)
		if !slices.Equal(got, tt.expected) {
			t.Errorf("LineBreaksInRange(%d, %d): expected %v, got %v", tt.offset, tt.length, tt.expected, got)
		}
	}
}

func TestBlockForkIsolation(t *testing.T) {
	b := NewAppendBlock()
	if _, _, err := b.Append("a\n"); err != nil {
		t.Fatal(err)
	}

	f := b.fork()
	if _, _, err := b.Append("b\n"); err != nil {
		t.Fatal(err)
	}
	if f.Len() != 2 || f.LineBreakCount() != 1 {
		t.Errorf("fork saw parent append: len=%d breaks=%d", f.Len(), f.LineBreakCount())
	}

	if _, _, err := f.Append("c"); err != nil {
		t.Fatal(err)
	}
	if got := f.Slice(0, f.Len()); got != "a\nc" {
		t.Errorf("fork: expected %q, got %q", "a\nc", got)
	}
	if got := b.Slice(0, b.Len()); got != "a\nb\n" {
		t.Errorf("parent: expected %q, got %q", "a\nb\n", got)
	}
}
