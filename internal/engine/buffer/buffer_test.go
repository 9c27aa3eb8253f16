package buffer

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/motto/internal/engine/piecetable"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}
	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
}

func TestNewBufferFromStringMultiline(t *testing.T) {
	b := NewBufferFromString("line1\nline2\nline3")

	if b.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", b.LineCount())
	}
	for i, want := range []string{"line1", "line2", "line3"} {
		if got := b.LineText(uint32(i)); got != want {
			t.Errorf("LineText(%d) = %q, want %q", i, got, want)
		}
	}
	if got := b.LineText(3); got != "" {
		t.Errorf("LineText past end = %q", got)
	}
}

func TestNewBufferFromReader(t *testing.T) {
	b, err := NewBufferFromReader(strings.NewReader("from\r\nreader"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if b.Text() != "from\nreader" {
		t.Errorf("expected normalized text, got %q", b.Text())
	}
}

func TestBufferInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   ByteOffset
		text     string
		expected string
	}{
		{"middle", "Hello World", 5, ",", "Hello, World"},
		{"start", "World", 0, "Hello ", "Hello World"},
		{"end", "Hello", 5, " World", "Hello World"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString(tt.initial)

			end, err := b.Insert(tt.offset, tt.text)
			if err != nil {
				t.Fatalf("insert failed: %v", err)
			}
			if end != tt.offset+ByteOffset(len(tt.text)) {
				t.Errorf("unexpected end position %d", end)
			}
			if b.Text() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, b.Text())
			}
		})
	}
}

func TestBufferInsertOutOfRange(t *testing.T) {
	b := NewBufferFromString("Hello")
	rev := b.RevisionID()

	for _, off := range []ByteOffset{100, -1} {
		if _, err := b.Insert(off, "X"); !errors.Is(err, ErrOffsetOutOfRange) {
			t.Errorf("Insert(%d): expected ErrOffsetOutOfRange, got %v", off, err)
		}
	}
	if b.RevisionID() != rev {
		t.Error("failed insert should not bump the revision")
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewBufferFromString("Hello, World!")

	if err := b.Delete(5, 7); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if b.Text() != "HelloWorld!" {
		t.Errorf("expected 'HelloWorld!', got %q", b.Text())
	}
}

func TestBufferDeleteErrors(t *testing.T) {
	b := NewBufferFromString("Hello")

	if err := b.Delete(3, 2); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
	if err := b.Delete(0, 100); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if b.Text() != "Hello" {
		t.Errorf("failed delete changed text: %q", b.Text())
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewBufferFromString("Hello World")

	end, err := b.Replace(6, 11, "Go")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if end != 8 {
		t.Errorf("expected end 8, got %d", end)
	}
	if b.Text() != "Hello Go" {
		t.Errorf("expected 'Hello Go', got %q", b.Text())
	}
}

func TestBufferApplyEdit(t *testing.T) {
	b := NewBufferFromString("Hello World")

	result, err := b.ApplyEdit(NewEdit(NewRange(0, 5), "Goodbye"))
	if err != nil {
		t.Fatalf("apply edit failed: %v", err)
	}
	if b.Text() != "Goodbye World" {
		t.Errorf("unexpected text %q", b.Text())
	}
	if result.OldText != "Hello" {
		t.Errorf("expected old text 'Hello', got %q", result.OldText)
	}
	if result.NewRange != NewRange(0, 7) {
		t.Errorf("unexpected new range %v", result.NewRange)
	}
	if result.Delta != 2 {
		t.Errorf("expected delta 2, got %d", result.Delta)
	}
}

func TestBufferApplyEdits(t *testing.T) {
	b := NewBufferFromString("aaa bbb ccc")

	edits := []Edit{
		NewEdit(NewRange(8, 11), "CCC"),
		NewDelete(4, 8),
		NewInsert(0, ">"),
	}
	if err := b.ApplyEdits(edits); err != nil {
		t.Fatalf("apply edits failed: %v", err)
	}
	if b.Text() != ">aaa CCC" {
		t.Errorf("expected '>aaa CCC', got %q", b.Text())
	}
}

func TestBufferApplyEditsAtomic(t *testing.T) {
	b := NewBufferFromString("Hello World")
	rev := b.RevisionID()

	overlap := []Edit{NewEdit(NewRange(0, 5), "A"), NewEdit(NewRange(3, 8), "B")}
	if err := b.ApplyEdits(overlap); !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("expected ErrEditsOverlap, got %v", err)
	}

	// The first edit is valid, the second is not: nothing may change.
	partial := []Edit{NewEdit(NewRange(6, 11), "Go"), NewEdit(NewRange(-2, 0), "X")}
	if err := b.ApplyEdits(partial); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}

	if b.Text() != "Hello World" || b.RevisionID() != rev {
		t.Errorf("failed batch changed buffer: %q", b.Text())
	}
}

func TestBufferLineStartEnd(t *testing.T) {
	b := NewBufferFromString("abc\ndefgh\n")

	tests := []struct {
		line       uint32
		start, end ByteOffset
	}{
		{0, 0, 3},
		{1, 4, 9},
		{2, 10, 10},
	}

	for _, tt := range tests {
		start, err := b.LineStartOffset(tt.line)
		if err != nil || start != tt.start {
			t.Errorf("LineStartOffset(%d) = %d (%v), want %d", tt.line, start, err, tt.start)
		}
		end, err := b.LineEndOffset(tt.line)
		if err != nil || end != tt.end {
			t.Errorf("LineEndOffset(%d) = %d (%v), want %d", tt.line, end, err, tt.end)
		}
	}

	if _, err := b.LineStartOffset(3); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if b.LineLen(1) != 5 {
		t.Errorf("expected line length 5, got %d", b.LineLen(1))
	}
}

func TestBufferOffsetToPoint(t *testing.T) {
	b := NewBufferFromString("abc\ndef\nghi")

	tests := []struct {
		offset   ByteOffset
		expected Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{0, 3}},
		{4, Point{1, 0}},
		{9, Point{2, 1}},
		{11, Point{2, 3}},
		{50, Point{2, 3}}, // clamped
		{-5, Point{0, 0}}, // clamped
	}

	for _, tt := range tests {
		if got := b.OffsetToPoint(tt.offset); got != tt.expected {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.expected)
		}
	}
}

func TestBufferPointToOffset(t *testing.T) {
	b := NewBufferFromString("abc\ndef\nghi")

	tests := []struct {
		point    Point
		expected ByteOffset
	}{
		{Point{0, 0}, 0},
		{Point{1, 2}, 6},
		{Point{2, 0}, 8},
		{Point{1, 10}, 7}, // column clamped to line end
		{Point{9, 0}, 8},  // line clamped to last line
	}

	for _, tt := range tests {
		if got := b.PointToOffset(tt.point); got != tt.expected {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.point, got, tt.expected)
		}
	}
}

func TestBufferPointsAfterEdits(t *testing.T) {
	b := NewBufferFromString("one\nthree")
	if _, err := b.Insert(4, "two\n"); err != nil {
		t.Fatal(err)
	}

	p := b.OffsetToPoint(8)
	if p != (Point{Line: 2, Column: 0}) {
		t.Errorf("expected (2:0), got %v", p)
	}
	if off := b.PointToOffset(Point{Line: 1, Column: 1}); off != 5 {
		t.Errorf("expected 5, got %d", off)
	}
	if b.SegmentCount() != 3 {
		t.Errorf("expected 3 segments, got %d", b.SegmentCount())
	}
}

func TestBufferRuneAndByteAt(t *testing.T) {
	b := NewBufferFromString("a日b")

	r, size := b.RuneAt(1)
	if r != '日' || size != 3 {
		t.Errorf("RuneAt(1) = %q, %d", r, size)
	}
	if _, size := b.RuneAt(10); size != 0 {
		t.Error("RuneAt past end should have size 0")
	}
	if c, ok := b.ByteAt(4); !ok || c != 'b' {
		t.Errorf("ByteAt(4) = %q, %v", c, ok)
	}
}

func TestBufferTextRange(t *testing.T) {
	b := NewBufferFromString("Hello World")

	got, err := b.TextRange(6, 11)
	if err != nil || got != "World" {
		t.Errorf("TextRange(6, 11) = %q (%v)", got, err)
	}
	if _, err := b.TextRange(-1, 2); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestBufferSnapshot(t *testing.T) {
	b := NewBufferFromString("Hello\nWorld")
	snap := b.Snapshot()

	if _, err := b.Insert(5, ", there"); err != nil {
		t.Fatal(err)
	}

	if snap.Text() != "Hello\nWorld" {
		t.Errorf("snapshot changed: %q", snap.Text())
	}
	if snap.Len() != 11 || snap.LineCount() != 2 {
		t.Errorf("unexpected snapshot metrics len=%d lines=%d", snap.Len(), snap.LineCount())
	}
	if snap.LineText(1) != "World" {
		t.Errorf("unexpected snapshot line %q", snap.LineText(1))
	}
	if snap.RevisionID() == b.RevisionID() {
		t.Error("snapshot revision should differ after an edit")
	}
	if p := snap.OffsetToPoint(7); p != (Point{Line: 1, Column: 1}) {
		t.Errorf("unexpected snapshot point %v", p)
	}
	if got, _ := snap.TextRange(0, 5); got != "Hello" {
		t.Errorf("unexpected snapshot range %q", got)
	}
}

func TestBufferLineEndingNormalization(t *testing.T) {
	b := NewBufferFromString("a\r\nb\rc")
	if b.Text() != "a\nb\nc" {
		t.Errorf("expected LF normalized text, got %q", b.Text())
	}

	if _, err := b.Insert(b.Len(), "\r\nd"); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "a\nb\nc\nd" {
		t.Errorf("inserted text not normalized: %q", b.Text())
	}
}

func TestBufferWithCRLFLineEnding(t *testing.T) {
	b := NewBufferFromString("a\nb", WithCRLF())

	if b.Text() != "a\r\nb" {
		t.Errorf("expected CRLF text, got %q", b.Text())
	}
	if b.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", b.LineCount())
	}
	if b.LineEnding() != LineEndingCRLF {
		t.Errorf("unexpected line ending %v", b.LineEnding())
	}
}

func TestBufferCRLFLineHelpers(t *testing.T) {
	b := NewBufferFromString("ab\r\ncd\r\n", WithCRLF())

	if got := b.LineCount(); got != 3 {
		t.Fatalf("LineCount() = %d, want 3", got)
	}
	if got := b.LineText(0); got != "ab" {
		t.Errorf("LineText(0) = %q, want %q", got, "ab")
	}
	if got := b.LineLen(0); got != 2 {
		t.Errorf("LineLen(0) = %d, want 2", got)
	}
	if got, err := b.LineEndOffset(0); err != nil || got != 2 {
		t.Errorf("LineEndOffset(0) = %d, %v, want 2", got, err)
	}
	if got := b.LineText(1); got != "cd" {
		t.Errorf("LineText(1) = %q, want %q", got, "cd")
	}
	if got, err := b.LineStartOffset(1); err != nil || got != 4 {
		t.Errorf("LineStartOffset(1) = %d, %v, want 4", got, err)
	}
	if got := b.LineText(2); got != "" {
		t.Errorf("LineText(2) = %q, want empty", got)
	}

	points := []struct {
		point Point
		want  ByteOffset
	}{
		{Point{Line: 0, Column: 2}, 2},
		{Point{Line: 0, Column: 3}, 2},
		{Point{Line: 0, Column: 9}, 2},
		{Point{Line: 1, Column: 1}, 5},
		{Point{Line: 1, Column: 3}, 6},
	}
	for _, tt := range points {
		if got := b.PointToOffset(tt.point); got != tt.want {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.point, got, tt.want)
		}
	}

	if got := b.OffsetToPoint(3); got != (Point{Line: 0, Column: 2}) {
		t.Errorf("OffsetToPoint(3) = %v, want (0:2)", got)
	}
	if got := b.OffsetToPoint(4); got != (Point{Line: 1, Column: 0}) {
		t.Errorf("OffsetToPoint(4) = %v, want (1:0)", got)
	}
}

func TestBufferLFLineHelpers(t *testing.T) {
	b := NewBufferFromString("ab\ncd")

	if got := b.LineText(0); got != "ab" {
		t.Errorf("LineText(0) = %q, want %q", got, "ab")
	}
	if got := b.LineLen(0); got != 2 {
		t.Errorf("LineLen(0) = %d, want 2", got)
	}
	if got := b.PointToOffset(Point{Line: 0, Column: 5}); got != 2 {
		t.Errorf("PointToOffset((0:5)) = %d, want 2", got)
	}
	if got := b.OffsetToPoint(2); got != (Point{Line: 0, Column: 2}) {
		t.Errorf("OffsetToPoint(2) = %v, want (0:2)", got)
	}
}

func TestBufferLoneCRIsLineBreak(t *testing.T) {
	b := NewBufferFromString("ab\rcd")

	if b.Text() != "ab\ncd" {
		t.Errorf("Text() = %q, want %q", b.Text(), "ab\ncd")
	}
	if got := b.LineCount(); got != 2 {
		t.Errorf("LineCount() = %d, want 2", got)
	}

	crlf := NewBufferFromString("ab\rcd", WithCRLF())
	if crlf.Text() != "ab\r\ncd" {
		t.Errorf("CRLF Text() = %q, want %q", crlf.Text(), "ab\r\ncd")
	}
	if got := crlf.LineText(1); got != "cd" {
		t.Errorf("CRLF LineText(1) = %q, want %q", got, "cd")
	}
}

func TestBufferRevisionID(t *testing.T) {
	b := NewBufferFromString("Hello")
	rev1 := b.RevisionID()

	if _, err := b.Insert(5, " World"); err != nil {
		t.Fatal(err)
	}
	rev2 := b.RevisionID()
	if rev1 == rev2 {
		t.Error("revision should change after insert")
	}

	if err := b.Delete(0, 5); err != nil {
		t.Fatal(err)
	}
	if b.RevisionID() == rev2 {
		t.Error("revision should change after delete")
	}
}

func TestBufferConcurrentReadWrite(t *testing.T) {
	b := NewBufferFromString("Hello")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = b.Insert(0, "X")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = b.Text()
				_ = b.LineCount()
				_ = b.Snapshot().Text()
			}
		}()
	}
	wg.Wait()

	if n := strings.Count(b.Text(), "X"); n != 100 {
		t.Errorf("expected 100 X's, got %d", n)
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text     string
		expected LineEnding
	}{
		{"no newlines", LineEndingLF},
		{"unix\nstyle\n", LineEndingLF},
		{"windows\r\nstyle\r\n", LineEndingCRLF},
		{"old mac\rstyle\r", LineEndingLF},
		{"mostly\r\nwindows\r\nwith\rone cr", LineEndingCRLF},
		{"mixed\r\nmore\nlines", LineEndingCRLF}, // CRLF wins ties
	}

	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.expected {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestRangeOperations(t *testing.T) {
	r := NewRange(5, 10)

	if r.Len() != 5 || r.IsEmpty() || !r.IsValid() {
		t.Errorf("unexpected range metrics for %v", r)
	}
	if !r.Contains(5) || r.Contains(10) {
		t.Error("range should be half-open")
	}
	if !r.Overlaps(NewRange(9, 12)) || r.Overlaps(NewRange(10, 12)) {
		t.Error("unexpected overlap result")
	}
	if got := r.Intersect(NewRange(8, 20)); got != NewRange(8, 10) {
		t.Errorf("unexpected intersection %v", got)
	}
	if got := r.Intersect(NewRange(12, 20)); !got.IsEmpty() {
		t.Errorf("disjoint intersection should be empty, got %v", got)
	}
	if got := r.Union(NewRange(1, 6)); got != NewRange(1, 10) {
		t.Errorf("unexpected union %v", got)
	}
	if got := r.Shift(-5); got != NewRange(0, 5) {
		t.Errorf("unexpected shift %v", got)
	}
	if r.String() != "[5:10)" {
		t.Errorf("unexpected string %q", r.String())
	}
}

func TestPointOperations(t *testing.T) {
	p1 := Point{Line: 1, Column: 5}
	p2 := Point{Line: 1, Column: 10}
	p3 := Point{Line: 2, Column: 0}

	if !p1.Before(p2) || !p2.Before(p3) || p2.Before(p1) {
		t.Error("unexpected ordering")
	}
	if !p3.After(p1) {
		t.Error("p3 should be after p1")
	}
	if !(Point{}).IsZero() {
		t.Error("zero point should be zero")
	}

	pr := PointRange{Start: p1, End: p2}
	if !pr.IsSingleLine() || pr.IsEmpty() {
		t.Error("unexpected point range state")
	}
}

func TestEditOperations(t *testing.T) {
	ins := NewInsert(3, "abc")
	del := NewDelete(2, 5)
	rep := NewEdit(NewRange(0, 2), "xyz")
	noop := NewInsert(4, "")

	if !ins.IsInsert() || !del.IsDelete() || !noop.IsNoOp() {
		t.Error("unexpected edit classification")
	}
	if ins.Delta() != 3 || del.Delta() != -3 || rep.Delta() != 1 {
		t.Error("unexpected deltas")
	}
	if len(rep.Operations()) != 2 || len(del.Operations()) != 1 || len(noop.Operations()) != 1 {
		t.Error("unexpected lowering to operations")
	}
	if rep.String() != `Replace[0:2) with "xyz"` {
		t.Errorf("unexpected string %q", rep.String())
	}
}

func TestBufferApplyTransaction(t *testing.T) {
	buf := NewBufferFromString("alpha\nbeta\ngamma")
	rev := buf.RevisionID()

	tx := piecetable.NewTransaction(
		piecetable.DeleteOp(6, 11),
		piecetable.InsertOp(0, "zero\n"),
	)
	undo, err := buf.ApplyTransaction(tx)
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}
	if got := buf.Text(); got != "zero\nalpha\ngamma" {
		t.Fatalf("unexpected text %q", got)
	}
	if buf.RevisionID() == rev {
		t.Error("revision should change")
	}

	if _, err := buf.ApplyTransaction(undo); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := buf.Text(); got != "alpha\nbeta\ngamma" {
		t.Errorf("undo left %q", got)
	}
}

func TestBufferApplyTransactionInvalid(t *testing.T) {
	buf := NewBufferFromString("abc")
	rev := buf.RevisionID()

	_, err := buf.ApplyTransaction(piecetable.NewTransaction(
		piecetable.InsertOp(3, "d"),
		piecetable.DeleteOp(0, 10),
	))
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if buf.Text() != "abc" || buf.RevisionID() != rev {
		t.Error("failed transaction should leave the buffer untouched")
	}
}
