package engine

import (
	"strings"
	"testing"

	"github.com/dshills/motto/internal/engine/piecetable"
	"github.com/dshills/motto/internal/engine/tracking"
)

func setupLargeEngine(b *testing.B, lines int, opts ...Option) *Engine {
	b.Helper()
	content := strings.Repeat(strings.Repeat("x", 80)+"\n", lines)
	return New(append([]Option{WithContent(content)}, opts...)...)
}

// Read Operation Benchmarks

func BenchmarkEngineText(b *testing.B) {
	e := setupLargeEngine(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Text()
	}
}

func BenchmarkEngineLineStartOffset(b *testing.B) {
	e := setupLargeEngine(b, 10000)
	for i := 0; i < 1000; i++ {
		_, _ = e.Insert(ByteOffset(i*81), "y")
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.LineStartOffset(uint32(i % 10000))
	}
}

func BenchmarkEngineOffsetToPoint(b *testing.B) {
	e := setupLargeEngine(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.OffsetToPoint(ByteOffset(i % 810000))
	}
}

// Write Operation Benchmarks

func BenchmarkEngineInsert(b *testing.B) {
	e := setupLargeEngine(b, 1000, WithMaxRevisions(0), WithMaxUndoEntries(100))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.Insert(ByteOffset(i%80000), "a")
	}
}

func BenchmarkEngineInsertWithRevisions(b *testing.B) {
	e := setupLargeEngine(b, 1000, WithMaxUndoEntries(100))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.Insert(ByteOffset(i%80000), "a")
	}
}

func BenchmarkEngineApply(b *testing.B) {
	e := setupLargeEngine(b, 1000, WithMaxRevisions(0), WithMaxUndoEntries(100))
	tx := piecetable.NewTransaction(
		piecetable.InsertOp(100, "hello"),
		piecetable.DeleteOp(100, 105),
	)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Apply(tx)
	}
}

func BenchmarkEngineUndoRedo(b *testing.B) {
	e := setupLargeEngine(b, 1000, WithMaxRevisions(0))
	_, _ = e.Insert(0, "hello")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Undo()
		_ = e.Redo()
	}
}

// Diff Benchmarks

func BenchmarkEngineDiffSinceSnapshot(b *testing.B) {
	e := setupLargeEngine(b, 5000)
	id := e.CreateSnapshot("base")
	for i := 0; i < 20; i++ {
		_, _ = e.Insert(ByteOffset(i*4000), "changed\n")
	}
	opts := tracking.DefaultDiffOptions()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = e.ComputeDiffSinceSnapshot(id, opts)
	}
}
