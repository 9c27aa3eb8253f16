package buffer

import (
	"fmt"

	"github.com/dshills/motto/internal/engine/piecetable"
)

// Edit replaces a range with new text. An empty range is an insert, empty
// text a delete.
type Edit struct {
	Range   Range
	NewText string
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.Range.IsEmpty():
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	case e.NewText == "":
		return fmt.Sprintf("Delete%s", e.Range)
	default:
		return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
	}
}

// IsInsert returns true if this is a pure insertion.
func (e Edit) IsInsert() bool {
	return e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion.
func (e Edit) IsDelete() bool {
	return !e.Range.IsEmpty() && e.NewText == ""
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// Operations lowers the edit to piece table operations: a delete of the
// range followed by an insert at its start. No-op halves are omitted.
func (e Edit) Operations() []piecetable.Operation {
	var ops []piecetable.Operation
	if !e.Range.IsEmpty() {
		ops = append(ops, piecetable.DeleteOp(int(e.Range.Start), int(e.Range.End)))
	}
	if e.NewText != "" || len(ops) == 0 {
		ops = append(ops, piecetable.InsertOp(int(e.Range.Start), e.NewText))
	}
	return ops
}

// EditsTransaction flattens edits into one transaction. Edits must be in
// reverse order (highest offset first) and must not overlap.
func EditsTransaction(edits []Edit) (*piecetable.Transaction, error) {
	tx := piecetable.NewTransaction()
	for i, edit := range edits {
		if i > 0 && edit.Range.End > edits[i-1].Range.Start {
			return nil, fmt.Errorf("edit %d %s: %w", i, edit.Range, ErrEditsOverlap)
		}
		for _, op := range edit.Operations() {
			tx.Append(op)
		}
	}
	return tx, nil
}

// EditResult contains information about an applied edit.
type EditResult struct {
	OldRange Range  // The original range that was modified
	NewRange Range  // The resulting range after the edit
	OldText  string // The text that was replaced (if any)
	Delta    int64  // Change in buffer length
}
