package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/motto/internal/engine/buffer"
	"github.com/dshills/motto/internal/engine/piecetable"
)

// ChangeType categorizes the type of a change.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted (OldText is empty).
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates text was deleted (NewText is empty).
	ChangeDelete

	// ChangeReplace indicates text was replaced.
	ChangeReplace
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is one recorded edit of a buffer.
type Change struct {
	Type ChangeType

	// Range is the affected range before the change. Empty for inserts.
	Range buffer.Range

	// NewRange is the affected range after the change. Empty for deletes.
	NewRange buffer.Range

	OldText string
	NewText string

	// Revision is the buffer revision produced by this change.
	Revision RevisionID

	Timestamp time.Time
}

// NewChange builds a change replacing [start, end) holding oldText with
// newText. The type follows from which texts are empty.
func NewChange(start, end buffer.ByteOffset, oldText, newText string, rev RevisionID) Change {
	ct := ChangeReplace
	switch {
	case start == end:
		ct = ChangeInsert
	case newText == "":
		ct = ChangeDelete
	}
	return Change{
		Type:      ct,
		Range:     buffer.Range{Start: start, End: end},
		NewRange:  buffer.Range{Start: start, End: start + buffer.ByteOffset(len(newText))},
		OldText:   oldText,
		NewText:   newText,
		Revision:  rev,
		Timestamp: time.Now(),
	}
}

// NewInsertChange creates a change representing an insertion.
func NewInsertChange(offset buffer.ByteOffset, text string, rev RevisionID) Change {
	return NewChange(offset, offset, "", text, rev)
}

// NewDeleteChange creates a change representing a deletion.
func NewDeleteChange(start, end buffer.ByteOffset, oldText string, rev RevisionID) Change {
	return NewChange(start, end, oldText, "", rev)
}

// NewReplaceChange creates a change representing a replacement.
func NewReplaceChange(start, end buffer.ByteOffset, oldText, newText string, rev RevisionID) Change {
	return NewChange(start, end, oldText, newText, rev)
}

// ChangesFromTransaction converts an applied transaction into changes,
// one per operation. inverse is the transaction returned when tx was
// applied; it supplies the removed text of every delete.
func ChangesFromTransaction(tx, inverse *piecetable.Transaction, rev RevisionID) []Change {
	if tx == nil {
		return nil
	}

	changes := make([]Change, 0, tx.Len())
	for i, op := range tx.Ops {
		start := buffer.ByteOffset(op.Offset)
		if op.Kind == piecetable.OpInsert {
			if op.Text != "" {
				changes = append(changes, NewInsertChange(start, op.Text, rev))
			}
			continue
		}

		var removed string
		if inverse != nil && inverse.Len() == tx.Len() {
			removed = inverse.Ops[tx.Len()-1-i].Text
		}
		if op.End > op.Offset {
			changes = append(changes, NewDeleteChange(start, buffer.ByteOffset(op.End), removed, rev))
		}
	}
	return changes
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %q at %d", truncate(c.NewText, 20), c.Range.Start)
	case ChangeDelete:
		return fmt.Sprintf("Delete %q at %v", truncate(c.OldText, 20), c.Range)
	case ChangeReplace:
		return fmt.Sprintf("Replace %q with %q at %v", truncate(c.OldText, 10), truncate(c.NewText, 10), c.Range)
	default:
		return "Unknown change"
	}
}

// Delta returns the change in buffer length.
func (c Change) Delta() int64 {
	return int64(len(c.NewText)) - int64(len(c.OldText))
}

// IsInsert returns true if this is a pure insertion.
func (c Change) IsInsert() bool {
	return c.Type == ChangeInsert
}

// IsDelete returns true if this is a pure deletion.
func (c Change) IsDelete() bool {
	return c.Type == ChangeDelete
}

// IsReplace returns true if this is a replacement.
func (c Change) IsReplace() bool {
	return c.Type == ChangeReplace
}

// Invert returns the change that undoes c. The revision is kept.
func (c Change) Invert() Change {
	inv := c
	inv.Range, inv.NewRange = c.NewRange, c.Range
	inv.OldText, inv.NewText = c.NewText, c.OldText
	switch c.Type {
	case ChangeInsert:
		inv.Type = ChangeDelete
	case ChangeDelete:
		inv.Type = ChangeInsert
	}
	return inv
}

// ChangeSet is an ordered run of changes between two revisions.
type ChangeSet struct {
	Changes []Change

	StartRevision RevisionID
	EndRevision   RevisionID
}

// NewChangeSet creates an empty change set starting at the given revision.
func NewChangeSet(startRevision RevisionID) *ChangeSet {
	return &ChangeSet{
		StartRevision: startRevision,
		EndRevision:   startRevision,
	}
}

// Add appends a change and advances EndRevision.
func (cs *ChangeSet) Add(c Change) {
	cs.Changes = append(cs.Changes, c)
	cs.EndRevision = c.Revision
}

// Len returns the number of changes.
func (cs *ChangeSet) Len() int {
	return len(cs.Changes)
}

// IsEmpty returns true if there are no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Changes) == 0
}

// TotalDelta returns the total byte delta of all changes.
func (cs *ChangeSet) TotalDelta() int64 {
	var delta int64
	for _, c := range cs.Changes {
		delta += c.Delta()
	}
	return delta
}

// Summary returns a short description such as
// "2 inserts (+7 bytes), 1 deletes (-3 bytes)".
func (cs *ChangeSet) Summary() string {
	if cs.IsEmpty() {
		return "no changes"
	}

	var inserts, deletes, replaces int
	var insertedBytes, deletedBytes int
	for _, c := range cs.Changes {
		switch c.Type {
		case ChangeInsert:
			inserts++
		case ChangeDelete:
			deletes++
		case ChangeReplace:
			replaces++
		}
		insertedBytes += len(c.NewText)
		deletedBytes += len(c.OldText)
	}

	var parts []string
	if inserts > 0 {
		parts = append(parts, fmt.Sprintf("%d inserts (+%d bytes)", inserts, insertedBytes))
	}
	if deletes > 0 {
		parts = append(parts, fmt.Sprintf("%d deletes (-%d bytes)", deletes, deletedBytes))
	}
	if replaces > 0 {
		parts = append(parts, fmt.Sprintf("%d replaces", replaces))
	}
	return strings.Join(parts, ", ")
}
