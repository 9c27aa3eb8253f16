// Package history provides undo and redo for a buffer.
//
// Edits are Commands: they execute against a *buffer.Buffer and know how to
// revert themselves. EditCommand replaces a range, TransactionCommand applies
// a piecetable.Transaction atomically, and CompoundCommand bundles several
// commands into one undo unit.
//
//	h := history.NewHistory(1000)
//	h.Execute(history.NewInsertCommand(0, "hello"), buf)
//	h.Undo(buf)
//	h.Redo(buf)
//
// Commands pushed between BeginGroup and EndGroup undo together:
//
//	h.BeginGroup("Rename")
//	// ... several edits ...
//	h.EndGroup()
//
// Undo and Redo return ErrGroupOpen while a group is open.
package history
