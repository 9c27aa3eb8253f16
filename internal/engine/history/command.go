package history

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/motto/internal/engine/buffer"
	"github.com/dshills/motto/internal/engine/piecetable"
)

// Command represents a composable edit action that can be executed and undone.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(buf *buffer.Buffer) error

	// Undo reverses the command and returns an error if it fails.
	Undo(buf *buffer.Buffer) error

	// Description returns a human-readable description of the command.
	Description() string
}

// EditCommand replaces a range of the buffer with new text. Pure inserts
// and deletes are edits with an empty range or empty text.
type EditCommand struct {
	Range   Range
	NewText string

	op *Operation
}

// NewEditCommand creates a command replacing r with text.
func NewEditCommand(r Range, text string) *EditCommand {
	return &EditCommand{Range: r, NewText: text}
}

// NewInsertCommand creates a command inserting text at offset.
func NewInsertCommand(offset ByteOffset, text string) *EditCommand {
	return NewEditCommand(Range{Start: offset, End: offset}, text)
}

// NewDeleteCommand creates a command deleting [start, end).
func NewDeleteCommand(start, end ByteOffset) *EditCommand {
	return NewEditCommand(Range{Start: start, End: end}, "")
}

// Execute applies the edit and records the replaced text.
func (c *EditCommand) Execute(buf *buffer.Buffer) error {
	oldText, err := buf.TextRange(c.Range.Start, c.Range.End)
	if err != nil {
		return fmt.Errorf("edit at range %s: %w", c.Range, err)
	}

	newEnd, err := buf.Replace(c.Range.Start, c.Range.End, c.NewText)
	if err != nil {
		return fmt.Errorf("edit at range %s: %w", c.Range, err)
	}

	// The buffer may have normalized line endings; record what it stored.
	stored, err := buf.TextRange(c.Range.Start, newEnd)
	if err != nil {
		return err
	}
	c.op = NewOperation(c.Range, oldText, stored)
	return nil
}

// Undo restores the replaced text.
func (c *EditCommand) Undo(buf *buffer.Buffer) error {
	if c.op == nil {
		return nil
	}
	if err := c.op.Invert().Apply(buf); err != nil {
		return fmt.Errorf("undo edit: %w", err)
	}
	return nil
}

// Operation returns the recorded operation, or nil before Execute.
func (c *EditCommand) Operation() *Operation {
	return c.op
}

// Description returns a human-readable description.
func (c *EditCommand) Description() string {
	newLen := utf8.RuneCountInString(c.NewText)
	switch {
	case c.Range.IsEmpty() && c.NewText == "\n":
		return "Insert newline"
	case c.Range.IsEmpty() && newLen == 1:
		return fmt.Sprintf("Type '%s'", c.NewText)
	case c.Range.IsEmpty() && newLen <= 20:
		return fmt.Sprintf("Insert %q", c.NewText)
	case c.Range.IsEmpty():
		return fmt.Sprintf("Insert %d characters", newLen)
	case newLen == 0:
		return fmt.Sprintf("Delete %d bytes", c.Range.Len())
	}
	return fmt.Sprintf("Replace %d bytes with %d characters", c.Range.Len(), newLen)
}

// TransactionCommand applies a piecetable transaction as a single undo unit.
type TransactionCommand struct {
	Name string
	Tx   *piecetable.Transaction

	inverse *piecetable.Transaction
}

// NewTransactionCommand creates a command for tx.
func NewTransactionCommand(name string, tx *piecetable.Transaction) *TransactionCommand {
	return &TransactionCommand{Name: name, Tx: tx}
}

// Execute applies the transaction atomically and keeps its inverse.
func (c *TransactionCommand) Execute(buf *buffer.Buffer) error {
	inverse, err := buf.ApplyTransaction(c.Tx)
	if err != nil {
		return fmt.Errorf("transaction %q: %w", c.Name, err)
	}
	c.inverse = inverse
	return nil
}

// Undo applies the inverse transaction.
func (c *TransactionCommand) Undo(buf *buffer.Buffer) error {
	if c.inverse == nil {
		return nil
	}
	if _, err := buf.ApplyTransaction(c.inverse); err != nil {
		return fmt.Errorf("undo transaction %q: %w", c.Name, err)
	}
	return nil
}

// Inverse returns the transaction that reverts the last Execute, or nil
// before the command has run.
func (c *TransactionCommand) Inverse() *piecetable.Transaction {
	return c.inverse
}

// Description returns the transaction name or its size.
func (c *TransactionCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("Apply %d operations", c.Tx.Len())
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order. A failing step rolls back the
// steps before it; rollback failures are joined to the returned error.
func (c *CompoundCommand) Execute(buf *buffer.Buffer) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(buf); err != nil {
			errs := []error{fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)}
			for j := i - 1; j >= 0; j-- {
				if uerr := c.Commands[j].Undo(buf); uerr != nil {
					errs = append(errs, fmt.Errorf("rolling back compound command '%s' step %d: %w", c.Name, j, uerr))
				}
			}
			return errors.Join(errs...)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(buf *buffer.Buffer) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(buf); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
