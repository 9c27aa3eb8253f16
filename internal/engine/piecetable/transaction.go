package piecetable

import "fmt"

// OpKind distinguishes the operations a Transaction can hold.
type OpKind uint8

const (
	OpInsert OpKind = iota // insert Text at Offset
	OpDelete               // delete [Offset, End)
)

// String returns the name of the operation kind.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is a single edit inside a Transaction. Offsets refer to the
// document as left by the preceding operations.
type Operation struct {
	Kind   OpKind
	Offset int
	End    int    // exclusive end, deletes only
	Text   string // inserted text, inserts only
}

// InsertOp returns an operation inserting text at offset.
func InsertOp(offset int, text string) Operation {
	return Operation{Kind: OpInsert, Offset: offset, End: offset, Text: text}
}

// DeleteOp returns an operation deleting [start, end).
func DeleteOp(start, end int) Operation {
	return Operation{Kind: OpDelete, Offset: start, End: end}
}

// Delta returns the change in document length the operation causes.
func (op Operation) Delta() int {
	if op.Kind == OpInsert {
		return len(op.Text)
	}
	return op.Offset - op.End
}

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	if op.Kind == OpInsert {
		return fmt.Sprintf("Insert(%d, %q)", op.Offset, op.Text)
	}
	return fmt.Sprintf("Delete[%d:%d)", op.Offset, op.End)
}

// Transaction is an ordered batch of operations applied all or nothing.
type Transaction struct {
	Ops []Operation
}

// NewTransaction creates a transaction from ops.
func NewTransaction(ops ...Operation) *Transaction {
	return &Transaction{Ops: ops}
}

// Append adds an operation to the end of the transaction.
func (tx *Transaction) Append(op Operation) {
	tx.Ops = append(tx.Ops, op)
}

// Len returns the number of operations.
func (tx *Transaction) Len() int {
	return len(tx.Ops)
}

// Check validates every operation of tx against the running document
// length without changing anything.
func (d *Document) Check(tx *Transaction) error {
	if tx == nil {
		return nil
	}

	length := d.length
	for i, op := range tx.Ops {
		switch op.Kind {
		case OpInsert:
			if op.Offset < 0 || op.Offset > length {
				return fmt.Errorf("operation %d: %s in document of length %d: %w", i, op, length, ErrOutOfBounds)
			}
		case OpDelete:
			if op.Offset < 0 || op.End > length {
				return fmt.Errorf("operation %d: %s in document of length %d: %w", i, op, length, ErrOutOfBounds)
			}
			if op.Offset > op.End {
				return fmt.Errorf("operation %d: %s: %w", i, op, ErrInvalidRange)
			}
		default:
			return fmt.Errorf("operation %d: unknown kind %d: %w", i, op.Kind, ErrInvalidRange)
		}
		length += op.Delta()
	}
	return nil
}

// Apply runs every operation of tx in order. The whole sequence is checked
// first, so a failing transaction leaves the document untouched.
func (d *Document) Apply(tx *Transaction) error {
	if tx == nil || len(tx.Ops) == 0 {
		return nil
	}
	if err := d.Check(tx); err != nil {
		return err
	}

	for i, op := range tx.Ops {
		var err error
		if op.Kind == OpInsert {
			err = d.Insert(op.Offset, op.Text)
		} else {
			err = d.Delete(op.Offset, op.End)
		}
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// ApplyReversible applies tx like Apply and returns the transaction that
// undoes it. Deleted text is read from the document before each delete.
func (d *Document) ApplyReversible(tx *Transaction) (*Transaction, error) {
	if tx == nil || len(tx.Ops) == 0 {
		return NewTransaction(), nil
	}
	if err := d.Check(tx); err != nil {
		return nil, err
	}

	inverse := make([]Operation, len(tx.Ops))
	for i, op := range tx.Ops {
		var err error
		if op.Kind == OpInsert {
			inverse[len(tx.Ops)-1-i] = DeleteOp(op.Offset, op.Offset+len(op.Text))
			err = d.Insert(op.Offset, op.Text)
		} else {
			var removed string
			if removed, err = d.Slice(op.Offset, op.End); err == nil {
				inverse[len(tx.Ops)-1-i] = InsertOp(op.Offset, removed)
				err = d.Delete(op.Offset, op.End)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return NewTransaction(inverse...), nil
}
