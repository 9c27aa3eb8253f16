package history

import "github.com/dshills/motto/internal/engine/buffer"

// GroupScope closes a group opened by History.GroupScope, typically via defer:
//
//	defer h.GroupScope("Reindent").End()
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group and returns its scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group. Only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel drops the group without creating a compound command.
func (g *GroupScope) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn inside a group. If fn fails the group is cancelled
// and the error returned.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}

// ExecuteGrouped executes cmds as a single undo unit. If one fails, the
// commands already executed are undone and nothing is pushed.
func (h *History) ExecuteGrouped(name string, buf *buffer.Buffer, cmds ...Command) error {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return h.Execute(cmds[0], buf)
	}

	compound := NewCompoundCommand(name, cmds...)
	if err := compound.Execute(buf); err != nil {
		return err
	}
	h.Push(compound)
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes all operations since the checkpoint.
func (h *History) UndoToCheckpoint(cp Checkpoint, buf *buffer.Buffer) error {
	for h.UndoCount() > cp.undoDepth {
		if _, err := h.Undo(buf); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes operations until the checkpoint depth is reached
// or the redo stack runs out.
func (h *History) RedoToCheckpoint(cp Checkpoint, buf *buffer.Buffer) error {
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if _, err := h.Redo(buf); err != nil {
			return err
		}
	}
	return nil
}
