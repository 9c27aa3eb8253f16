package engine

import (
	"errors"

	"github.com/dshills/motto/internal/engine/buffer"
	"github.com/dshills/motto/internal/engine/history"
	"github.com/dshills/motto/internal/engine/tracking"
)

// Errors returned by engine operations. All but ErrReadOnly are the
// sentinels of the underlying packages, so errors.Is works across layers.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the valid buffer range.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrEditsOverlap indicates edits overlap or are not in reverse order.
	ErrEditsOverlap = buffer.ErrEditsOverlap

	ErrNothingToUndo = history.ErrNothingToUndo
	ErrNothingToRedo = history.ErrNothingToRedo
	ErrGroupOpen     = history.ErrGroupOpen

	ErrSnapshotNotFound = tracking.ErrSnapshotNotFound

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)
