package engine

import (
	"log/slog"

	"github.com/dshills/motto/internal/engine/buffer"
)

// Default configuration values.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = 1000
	DefaultMaxChanges     = 10000
	DefaultMaxRevisions   = 100
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width for the engine.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithLineEnding sets the line ending inserted text is normalized to.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = ending
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.maxUndoEntries = limit
		}
	}
}

// WithMaxChanges sets the maximum number of tracked changes.
func WithMaxChanges(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.maxChanges = limit
		}
	}
}

// WithMaxRevisions sets how many pre-edit states the tracker keeps.
// Zero disables revision capture.
func WithMaxRevisions(limit int) Option {
	return func(e *Engine) {
		if limit >= 0 {
			e.maxRevisions = limit
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithLogger sets the logger for edit and history events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
