package engine

import (
	"io"
	"log/slog"
	"sync"

	"github.com/dshills/motto/internal/engine/buffer"
	"github.com/dshills/motto/internal/engine/history"
	"github.com/dshills/motto/internal/engine/piecetable"
	"github.com/dshills/motto/internal/engine/tracking"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the buffer.
	ByteOffset = buffer.ByteOffset

	// Point represents a line/column position.
	Point = buffer.Point

	// Range represents a byte range in the buffer.
	Range = buffer.Range

	// Edit represents an edit operation.
	Edit = buffer.Edit

	// LineEnding specifies the line ending style.
	LineEnding = buffer.LineEnding

	// RevisionID uniquely identifies a buffer revision.
	RevisionID = buffer.RevisionID

	// SnapshotID uniquely identifies a named snapshot.
	SnapshotID = tracking.SnapshotID

	// Change represents a tracked change.
	Change = tracking.Change

	// DiffResult contains the result of a diff operation.
	DiffResult = tracking.DiffResult

	// DiffOptions configures diff computation.
	DiffOptions = tracking.DiffOptions

	// Command is an undoable edit command.
	Command = history.Command

	// Transaction is an ordered batch of piece table operations.
	Transaction = piecetable.Transaction
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF

	ChangeInsert  = tracking.ChangeInsert
	ChangeDelete  = tracking.ChangeDelete
	ChangeReplace = tracking.ChangeReplace
)

// Engine combines a piece-table buffer, undo history and change tracking
// behind one lock. All methods are safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	buf     *buffer.Buffer
	history *history.History
	tracker *tracking.Tracker
	logger  *slog.Logger

	tabWidth       int
	lineEnding     buffer.LineEnding
	maxUndoEntries int
	maxChanges     int
	maxRevisions   int
	readOnly       bool

	initContent string
}

func configure(opts []Option) *Engine {
	e := &Engine{
		tabWidth:       DefaultTabWidth,
		lineEnding:     buffer.LineEndingLF,
		maxUndoEntries: DefaultMaxUndoEntries,
		maxChanges:     DefaultMaxChanges,
		maxRevisions:   DefaultMaxRevisions,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) bufferOptions() []buffer.Option {
	return []buffer.Option{
		buffer.WithTabWidth(e.tabWidth),
		buffer.WithLineEnding(e.lineEnding),
	}
}

func (e *Engine) init() {
	e.history = history.NewHistory(e.maxUndoEntries)
	trackerOpts := []tracking.TrackerOption{tracking.WithMaxChanges(e.maxChanges)}
	if e.maxRevisions > 0 {
		trackerOpts = append(trackerOpts, tracking.WithMaxRevisions(e.maxRevisions))
	}
	e.tracker = tracking.NewTracker(trackerOpts...)
	e.logger.Debug("engine created",
		"bytes", e.buf.Len(),
		"lines", e.buf.LineCount(),
		"read_only", e.readOnly,
	)
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := configure(opts)
	e.buf = buffer.NewBufferFromString(e.initContent, e.bufferOptions()...)
	e.init()
	return e
}

// NewFromReader creates an Engine holding everything read from r.
// WithContent is ignored.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	e := configure(opts)
	buf, err := buffer.NewBufferFromReader(r, e.bufferOptions()...)
	if err != nil {
		return nil, err
	}
	e.buf = buf
	e.init()
	return e, nil
}

// Read Operations

// Text returns the full buffer content.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Text()
}

// TextRange returns the text in [start, end).
func (e *Engine) TextRange(start, end ByteOffset) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.TextRange(start, end)
}

// Len returns the buffer length in bytes.
func (e *Engine) Len() ByteOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Len()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineCount()
}

// LineText returns the text of a line without its line ending.
func (e *Engine) LineText(line uint32) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineText(line)
}

// LineLen returns the byte length of a line without its line ending.
func (e *Engine) LineLen(line uint32) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineLen(line)
}

// LineStartOffset returns the offset of the first byte of a 0-based line.
func (e *Engine) LineStartOffset(line uint32) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineStartOffset(line)
}

// LineEndOffset returns the offset of a line's line break, or Len for the
// last line.
func (e *Engine) LineEndOffset(line uint32) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineEndOffset(line)
}

// ByteAt returns the byte at offset.
func (e *Engine) ByteAt(offset ByteOffset) (byte, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.ByteAt(offset)
}

// RuneAt returns the rune starting at offset and its size in bytes.
func (e *Engine) RuneAt(offset ByteOffset) (rune, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.RuneAt(offset)
}

// IsEmpty returns true if the buffer holds no text.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.IsEmpty()
}

// OffsetToPoint converts a byte offset to a line/column point.
func (e *Engine) OffsetToPoint(offset ByteOffset) Point {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.OffsetToPoint(offset)
}

// PointToOffset converts a line/column point to a byte offset.
func (e *Engine) PointToOffset(point Point) ByteOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.PointToOffset(point)
}

// VisualColumn returns the display column of offset, expanding tabs to
// the engine's tab width.
func (e *Engine) VisualColumn(offset ByteOffset) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.VisualColumn(offset)
}

// OffsetAtVisualColumn maps a display column on line back to a byte offset.
func (e *Engine) OffsetAtVisualColumn(line uint32, col int) (ByteOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.OffsetAtVisualColumn(line, col)
}

// SegmentCount returns the number of piece table segments.
func (e *Engine) SegmentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.SegmentCount()
}

// Write Operations

// Insert inserts text at offset and returns the end of the inserted text.
func (e *Engine) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	return e.Replace(offset, offset, text)
}

// Delete removes the text in [start, end).
func (e *Engine) Delete(start, end ByteOffset) error {
	_, err := e.Replace(start, end, "")
	return err
}

// Replace replaces [start, end) with text and returns the end of the new
// text. The edit is one undo step and one tracked change.
func (e *Engine) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return 0, ErrReadOnly
	}

	before := e.beforeState()
	cmd := history.NewEditCommand(Range{Start: start, End: end}, text)
	if err := e.history.Execute(cmd, e.buf); err != nil {
		return 0, err
	}

	op := cmd.Operation()
	rev := e.buf.RevisionID()
	e.tracker.RecordChange(tracking.NewChange(start, end, op.OldText, op.NewText, rev), before)
	e.logger.Debug("edit applied",
		"range", op.Range.String(),
		"delta", op.BytesDelta(),
		"revision", uint64(rev),
	)
	return op.NewRange().End, nil
}

// ApplyEdit applies a single edit.
func (e *Engine) ApplyEdit(edit Edit) error {
	_, err := e.Replace(edit.Range.Start, edit.Range.End, edit.NewText)
	return err
}

// ApplyEdits applies edits atomically as one undo step. Edits must be in
// reverse order (highest offset first) and must not overlap.
func (e *Engine) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	tx, err := buffer.EditsTransaction(edits)
	if err != nil {
		return err
	}
	return e.apply("multi-edit", tx)
}

// Apply runs a piece table transaction atomically as one undo step.
// Offsets of each operation refer to the document as left by the
// operations before it.
func (e *Engine) Apply(tx *Transaction) error {
	if tx == nil || tx.Len() == 0 {
		return nil
	}
	return e.apply("transaction", tx)
}

func (e *Engine) apply(name string, tx *Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	before := e.beforeState()
	cmd := history.NewTransactionCommand(name, tx)
	if err := e.history.Execute(cmd, e.buf); err != nil {
		e.logger.Debug("transaction rejected", "name", name, "ops", tx.Len(), "error", err)
		return err
	}

	rev := e.buf.RevisionID()
	e.tracker.RecordChanges(tracking.ChangesFromTransaction(tx, cmd.Inverse(), rev), before)
	e.logger.Debug("transaction applied", "name", name, "ops", tx.Len(), "revision", uint64(rev))
	return nil
}

// beforeState returns the snapshot the tracker stores for the next
// revision, or nil when revision capture is disabled.
func (e *Engine) beforeState() *buffer.Snapshot {
	if e.maxRevisions == 0 {
		return nil
	}
	return e.buf.Snapshot()
}

// Undo/Redo Operations

// Undo reverts the most recent undo step.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	info, err := e.history.Undo(e.buf)
	if err != nil {
		return err
	}
	e.logger.Debug("undo", "description", info.Description, "revision", uint64(e.buf.RevisionID()))
	return nil
}

// Redo re-applies the most recently undone step.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	info, err := e.history.Redo(e.buf)
	if err != nil {
		return err
	}
	e.logger.Debug("redo", "description", info.Description, "revision", uint64(e.buf.RevisionID()))
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undo steps available.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redo steps available.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// BeginUndoGroup starts grouping edits into one undo step.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup closes the current undo group.
func (e *Engine) EndUndoGroup() {
	e.history.EndGroup()
}

// CancelUndoGroup drops the current undo group. Its edits stay applied but
// can no longer be undone.
func (e *Engine) CancelUndoGroup() {
	e.history.CancelGroup()
}

// ClearHistory drops all undo and redo steps.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// Execute runs a custom command and pushes it onto the undo stack.
// Commands run this way are not tracked as changes.
func (e *Engine) Execute(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.history.Execute(cmd, e.buf)
}

// Snapshot Operations

// Snapshot returns a read-only snapshot of the current buffer state.
func (e *Engine) Snapshot() *buffer.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Snapshot()
}

// CreateSnapshot stores the current state under name.
func (e *Engine) CreateSnapshot(name string) SnapshotID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id := e.tracker.CreateSnapshot(name, e.buf.Snapshot())
	e.logger.Debug("snapshot created", "name", name, "id", uint64(id))
	return id
}

// GetSnapshot retrieves a snapshot by ID.
func (e *Engine) GetSnapshot(id SnapshotID) (*tracking.Snapshot, error) {
	return e.tracker.GetSnapshot(id)
}

// GetSnapshotByName retrieves a snapshot by name.
func (e *Engine) GetSnapshotByName(name string) (*tracking.Snapshot, error) {
	return e.tracker.GetSnapshotByName(name)
}

// SnapshotText returns the full text of a snapshot.
func (e *Engine) SnapshotText(id SnapshotID) (string, error) {
	return e.tracker.SnapshotText(id)
}

// DeleteSnapshot removes a snapshot.
func (e *Engine) DeleteSnapshot(id SnapshotID) {
	e.tracker.DeleteSnapshot(id)
}

// DeleteSnapshotByName removes a snapshot by name.
func (e *Engine) DeleteSnapshotByName(name string) {
	e.tracker.DeleteSnapshotByName(name)
}

// ListSnapshots returns all snapshots, oldest first.
func (e *Engine) ListSnapshots() []*tracking.Snapshot {
	return e.tracker.ListSnapshots()
}

// SnapshotCount returns the number of snapshots.
func (e *Engine) SnapshotCount() int {
	return e.tracker.SnapshotCount()
}

// Change Tracking

// RevisionID returns the current buffer revision.
func (e *Engine) RevisionID() RevisionID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.RevisionID()
}

// ChangesSince returns the tracked changes made after rev.
func (e *Engine) ChangesSince(rev RevisionID) []Change {
	return e.tracker.ChangesSince(rev)
}

// ChangesSinceWithLimit returns up to limit changes made after rev.
func (e *Engine) ChangesSinceWithLimit(rev RevisionID, limit int) []Change {
	return e.tracker.ChangesSinceWithLimit(rev, limit)
}

// ChangesBetween returns changes in (startRev, endRev].
func (e *Engine) ChangesBetween(startRev, endRev RevisionID) []Change {
	return e.tracker.ChangesBetween(startRev, endRev)
}

// LatestChanges returns the most recent n changes.
func (e *Engine) LatestChanges(n int) []Change {
	return e.tracker.LatestChanges(n)
}

// ChangeCount returns the number of tracked changes.
func (e *Engine) ChangeCount() int {
	return e.tracker.ChangeCount()
}

// Diff Operations

// DiffSinceSnapshot returns the tracked changes made after a snapshot.
func (e *Engine) DiffSinceSnapshot(id SnapshotID) ([]Change, error) {
	return e.tracker.DiffSinceSnapshot(id)
}

// ComputeDiffSinceSnapshot computes a line diff from a snapshot to the
// current state.
func (e *Engine) ComputeDiffSinceSnapshot(id SnapshotID, opts DiffOptions) (DiffResult, error) {
	return e.tracker.ComputeDiffSinceSnapshot(id, e.Snapshot(), opts)
}

// ComputeDiffBetweenSnapshots computes a line diff between two snapshots.
func (e *Engine) ComputeDiffBetweenSnapshots(fromID, toID SnapshotID, opts DiffOptions) (DiffResult, error) {
	return e.tracker.ComputeDiffBetweenSnapshots(fromID, toID, opts)
}

// Configuration

// TabWidth returns the tab width.
func (e *Engine) TabWidth() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.TabWidth()
}

// SetTabWidth changes the tab width.
func (e *Engine) SetTabWidth(width int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.SetTabWidth(width)
}

// LineEnding returns the line ending style.
func (e *Engine) LineEnding() LineEnding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineEnding()
}

// SetLineEnding changes the line ending used for future inserts.
func (e *Engine) SetLineEnding(ending LineEnding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.SetLineEnding(ending)
}

// IsReadOnly returns true if the engine rejects writes.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// Reset

// Clear removes all content and resets history and tracking.
func (e *Engine) Clear() error {
	return e.SetContent("")
}

// SetContent replaces all content and resets history and tracking.
func (e *Engine) SetContent(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}

	if _, err := e.buf.Replace(0, e.buf.Len(), content); err != nil {
		return err
	}
	e.history.Clear()
	e.tracker.Clear()
	e.logger.Debug("content reset", "bytes", e.buf.Len())
	return nil
}
