package tracking

import (
	"sync"

	"github.com/dshills/motto/internal/engine/buffer"
)

// DefaultMaxChanges is the default maximum number of changes to track.
const DefaultMaxChanges = 10000

// DefaultMaxRevisions is the default maximum number of revisions to store.
const DefaultMaxRevisions = 100

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxChanges sets the maximum number of changes to track. Non-positive
// values keep the default. Use it only with NewTracker.
func WithMaxChanges(maxChanges int) TrackerOption {
	return func(t *Tracker) {
		if maxChanges > 0 {
			t.maxChanges = maxChanges
		}
	}
}

// WithMaxRevisions sets the maximum number of revisions to store.
func WithMaxRevisions(maxRevisions int) TrackerOption {
	return func(t *Tracker) {
		t.revisions = newRevisionStore(maxRevisions)
	}
}

// Tracker keeps a bounded log of changes, the buffer state before each
// recorded revision, and named snapshots. All operations are thread-safe.
type Tracker struct {
	mu sync.RWMutex

	// ring buffer of recent changes
	changes    []Change
	head       int
	count      int
	maxChanges int

	revisions *revisionStore
	snapshots *SnapshotManager
}

// NewTracker creates a new change tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		maxChanges: DefaultMaxChanges,
		revisions:  newRevisionStore(DefaultMaxRevisions),
		snapshots:  NewSnapshotManager(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.changes = make([]Change, t.maxChanges)
	return t
}

// RecordChange records a single change. before is the buffer state before
// the change was applied; it may be nil.
func (t *Tracker) RecordChange(change Change, before *buffer.Snapshot) {
	t.RecordChanges([]Change{change}, before)
}

// RecordChanges records the changes of one revision.
func (t *Tracker) RecordChanges(changes []Change, before *buffer.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, change := range changes {
		t.recordChangeLocked(change)
	}
	if before != nil {
		t.revisions.Add(NewRevision(before))
	}
}

func (t *Tracker) recordChangeLocked(change Change) {
	idx := (t.head + t.count) % t.maxChanges
	if t.count < t.maxChanges {
		t.count++
	} else {
		t.head = (t.head + 1) % t.maxChanges
	}
	t.changes[idx] = change
}

// collectLocked returns, in chronological order, the changes keep accepts,
// stopping after limit results when limit is positive.
func (t *Tracker) collectLocked(keep func(Change) bool, limit int) []Change {
	var result []Change
	for i := 0; i < t.count; i++ {
		c := t.changes[(t.head+i)%t.maxChanges]
		if keep(c) {
			result = append(result, c)
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result
}

// ChangesSince returns all changes after rev, oldest first.
func (t *Tracker) ChangesSince(rev RevisionID) []Change {
	return t.ChangesSinceWithLimit(rev, 0)
}

// ChangesSinceWithLimit returns up to limit changes after rev. A
// non-positive limit returns them all.
func (t *Tracker) ChangesSinceWithLimit(rev RevisionID, limit int) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.collectLocked(func(c Change) bool { return c.Revision > rev }, limit)
}

// ChangesBetween returns changes in (startRev, endRev].
func (t *Tracker) ChangesBetween(startRev, endRev RevisionID) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.collectLocked(func(c Change) bool {
		return c.Revision > startRev && c.Revision <= endRev
	}, 0)
}

// LatestChanges returns the most recent n changes, oldest first.
func (t *Tracker) LatestChanges(n int) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n = min(max(n, 0), t.count)
	result := make([]Change, n)
	for i := 0; i < n; i++ {
		result[i] = t.changes[(t.head+t.count-n+i)%t.maxChanges]
	}
	return result
}

// ChangeCount returns the number of tracked changes.
func (t *Tracker) ChangeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Snapshot Operations

// CreateSnapshot stores state as a named snapshot.
func (t *Tracker) CreateSnapshot(name string, state *buffer.Snapshot) SnapshotID {
	return t.snapshots.Create(name, state)
}

// GetSnapshot retrieves a snapshot by ID.
func (t *Tracker) GetSnapshot(id SnapshotID) (*Snapshot, error) {
	snap, ok := t.snapshots.Get(id)
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// GetSnapshotByName retrieves a snapshot by name.
func (t *Tracker) GetSnapshotByName(name string) (*Snapshot, error) {
	snap, ok := t.snapshots.GetByName(name)
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// DeleteSnapshot removes a snapshot.
func (t *Tracker) DeleteSnapshot(id SnapshotID) {
	t.snapshots.Delete(id)
}

// DeleteSnapshotByName removes a snapshot by name.
func (t *Tracker) DeleteSnapshotByName(name string) {
	t.snapshots.DeleteByName(name)
}

// ListSnapshots returns all snapshots, oldest first.
func (t *Tracker) ListSnapshots() []*Snapshot {
	return t.snapshots.List()
}

// SnapshotCount returns the number of snapshots.
func (t *Tracker) SnapshotCount() int {
	return t.snapshots.Count()
}

// Diff Operations

// DiffSinceSnapshot returns the recorded changes made after the snapshot.
func (t *Tracker) DiffSinceSnapshot(id SnapshotID) ([]Change, error) {
	snap, err := t.GetSnapshot(id)
	if err != nil {
		return nil, err
	}
	return t.ChangesSince(snap.Revision), nil
}

// ComputeDiffSinceSnapshot computes a line diff from the snapshot to current.
func (t *Tracker) ComputeDiffSinceSnapshot(id SnapshotID, current *buffer.Snapshot, opts DiffOptions) (DiffResult, error) {
	snap, err := t.GetSnapshot(id)
	if err != nil {
		return DiffResult{}, err
	}
	return DiffSnapshots(snap.State(), current, opts), nil
}

// ComputeDiffBetweenSnapshots computes a line diff between two snapshots.
func (t *Tracker) ComputeDiffBetweenSnapshots(fromID, toID SnapshotID, opts DiffOptions) (DiffResult, error) {
	from, err := t.GetSnapshot(fromID)
	if err != nil {
		return DiffResult{}, err
	}
	to, err := t.GetSnapshot(toID)
	if err != nil {
		return DiffResult{}, err
	}
	return DiffSnapshots(from.State(), to.State(), opts), nil
}

// SnapshotText returns the full text of a snapshot.
func (t *Tracker) SnapshotText(id SnapshotID) (string, error) {
	snap, err := t.GetSnapshot(id)
	if err != nil {
		return "", err
	}
	return snap.Text(), nil
}

// Revision Operations

// GetRevision retrieves a stored revision.
func (t *Tracker) GetRevision(id RevisionID) (*Revision, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revisions.Get(id)
}

// RevisionCount returns the number of stored revisions.
func (t *Tracker) RevisionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revisions.Len()
}

// Clear removes all tracked changes, revisions, and snapshots.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.changes)
	t.head = 0
	t.count = 0
	t.revisions.Clear()
	t.snapshots.Clear()
}

// BuildChangeSet collects the changes after sinceRev into a ChangeSet.
func (t *Tracker) BuildChangeSet(sinceRev RevisionID) *ChangeSet {
	cs := NewChangeSet(sinceRev)
	for _, c := range t.ChangesSince(sinceRev) {
		cs.Add(c)
	}
	return cs
}

// BuildChangeSetBetween collects the changes in (startRev, endRev].
func (t *Tracker) BuildChangeSetBetween(startRev, endRev RevisionID) *ChangeSet {
	cs := NewChangeSet(startRev)
	for _, c := range t.ChangesBetween(startRev, endRev) {
		cs.Add(c)
	}
	return cs
}
