package tracking

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/motto/internal/engine/buffer"
)

// SnapshotID uniquely identifies a named snapshot.
type SnapshotID uint64

var snapshotIDCounter uint64

// NewSnapshotID generates a new unique snapshot ID.
func NewSnapshotID() SnapshotID {
	return SnapshotID(atomic.AddUint64(&snapshotIDCounter, 1))
}

// Snapshot is a named checkpoint of buffer state. It is immutable and may
// be shared across goroutines.
type Snapshot struct {
	ID   SnapshotID
	Name string

	Timestamp time.Time

	// Revision is the buffer revision at the time of the snapshot.
	Revision RevisionID

	state *buffer.Snapshot
}

// NewSnapshot creates a snapshot named name over state.
func NewSnapshot(name string, state *buffer.Snapshot) *Snapshot {
	return &Snapshot{
		ID:        NewSnapshotID(),
		Name:      name,
		Timestamp: time.Now(),
		Revision:  state.RevisionID(),
		state:     state,
	}
}

// State returns the buffer snapshot captured by s.
func (s *Snapshot) State() *buffer.Snapshot {
	return s.state
}

// Text returns the full text at this snapshot.
func (s *Snapshot) Text() string {
	return s.state.Text()
}

// Len returns the byte length at this snapshot.
func (s *Snapshot) Len() int64 {
	return int64(s.state.Len())
}

// LineCount returns the number of lines at this snapshot.
func (s *Snapshot) LineCount() uint32 {
	return s.state.LineCount()
}

// Age returns how long ago this snapshot was created.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.Timestamp)
}

// SnapshotManager manages named snapshots.
// All operations are thread-safe.
type SnapshotManager struct {
	mu        sync.RWMutex
	snapshots map[SnapshotID]*Snapshot
	byName    map[string]*Snapshot
}

// NewSnapshotManager creates a new snapshot manager.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{
		snapshots: make(map[SnapshotID]*Snapshot),
		byName:    make(map[string]*Snapshot),
	}
}

// Create stores a snapshot of state under name, replacing any snapshot
// with the same name. Unnamed snapshots are reachable by ID only.
func (sm *SnapshotManager) Create(name string, state *buffer.Snapshot) SnapshotID {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if existing, ok := sm.byName[name]; ok {
		delete(sm.snapshots, existing.ID)
	}

	snap := NewSnapshot(name, state)
	sm.snapshots[snap.ID] = snap
	if name != "" {
		sm.byName[name] = snap
	}
	return snap.ID
}

// Get retrieves a snapshot by ID.
func (sm *SnapshotManager) Get(id SnapshotID) (*Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	snap, ok := sm.snapshots[id]
	return snap, ok
}

// GetByName retrieves a snapshot by name.
func (sm *SnapshotManager) GetByName(name string) (*Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	snap, ok := sm.byName[name]
	return snap, ok
}

// Delete removes a snapshot by ID.
func (sm *SnapshotManager) Delete(id SnapshotID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if snap, ok := sm.snapshots[id]; ok {
		sm.removeLocked(snap)
	}
}

// DeleteByName removes a snapshot by name.
func (sm *SnapshotManager) DeleteByName(name string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if snap, ok := sm.byName[name]; ok {
		sm.removeLocked(snap)
	}
}

func (sm *SnapshotManager) removeLocked(snap *Snapshot) {
	if snap.Name != "" {
		delete(sm.byName, snap.Name)
	}
	delete(sm.snapshots, snap.ID)
}

// List returns all snapshots, oldest first.
func (sm *SnapshotManager) List() []*Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sortedLocked()
}

// sortedLocked orders by ID, which increases with creation time.
func (sm *SnapshotManager) sortedLocked() []*Snapshot {
	snapshots := make([]*Snapshot, 0, len(sm.snapshots))
	for _, snap := range sm.snapshots {
		snapshots = append(snapshots, snap)
	}
	slices.SortFunc(snapshots, func(a, b *Snapshot) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return snapshots
}

// Count returns the number of snapshots.
func (sm *SnapshotManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.snapshots)
}

// Clear removes all snapshots.
func (sm *SnapshotManager) Clear() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.snapshots = make(map[SnapshotID]*Snapshot)
	sm.byName = make(map[string]*Snapshot)
}

// Names returns all snapshot names in sorted order.
func (sm *SnapshotManager) Names() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	names := make([]string, 0, len(sm.byName))
	for name := range sm.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Prune removes snapshots older than maxAge and returns how many it removed.
func (sm *SnapshotManager) Prune(maxAge time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, snap := range sm.snapshots {
		if snap.Timestamp.Before(cutoff) {
			sm.removeLocked(snap)
			removed++
		}
	}
	return removed
}

// PruneKeepN keeps the n most recent snapshots and returns how many it removed.
func (sm *SnapshotManager) PruneKeepN(n int) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.snapshots) <= n {
		return 0
	}

	snapshots := sm.sortedLocked()
	excess := len(snapshots) - max(n, 0)
	for _, snap := range snapshots[:excess] {
		sm.removeLocked(snap)
	}
	return excess
}
