package tracking

import (
	"time"

	"github.com/dshills/motto/internal/engine/buffer"
)

// RevisionID is an alias to buffer.RevisionID for convenience.
type RevisionID = buffer.RevisionID

// Revision is a stored buffer state. It holds a buffer snapshot, which
// shares the piece table's blocks, so keeping one is O(segments).
type Revision struct {
	ID        RevisionID
	Timestamp time.Time

	snap *buffer.Snapshot
}

// NewRevision creates a revision for snap, identified by the snapshot's
// revision ID.
func NewRevision(snap *buffer.Snapshot) *Revision {
	return &Revision{
		ID:        snap.RevisionID(),
		Timestamp: time.Now(),
		snap:      snap,
	}
}

// Snapshot returns the buffer snapshot of this revision.
func (r *Revision) Snapshot() *buffer.Snapshot {
	return r.snap
}

// Text returns the full text at this revision.
func (r *Revision) Text() string {
	return r.snap.Text()
}

// Len returns the byte length at this revision.
func (r *Revision) Len() int64 {
	return int64(r.snap.Len())
}

// LineCount returns the number of lines at this revision.
func (r *Revision) LineCount() uint32 {
	return r.snap.LineCount()
}

// revisionStore keeps the most recent revisions, evicting in insertion order.
type revisionStore struct {
	revisions  map[RevisionID]*Revision
	order      []RevisionID
	maxEntries int
}

func newRevisionStore(maxEntries int) *revisionStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxRevisions
	}
	return &revisionStore{
		revisions:  make(map[RevisionID]*Revision),
		maxEntries: maxEntries,
	}
}

func (rs *revisionStore) Add(rev *Revision) {
	if _, ok := rs.revisions[rev.ID]; !ok {
		rs.order = append(rs.order, rev.ID)
	}
	rs.revisions[rev.ID] = rev

	for len(rs.order) > rs.maxEntries {
		delete(rs.revisions, rs.order[0])
		rs.order = rs.order[1:]
	}
}

func (rs *revisionStore) Get(id RevisionID) (*Revision, bool) {
	rev, ok := rs.revisions[id]
	return rev, ok
}

func (rs *revisionStore) Len() int {
	return len(rs.revisions)
}

func (rs *revisionStore) Clear() {
	rs.revisions = make(map[RevisionID]*Revision)
	rs.order = nil
}
