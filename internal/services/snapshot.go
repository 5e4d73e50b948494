package services

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"capitalforge/pkg/contracts/domain"
)

// Snapshot is one processed upload: the cleaned table plus the
// resolution report, keyed by the content hash of the uploaded bytes.
type Snapshot struct {
	ID        string                   `json:"id"`
	FileName  string                   `json:"file_name"`
	CreatedAt time.Time                `json:"created_at"`
	Table     *domain.Table            `json:"-"`
	Report    *domain.ResolutionReport `json:"-"`
}

// SnapshotStore is an in-memory snapshot cache. Identical upload bytes
// hash to the same ID, so re-uploading a file returns the snapshot that
// was already processed.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]*Snapshot)}
}

// ContentID derives the snapshot ID for a byte payload.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the snapshot with the given ID.
func (s *SnapshotStore) Get(id string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	return snap, ok
}

// Put stores a snapshot under its ID, overwriting any previous entry.
func (s *SnapshotStore) Put(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snap
}

// List returns all stored snapshots, newest first.
func (s *SnapshotStore) List() []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of stored snapshots.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
