package inventory

import (
	"sync"

	"recruiting-console/internal/talenthub"
)

// Store holds per-owner mirrors of the hub's document lists. Mirrors are
// replaced wholesale on refresh; readers always observe a complete list.
type Store struct {
	mu      sync.RWMutex
	byOwner map[string]map[talenthub.Kind][]Summary
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		byOwner: make(map[string]map[talenthub.Kind][]Summary),
	}
}

// Replace swaps the mirror for owner+kind in one step.
func (s *Store) Replace(owner string, kind talenthub.Kind, docs []Summary) {
	copied := make([]Summary, len(docs))
	copy(copied, docs)

	s.mu.Lock()
	defer s.mu.Unlock()
	mirrors, ok := s.byOwner[owner]
	if !ok {
		mirrors = make(map[talenthub.Kind][]Summary)
		s.byOwner[owner] = mirrors
	}
	mirrors[kind] = copied
}

// Remove drops one document from the mirror. Applied optimistically after a
// confirmed server-side delete.
func (s *Store) Remove(owner string, kind talenthub.Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mirrors, ok := s.byOwner[owner]
	if !ok {
		return
	}
	docs := mirrors[kind]
	for i := range docs {
		if docs[i].ID == id {
			mirrors[kind] = append(docs[:i:i], docs[i+1:]...)
			return
		}
	}
}

// Upsert replaces or appends one document in the mirror.
func (s *Store) Upsert(owner string, kind talenthub.Kind, doc Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mirrors, ok := s.byOwner[owner]
	if !ok {
		mirrors = make(map[talenthub.Kind][]Summary)
		s.byOwner[owner] = mirrors
	}
	docs := mirrors[kind]
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			return
		}
	}
	mirrors[kind] = append(docs, doc)
}

// Snapshot returns a copy of the mirror for owner+kind.
func (s *Store) Snapshot(owner string, kind talenthub.Kind) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.byOwner[owner][kind]
	out := make([]Summary, len(docs))
	copy(out, docs)
	return out
}

// IDs returns the set of live document ids for owner+kind.
func (s *Store) IDs(owner string, kind talenthub.Kind) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.byOwner[owner][kind]
	out := make(map[string]struct{}, len(docs))
	for i := range docs {
		out[docs[i].ID] = struct{}{}
	}
	return out
}
