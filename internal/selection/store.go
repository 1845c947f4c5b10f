package selection

import (
	"sort"
	"sync"

	"recruiting-console/internal/inventory"
	"recruiting-console/internal/talenthub"
)

// Store holds per-owner selection state: the multi-select CV set and the
// single-select JD. Category selection is never stored; it is derived from
// membership every time it is asked for.
type Store struct {
	mu      sync.Mutex
	byOwner map[string]*state
}

type state struct {
	cvIDs map[string]struct{}
	jdID  string
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{byOwner: make(map[string]*state)}
}

func (s *Store) ownerState(owner string) *state {
	st, ok := s.byOwner[owner]
	if !ok {
		st = &state{cvIDs: make(map[string]struct{})}
		s.byOwner[owner] = st
	}
	return st
}

// SelectCV adds a CV to the selection. Idempotent.
func (s *Store) SelectCV(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerState(owner).cvIDs[id] = struct{}{}
}

// DeselectCV removes a CV from the selection. Idempotent.
func (s *Store) DeselectCV(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerState(owner).cvIDs, id)
}

// SelectJD applies radio semantics: a new id replaces the previous
// selection, re-selecting the current id clears it.
func (s *Store) SelectJD(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	if st.jdID == id {
		st.jdID = ""
		return
	}
	st.jdID = id
}

// ToggleCategory is a set-covering toggle: if every current member of the
// bucket is selected, all members are deselected; otherwise the remaining
// members are selected. Toggling twice restores the original state.
func (s *Store) ToggleCategory(owner string, bucket inventory.CategoryBucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	if coveredLocked(st, bucket) {
		for id := range bucket.MemberIDs {
			delete(st.cvIDs, id)
		}
		return
	}
	for id := range bucket.MemberIDs {
		st.cvIDs[id] = struct{}{}
	}
}

// SelectAllCategories selects every member of every bucket.
func (s *Store) SelectAllCategories(owner string, index map[string]inventory.CategoryBucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	for _, bucket := range index {
		for id := range bucket.MemberIDs {
			st.cvIDs[id] = struct{}{}
		}
	}
}

// DeselectAllCategories deselects every member of every bucket.
func (s *Store) DeselectAllCategories(owner string, index map[string]inventory.CategoryBucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	for _, bucket := range index {
		for id := range bucket.MemberIDs {
			delete(st.cvIDs, id)
		}
	}
}

// Reconcile drops selected ids that no longer exist in the inventory. Must
// run after every inventory mutation; the subset invariant holds only after
// this has been applied.
func (s *Store) Reconcile(owner string, kind talenthub.Kind, live map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	switch kind {
	case talenthub.KindCV:
		for id := range st.cvIDs {
			if _, ok := live[id]; !ok {
				delete(st.cvIDs, id)
			}
		}
	case talenthub.KindJD:
		if st.jdID != "" {
			if _, ok := live[st.jdID]; !ok {
				st.jdID = ""
			}
		}
	}
}

// Clear resets the owner's selection entirely.
func (s *Store) Clear(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byOwner, owner)
}

// Snapshot returns the selected CV ids (sorted) and the selected JD id.
func (s *Store) Snapshot(owner string) ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	ids := make([]string, 0, len(st.cvIDs))
	for id := range st.cvIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, st.jdID
}

// IsSelected reports whether a single CV is selected.
func (s *Store) IsSelected(owner, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ownerState(owner).cvIDs[id]
	return ok
}

// SelectedCategories derives the fully-covered categories, sorted by name.
// A category is selected iff every one of its current members is selected.
func (s *Store) SelectedCategories(owner string, index map[string]inventory.CategoryBucket) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ownerState(owner)
	out := make([]string, 0, len(index))
	for name, bucket := range index {
		if coveredLocked(st, bucket) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// CategorySelected derives the selection state of one category.
func (s *Store) CategorySelected(owner string, bucket inventory.CategoryBucket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return coveredLocked(s.ownerState(owner), bucket)
}

func coveredLocked(st *state, bucket inventory.CategoryBucket) bool {
	if len(bucket.MemberIDs) == 0 {
		return false
	}
	for id := range bucket.MemberIDs {
		if _, ok := st.cvIDs[id]; !ok {
			return false
		}
	}
	return true
}
