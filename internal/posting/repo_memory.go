package posting

import (
	"context"
	"sort"
	"sync"
	"time"

	"recruiting-console/internal/talenthub"
)

// MemoryRepo stores postings in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Posting
	byOwner map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Posting),
		byOwner: make(map[string][]string),
	}
}

// Create stores a new posting.
func (r *MemoryRepo) Create(ctx context.Context, posting Posting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[posting.ID] = posting
	r.byOwner[posting.OwnerID] = append(r.byOwner[posting.OwnerID], posting.ID)
	return nil
}

// UpdateFields replaces the editable fields of a posting. The public token
// and link columns are deliberately not writable here.
func (r *MemoryRepo) UpdateFields(ctx context.Context, id string, fields talenthub.JobFields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	posting, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	posting.Fields = fields
	posting.UpdatedAt = time.Now().UTC()
	r.byID[id] = posting
	return nil
}

// GetByID returns the owner's posting by id.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, id string) (Posting, error) {
	if err := ctx.Err(); err != nil {
		return Posting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	posting, ok := r.byID[id]
	if !ok || posting.OwnerID != ownerID {
		return Posting{}, ErrNotFound
	}
	return posting, nil
}

// ListByOwner returns the owner's postings newest-first with limit/offset.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byOwner[ownerID]
	postings := make([]Posting, 0, len(ids))
	for _, id := range ids {
		postings = append(postings, r.byID[id])
	}
	r.mu.RUnlock()

	sort.Slice(postings, func(i, j int) bool {
		return postings[i].CreatedAt.After(postings[j].CreatedAt)
	})

	if offset >= len(postings) {
		return []Posting{}, nil
	}
	end := len(postings)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return postings[offset:end], nil
}
