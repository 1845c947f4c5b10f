package matchrun

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores runs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Run
	byOwner map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Run),
		byOwner: make(map[string][]string),
	}
}

// Create stores a new run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[run.ID] = cloneRun(run)
	r.byOwner[run.OwnerID] = append(r.byOwner[run.OwnerID], run.ID)
	return nil
}

// Update replaces a stored run.
func (r *MemoryRepo) Update(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[run.ID]; !ok {
		return ErrNotFound
	}
	r.byID[run.ID] = cloneRun(run)
	return nil
}

// GetByID returns the owner's run by id.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.byID[runID]
	if !ok || run.OwnerID != ownerID {
		return Run{}, ErrNotFound
	}
	return cloneRun(run), nil
}

// ListByOwner returns the owner's runs newest-first with limit/offset.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Run, error) {
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
	runs := make([]Run, 0, len(ids))
	for _, id := range ids {
		runs = append(runs, cloneRun(r.byID[id]))
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if offset >= len(runs) {
		return []Run{}, nil
	}
	end := len(runs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return runs[offset:end], nil
}

func cloneRun(run Run) Run {
	out := run
	out.RequestedCVIDs = append([]string(nil), run.RequestedCVIDs...)
	if run.Progress != nil {
		p := *run.Progress
		out.Progress = &p
	}
	if run.Result != nil {
		res := *run.Result
		out.Result = &res
	}
	return out
}
