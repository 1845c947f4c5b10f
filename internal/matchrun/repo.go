package matchrun

import "context"

// Repo persists match run history.
type Repo interface {
	Create(ctx context.Context, run Run) error
	Update(ctx context.Context, run Run) error
	GetByID(ctx context.Context, ownerID, runID string) (Run, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Run, error)
}
