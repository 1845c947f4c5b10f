package posting

import (
	"context"

	"recruiting-console/internal/talenthub"
)

// Repo persists published job postings.
type Repo interface {
	Create(ctx context.Context, posting Posting) error
	UpdateFields(ctx context.Context, id string, fields talenthub.JobFields) error
	GetByID(ctx context.Context, ownerID, id string) (Posting, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Posting, error)
}
