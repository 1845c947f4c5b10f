package posting

import (
	"time"

	"recruiting-console/internal/talenthub"
)

const (
	PhaseIdle       = "idle"
	PhaseUploaded   = "uploaded"
	PhaseAutoFilled = "autofilled"
)

// Draft is the owner's in-progress posting. It lives in memory only; cancel
// discards it and abandons any hub reference without deleting it.
type Draft struct {
	Phase          string
	FileName       string
	FileData       []byte
	ReferenceID    string
	Fields         talenthub.JobFields
	PublishedJobID string
	PublicToken    string
	PublicLink     string
	UpdatedAt      time.Time
}

// Published reports whether the draft already produced a job posting.
func (d Draft) Published() bool {
	return d.PublishedJobID != ""
}

// Posting is a persisted published job.
type Posting struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"ownerId"`
	ReferenceID string              `json:"referenceId,omitempty"`
	Fields      talenthub.JobFields `json:"fields"`
	PublicToken string              `json:"publicToken,omitempty"`
	PublicLink  string              `json:"publicLink,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
