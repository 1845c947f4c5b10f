package matchrun

import (
	"time"

	"recruiting-console/internal/talenthub"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one match attempt against a frozen selection snapshot. The snapshot
// is taken at start time; later selection edits never leak into a run.
type Run struct {
	ID             string                 `json:"id"`
	OwnerID        string                 `json:"ownerId"`
	Status         string                 `json:"status"`
	RequestedCVIDs []string               `json:"requestedCvIds"`
	RequestedJDID  string                 `json:"requestedJdId"`
	Handle         talenthub.MatchHandle  `json:"handle,omitempty"`
	Progress       *talenthub.Progress    `json:"progress,omitempty"`
	Result         *talenthub.MatchResult `json:"result,omitempty"`
	ErrorCode      string                 `json:"errorCode,omitempty"`
	ErrorMessage   string                 `json:"errorMessage,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	StartedAt      *time.Time             `json:"startedAt,omitempty"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
}

// Terminal reports whether the run reached a final state.
func (r Run) Terminal() bool {
	return r.Status == StatusSucceeded || r.Status == StatusFailed
}
