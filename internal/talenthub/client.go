package talenthub

import (
	"context"
	"fmt"
	"time"
)

// Kind identifies which document collection an operation targets.
type Kind string

const (
	KindCV Kind = "cv"
	KindJD Kind = "jd"
)

// Valid reports whether the kind is one the hub understands.
func (k Kind) Valid() bool {
	return k == KindCV || k == KindJD
}

// Document is a decoded summary of a hub document.
type Document struct {
	ID                    string
	Kind                  Kind
	DisplayName           string
	ExperienceYears       float64
	SkillsCount           int
	ResponsibilitiesCount int
	Category              string
	NotesCount            int
	UploadedAt            time.Time
}

// Progress reports how far a match run has advanced server-side.
type Progress struct {
	Processed            int    `json:"processed"`
	Total                int    `json:"total"`
	Stage                string `json:"stage"`
	EstimatedRemainingMs int64  `json:"estimatedRemainingMs"`
}

// MatchHandle correlates progress/result calls to a started match.
type MatchHandle string

// CandidateMatch is one scored CV within a match result.
type CandidateMatch struct {
	CVID        string   `json:"cvId"`
	DisplayName string   `json:"displayName"`
	Score       float64  `json:"score"`
	Strengths   []string `json:"strengths"`
	Gaps        []string `json:"gaps"`
}

// MatchResult is the outcome of a match run. Pending is true while the hub is
// still processing.
type MatchResult struct {
	Pending bool             `json:"pending"`
	Matches []CandidateMatch `json:"matches"`
	Raw     map[string]any   `json:"raw,omitempty"`
}

// UploadReceipt is returned after a JD document upload.
type UploadReceipt struct {
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
}

// JobFields are the editable posting form fields.
type JobFields struct {
	Title            string `json:"title"`
	Location         string `json:"location"`
	Summary          string `json:"summary"`
	Responsibilities string `json:"responsibilities"`
	Qualifications   string `json:"qualifications"`
	CompanyName      string `json:"companyName,omitempty"`
	AdditionalInfo   string `json:"additionalInfo,omitempty"`
}

// HasAny reports whether at least one field carries a non-empty value.
func (f JobFields) HasAny() bool {
	return f.Title != "" || f.Location != "" || f.Summary != "" ||
		f.Responsibilities != "" || f.Qualifications != "" ||
		f.CompanyName != "" || f.AdditionalInfo != ""
}

// PublishReceipt is returned after a successful publish.
type PublishReceipt struct {
	JobID       string `json:"jobId"`
	PublicToken string `json:"publicToken"`
	PublicLink  string `json:"publicLink"`
}

// Client is the boundary contract with the talent hub service.
type Client interface {
	ListDocuments(ctx context.Context, kind Kind) ([]Document, error)
	ListCategories(ctx context.Context) (map[string]int, error)
	ListDocumentsInCategory(ctx context.Context, category string) ([]Document, error)
	DeleteDocument(ctx context.Context, kind Kind, id string) error
	ReprocessDocument(ctx context.Context, kind Kind, id string) error

	StartMatch(ctx context.Context, cvIDs []string, jdID string) (MatchHandle, error)
	GetMatchProgress(ctx context.Context, handle MatchHandle) (Progress, error)
	GetMatchResult(ctx context.Context, handle MatchHandle) (MatchResult, error)

	UploadJD(ctx context.Context, fileName string, data []byte) (UploadReceipt, error)
	ExtractUIFields(ctx context.Context, referenceID string) (JobFields, error)
	PublishJobFromReference(ctx context.Context, referenceID string, fields JobFields) (PublishReceipt, error)
	PublishJobFromForm(ctx context.Context, fields JobFields, fileName string, data []byte) (PublishReceipt, error)
	UpdateJob(ctx context.Context, jobID string, fields JobFields) error
}

// APIError is a non-success response from the hub.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("talent hub: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("talent hub: status %d", e.Status)
}
