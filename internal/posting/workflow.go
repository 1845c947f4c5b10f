package posting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"recruiting-console/internal/extract"
	"recruiting-console/internal/shared/metrics"
	"recruiting-console/internal/shared/telemetry"
	"recruiting-console/internal/talenthub"
)

// Workflow drives the two-phase posting flow: attach, upload, auto-fill,
// publish, save. Each phase transition is a checkpoint; a failed step never
// rolls an earlier step back, retries always move forward.
type Workflow struct {
	Hub  talenthub.Client
	Jobs Repo

	mu         sync.Mutex
	drafts     map[string]*Draft
	publishing map[string]bool
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(hub talenthub.Client, jobs Repo) *Workflow {
	return &Workflow{
		Hub:        hub,
		Jobs:       jobs,
		drafts:     make(map[string]*Draft),
		publishing: make(map[string]bool),
	}
}

func (w *Workflow) draft(owner string) *Draft {
	d, ok := w.drafts[owner]
	if !ok {
		d = &Draft{Phase: PhaseIdle}
		w.drafts[owner] = d
	}
	return d
}

// Get returns a copy of the owner's draft.
func (w *Workflow) Get(owner string) Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.draft(owner)
}

// Attach stores the JD file locally. A text preview of PDF attachments seeds
// the summary field when it is still empty; preview failures are ignored.
func (w *Workflow) Attach(owner, fileName string, data []byte) Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft(owner)
	d.FileName = fileName
	d.FileData = append([]byte(nil), data...)
	d.UpdatedAt = time.Now().UTC()

	if d.Fields.Summary == "" {
		if preview, err := extract.Preview(data, fileName); err == nil && preview != "" {
			d.Fields.Summary = preview
		}
	}
	return *d
}

// Upload sends the attached file to the hub. On failure the attachment and
// the idle phase survive so the user can retry; on success the returned
// reference id is the checkpoint the rest of the flow builds on.
func (w *Workflow) Upload(ctx context.Context, owner string) (Draft, error) {
	w.mu.Lock()
	d := w.draft(owner)
	if len(d.FileData) == 0 {
		w.mu.Unlock()
		return *d, ErrNoAttachment
	}
	fileName := d.FileName
	data := append([]byte(nil), d.FileData...)
	w.mu.Unlock()

	receipt, err := w.Hub.UploadJD(ctx, fileName, data)
	if err != nil {
		return w.Get(owner), err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	d = w.draft(owner)
	d.ReferenceID = receipt.ReferenceID
	d.Phase = PhaseUploaded
	d.UpdatedAt = time.Now().UTC()
	telemetry.Info("posting.uploaded", map[string]any{
		"user_id":      owner,
		"reference_id": receipt.ReferenceID,
	})
	return *d, nil
}

// AutoFill extracts form fields for the uploaded reference. It requires a
// reference id and never re-uploads: a failure here leaves the uploaded
// checkpoint intact and the next attempt retries extraction only.
func (w *Workflow) AutoFill(ctx context.Context, owner string) (Draft, error) {
	w.mu.Lock()
	d := w.draft(owner)
	if d.ReferenceID == "" {
		w.mu.Unlock()
		return *d, ErrNoReference
	}
	referenceID := d.ReferenceID
	w.mu.Unlock()

	fields, err := w.Hub.ExtractUIFields(ctx, referenceID)
	if err != nil {
		return w.Get(owner), err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	d = w.draft(owner)
	d.Fields = mergeFields(d.Fields, fields)
	d.Phase = PhaseAutoFilled
	d.UpdatedAt = time.Now().UTC()
	return *d, nil
}

// SetFields replaces the editable form fields.
func (w *Workflow) SetFields(owner string, fields talenthub.JobFields) Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft(owner)
	d.Fields = fields
	d.UpdatedAt = time.Now().UTC()
	return *d
}

// Publish creates the job posting. Strategy precedence: an uploaded
// reference wins, then a still-local attachment, then the bare form. The
// in-flight guard rejects concurrent publishes before any hub call.
func (w *Workflow) Publish(ctx context.Context, owner string) (Draft, error) {
	w.mu.Lock()
	if w.publishing[owner] {
		w.mu.Unlock()
		return w.Get(owner), ErrPublishInFlight
	}
	d := w.draft(owner)
	if d.Published() {
		w.mu.Unlock()
		return w.Get(owner), ErrAlreadyPublished
	}

	snapshot := *d
	snapshot.FileData = append([]byte(nil), d.FileData...)
	strategy := chooseStrategy(snapshot)
	if strategy == "" {
		w.mu.Unlock()
		return snapshot, ErrNothingToPublish
	}
	if strategy == strategyForm && snapshot.Fields.Title == "" {
		w.mu.Unlock()
		return snapshot, ErrTitleRequired
	}
	w.publishing[owner] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.publishing, owner)
		w.mu.Unlock()
	}()

	var receipt talenthub.PublishReceipt
	var err error
	switch strategy {
	case strategyReference:
		receipt, err = w.Hub.PublishJobFromReference(ctx, snapshot.ReferenceID, snapshot.Fields)
	case strategyFile:
		receipt, err = w.Hub.PublishJobFromForm(ctx, snapshot.Fields, snapshot.FileName, snapshot.FileData)
	case strategyForm:
		receipt, err = w.Hub.PublishJobFromForm(ctx, snapshot.Fields, "", nil)
	}
	if err != nil {
		metrics.IncPublishFailed()
		return w.Get(owner), err
	}

	now := time.Now().UTC()
	posting := Posting{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		ReferenceID: snapshot.ReferenceID,
		Fields:      snapshot.Fields,
		PublicToken: receipt.PublicToken,
		PublicLink:  receipt.PublicLink,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if receipt.JobID != "" {
		posting.ID = receipt.JobID
	}
	if err := w.Jobs.Create(ctx, posting); err != nil {
		telemetry.Error("posting.store_failed", map[string]any{
			"user_id": owner,
			"job_id":  posting.ID,
			"error":   err.Error(),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	d = w.draft(owner)
	d.PublishedJobID = posting.ID
	d.PublicToken = receipt.PublicToken
	d.PublicLink = receipt.PublicLink
	d.UpdatedAt = now
	metrics.IncPublish()
	telemetry.Info("posting.published", map[string]any{
		"user_id":  owner,
		"job_id":   posting.ID,
		"strategy": string(strategy),
	})
	return *d, nil
}

// Save pushes field edits to an already-published job. The public token and
// link are never touched: editing a live posting must not invalidate links
// that are already shared.
func (w *Workflow) Save(ctx context.Context, owner string) (Draft, error) {
	w.mu.Lock()
	d := w.draft(owner)
	if !d.Published() {
		w.mu.Unlock()
		return *d, ErrNotPublished
	}
	jobID := d.PublishedJobID
	fields := d.Fields
	w.mu.Unlock()

	if err := w.Hub.UpdateJob(ctx, jobID, fields); err != nil {
		return w.Get(owner), err
	}
	if err := w.Jobs.UpdateFields(ctx, jobID, fields); err != nil {
		telemetry.Error("posting.update_store_failed", map[string]any{
			"user_id": owner,
			"job_id":  jobID,
			"error":   err.Error(),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	d = w.draft(owner)
	d.UpdatedAt = time.Now().UTC()
	return *d, nil
}

// Cancel discards the draft. The hub reference, if any, is abandoned.
func (w *Workflow) Cancel(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.drafts, owner)
}

// List returns the owner's published postings.
func (w *Workflow) List(ctx context.Context, owner string, limit, offset int) ([]Posting, error) {
	return w.Jobs.ListByOwner(ctx, owner, limit, offset)
}

type publishStrategy string

const (
	strategyReference publishStrategy = "reference"
	strategyFile      publishStrategy = "file"
	strategyForm      publishStrategy = "form"
)

func chooseStrategy(d Draft) publishStrategy {
	if d.ReferenceID != "" && d.Fields.HasAny() {
		return strategyReference
	}
	if len(d.FileData) > 0 && d.ReferenceID == "" {
		return strategyFile
	}
	if d.Fields.HasAny() {
		return strategyForm
	}
	return ""
}

// mergeFields overlays extracted values, keeping user-entered values where
// extraction came back empty.
func mergeFields(current, extracted talenthub.JobFields) talenthub.JobFields {
	out := extracted
	if out.Title == "" {
		out.Title = current.Title
	}
	if out.Location == "" {
		out.Location = current.Location
	}
	if out.Summary == "" {
		out.Summary = current.Summary
	}
	if out.Responsibilities == "" {
		out.Responsibilities = current.Responsibilities
	}
	if out.Qualifications == "" {
		out.Qualifications = current.Qualifications
	}
	if out.CompanyName == "" {
		out.CompanyName = current.CompanyName
	}
	if out.AdditionalInfo == "" {
		out.AdditionalInfo = current.AdditionalInfo
	}
	return out
}
