package posting

import "errors"

var (
	ErrNoAttachment     = errors.New("no file attached")
	ErrNoReference      = errors.New("upload the job description first")
	ErrNothingToPublish = errors.New("nothing to publish")
	ErrTitleRequired    = errors.New("a title is required for form-only publishing")
	ErrPublishInFlight  = errors.New("a publish is already in flight")
	ErrAlreadyPublished = errors.New("draft already published, save edits instead")
	ErrNotPublished     = errors.New("draft has not been published")
	ErrNotFound         = errors.New("posting not found")
)

const (
	CodeValidation = "validation_error"
	CodeConflict   = "conflict"
	CodeUpstream   = "upstream_error"
)
