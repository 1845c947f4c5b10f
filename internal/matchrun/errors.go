package matchrun

import "errors"

var (
	ErrNoCVsSelected = errors.New("no cvs selected")
	ErrNoJDSelected  = errors.New("no jd selected")
	ErrRunInFlight   = errors.New("a match run is already in flight")
	ErrNotFound      = errors.New("match run not found")
)

const (
	CodeValidation = "validation_error"
	CodeConflict   = "conflict"
	CodeUpstream   = "upstream_error"
)
