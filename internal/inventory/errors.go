package inventory

import "errors"

var (
	ErrUnknownKind = errors.New("unknown document kind")
	ErrNotFound    = errors.New("document not found")
)
