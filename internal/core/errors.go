package core

import "errors"

var (
	// ErrValidation marks input rejected before any state change.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an operation on an id that does not exist.
	ErrNotFound = errors.New("not found")
)
