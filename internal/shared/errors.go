package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a field-level validation failure.
	ErrValidation = errors.New("validation failed")
)
