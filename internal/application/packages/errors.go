package packages

import "errors"

var (
	ErrNotFound     = errors.New("Mortgage package not found")
	ErrNotConfirmed = errors.New("Deletion not confirmed")
	ErrCreateFailed = errors.New("Failed to create mortgage package")
	ErrUpdateFailed = errors.New("Failed to update mortgage package")
	ErrDeleteFailed = errors.New("Failed to delete mortgage package")
	ErrFetchFailed  = errors.New("Failed to fetch mortgage packages")
)

// ValidationError carries field-level messages; it blocks the store call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed"
}
