package utils

import "fmt"

// ArchiveError represents a structured error raised while reading or
// writing a zup archive, carrying the operation context alongside the
// underlying cause.
type ArchiveError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error. Returns nil if cause is nil, so
// callers can write `return utils.WrapError(ctx, err)` unconditionally.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ArchiveError{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *ArchiveError) Unwrap() error {
	return e.Cause
}
