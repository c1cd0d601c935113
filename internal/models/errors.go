package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared across repositories, services and handlers. Callers
// classify failures with errors.Is/errors.As instead of matching strings.
var (
	// ErrNotFound marks a lookup for an entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an operation by a valid identity without rights over the target.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate marks a write that violated a uniqueness constraint.
	ErrDuplicate = errors.New("already exists")
	// ErrPayloadTooLarge marks an upload item over the per-file size limit.
	ErrPayloadTooLarge = errors.New("file exceeds the size limit")
	// ErrTooManyFiles marks an upload batch over the per-call file limit.
	ErrTooManyFiles = errors.New("too many files in one upload")
)

// ValidationError reports every violated field of a request at once, so the
// caller can fix all of them in a single round trip.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed on: %s", strings.Join(fields, ", "))
}
