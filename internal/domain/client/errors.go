package client

import (
	"errors"
	"fmt"
)

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrUniqueViolation  = errors.New("client identity already exists")
	ErrStoreUnavailable = errors.New("client store unavailable")
)

// ShapeValidationError marks a candidate row that failed structural validation.
type ShapeValidationError struct {
	Field   string
	Message string
}

func (e *ShapeValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DuplicateConflictError is returned when a write would duplicate another client,
// either detected by the engine or rejected by the store's unique index.
type DuplicateConflictError struct {
	ExistingID string
	Reason     string
	Cause      error
}

func (e *DuplicateConflictError) Error() string {
	if e.ExistingID == "" {
		return "duplicate client: a client with the same identity already exists"
	}
	return fmt.Sprintf("duplicate client: conflicts with existing client %s (%s)", e.ExistingID, e.Reason)
}

func (e *DuplicateConflictError) Unwrap() error {
	return e.Cause
}

// MissingLinkError is an update request on a within-file duplicate, which has no
// stored client to update.
type MissingLinkError struct {
	RowNumber int
}

func (e *MissingLinkError) Error() string {
	return "cannot update: duplicate is within file, no existing record linked"
}
