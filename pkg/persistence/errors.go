package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDraftNotFound indicates a draft was not found by the given identifier.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrInvalidDraft indicates a draft cannot be stored as given.
	ErrInvalidDraft = errors.New("invalid draft")
)

// DraftError wraps draft-related errors with additional context.
type DraftError struct {
	Op      string // Operation being performed (e.g., "DraftByID", "SaveDraft")
	DraftID string
	Err     error
	Message string
}

func (e *DraftError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for draft %s: %s (%v)", e.Op, e.DraftID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for draft %s: %v", e.Op, e.DraftID, e.Err)
}

func (e *DraftError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for draft errors.
func (e *DraftError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDraftError creates a new draft error with context.
func NewDraftError(op, draftID string, err error) *DraftError {
	return &DraftError{
		Op:      op,
		DraftID: draftID,
		Err:     err,
	}
}

// IsDraftNotFound checks if an error indicates a draft was not found.
func IsDraftNotFound(err error) bool {
	return errors.Is(err, ErrDraftNotFound)
}

// IsInvalidDraft checks if an error indicates a draft was rejected by the store.
func IsInvalidDraft(err error) bool {
	return errors.Is(err, ErrInvalidDraft)
}
