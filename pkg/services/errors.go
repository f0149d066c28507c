// Package services provides the editor operations behind the CLI and the HTTP API.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/stateflow/pkg/executor"
	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameRequired = errors.New("workflow name is required")

	// Submission refused (422 Unprocessable Entity).
	ErrBlockingDiagnostics = errors.New("graph has diagnostics that block submission")

	// Not found (404).
	ErrDraftNotFound          = persistence.ErrDraftNotFound
	ErrRemoteWorkflowNotFound = executor.ErrWorkflowNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op          string // Operation name
	Code        string // Error code for API responses
	Message     string // Human-readable message
	Err         error  // Underlying error
	Diagnostics models.Diagnostics
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		persistence.IsInvalidDraft(err)
}

// IsBlockingError checks if a submission was refused because of its diagnostics.
func IsBlockingError(err error) bool {
	return errors.Is(err, ErrBlockingDiagnostics)
}

// IsNotFoundError checks if an error refers to a missing draft or remote workflow.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrDraftNotFound) || errors.Is(err, ErrRemoteWorkflowNotFound)
}

// IsUpstreamError checks if the execution service failed for a reason other than a missing workflow.
func IsUpstreamError(err error) bool {
	var callErr *executor.Error

	return errors.As(err, &callErr) && !errors.Is(err, ErrRemoteWorkflowNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// DiagnosticsOf returns the diagnostics attached to a service error, if any.
func DiagnosticsOf(err error) models.Diagnostics {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Diagnostics
	}

	return nil
}
