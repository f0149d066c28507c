package executor

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrWorkflowNotFound indicates the execution service has no workflow with the requested id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrUnauthorized indicates the API key was missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnexpectedStatus indicates any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Error describes a failed call to the workflow-execution service.
type Error struct {
	Op         string // "Fetch", "FetchMap", "Submit"
	StatusCode int    // 0 when no response was received
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("executor %s failed: %v", e.Op, e.Err)
	}

	if e.Body != "" {
		return fmt.Sprintf("executor %s failed with status %d: %v: %s", e.Op, e.StatusCode, e.Err, e.Body)
	}

	return fmt.Sprintf("executor %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func statusError(op string, statusCode int, body string) *Error {
	var err error

	switch statusCode {
	case http.StatusNotFound:
		err = ErrWorkflowNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		err = ErrUnauthorized
	default:
		err = ErrUnexpectedStatus
	}

	return &Error{Op: op, StatusCode: statusCode, Body: body, Err: err}
}

// IsWorkflowNotFound checks if an error indicates the remote workflow does not exist.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsUnauthorized checks if an error indicates the API key was rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
