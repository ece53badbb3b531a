package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the document and claim state machines. Callers check
// them with errors.Is and map them to HTTP status codes at the API boundary.
var (
	// ErrAlreadyProcessing is returned by enqueue when an active extraction
	// job already exists for the document.
	ErrAlreadyProcessing = errors.New("document is already being processed")

	// ErrInvalidState is returned when an operation is not allowed in the
	// record's current status, e.g. editing a published claim.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrNotFound is returned when a document or claim does not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError describes an upload rejected before any state was created.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid upload: " + e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PublishError carries the remote trust-graph API failure verbatim so the
// caller sees exactly what the remote rejected.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("publish rejected (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "publish failed: " + e.Message
}
