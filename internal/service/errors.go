package service

import (
	"errors"
	"fmt"

	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
)

// Sentinel errors returned by the task service. Callers check them with
// errors.Is; the API layer maps them to status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrTaskNotFound indicates that the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrOccurrenceRecurrence is returned when a recurrence rule is given to an occurrence.
	ErrOccurrenceRecurrence = domain.ErrOccurrenceRecurrence

	// ErrAmbiguousRecurrence is returned when a request carries both a
	// structured rule and RRULE text.
	ErrAmbiguousRecurrence = fmt.Errorf("%w: give either recurrence or rrule, not both", domain.ErrValidation)
)

// TaskServiceError wraps unexpected failures of the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed, e.g. "create_task"
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError wraps err for operation. Sentinel errors callers are
// expected to branch on are returned unwrapped; store not-found errors become
// ErrTaskNotFound.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrNotOwned):
		return ErrNotOwned
	case errors.Is(err, domain.ErrValidation):
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
