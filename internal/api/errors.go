package api

import (
	"errors"
	"net/http"

	"github.com/leventyarali/vocanizer-sub000/internal/api/shared"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/service"
	"github.com/leventyarali/vocanizer-sub000/internal/service/auth"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "User ID not found or invalid"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this task"

	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, store.ErrNotFound):
		return "Task not found"

	case errors.As(err, &verr):
		return "Invalid " + verr.Field + ": " + verr.Message

	// Domain sentinels carry "validation failed: <reason>"; the reason is safe
	case errors.Is(err, service.ErrAmbiguousRecurrence):
		return "Give either recurrence or rrule, not both"
	case errors.Is(err, domain.ErrRecurrenceUnbounded):
		return "Recurrence is unbounded: give a count or an end date within the occurrence limit"
	case errors.Is(err, domain.ErrInvalidRecurrence):
		return "Invalid recurrence rule"
	case errors.Is(err, domain.ErrOccurrenceRecurrence):
		return "An occurrence cannot carry a recurrence rule"
	case errors.Is(err, domain.ErrTaskTitleEmpty):
		return "Title is required"
	case errors.Is(err, domain.ErrTaskTitleTooLong):
		return "Title is too long"
	case errors.Is(err, domain.ErrInvalidTaskStatus):
		return "Invalid task status"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message for errors that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
