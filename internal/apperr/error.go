package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by every package. Package-level sentinels wrap one of
// these so callers can branch with errors.Is.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrNotFound               = errors.New("not found")
	ErrValidationFailed       = errors.New("validation failed")
	ErrRemoteUnavailable      = errors.New("remote unavailable")
)

// Validation builds a ValidationFailed error with a user-facing message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, msg)
}

// NotFound builds a NotFound error naming the missing entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Remote wraps a gateway failure, keeping the cause.
func Remote(err error) error {
	if err == nil || errors.Is(err, ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
}

// HTTPStatus maps an error kind to the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorizationDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
