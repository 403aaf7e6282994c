package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic              = fmt.Errorf("worker panic")
	ErrValidation               = fmt.Errorf("validation failed")
	ErrParticipantAlreadyExists = fmt.Errorf("participant already exists")
	ErrParticipantNotFound      = fmt.Errorf("participant not found")
	ErrInvalidArgument          = fmt.Errorf("invalid argument")
	ErrStoreUnavailable         = fmt.Errorf("store unavailable")
)

// MapToHTTPStatus translates a service error into the status code returned to clients.
// Unknown errors are server errors.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrParticipantAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrParticipantNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsExpected reports whether err is a normal client-facing outcome rather than a failure worth logging.
func IsExpected(err error) bool {
	return MapToHTTPStatus(err) < http.StatusInternalServerError
}
