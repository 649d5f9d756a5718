// backend/shared/go-utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// ErrRowVersionConflict means an optimistic update kept losing to
// concurrent writers. Service-specific sentinels live in each service's
// internal/utils package.
var ErrRowVersionConflict = errors.New("row_version_conflict")

// AppError carries the HTTP status, stable error code and public message
// from the service layer to the controllers. Err is logged, never sent.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
