package apperror

import (
	"errors"
	"net/http"
)

// AppError is a custom error type that carries the HTTP status code to respond with.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// IsValidation reports whether err carries malformed-input semantics (400).
func IsValidation(err error) bool { return hasCode(err, http.StatusBadRequest) }

// IsNotFound reports whether err refers to an unknown entity (404).
func IsNotFound(err error) bool { return hasCode(err, http.StatusNotFound) }

// IsConflict reports whether err is a state conflict the caller may resolve by retrying
// against fresh data (409).
func IsConflict(err error) bool { return hasCode(err, http.StatusConflict) }

func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
