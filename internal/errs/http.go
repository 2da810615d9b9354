package errs

import (
	"net/http"
)

// NewNotFoundError creates a KindNotFound error.
func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a KindBadRequest error.
func NewBadRequestError(message string) *HTTPError {
	return &HTTPError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewValidationError creates a KindValidation error carrying the ordered list
// of violated field rules.
func NewValidationError(details []FieldError) *HTTPError {
	return &HTTPError{
		Kind:    KindValidation,
		Message: "Validation failed",
		Details: details,
	}
}

// NewInternalServerError creates a KindInternal error.
//
// The message is always the generic status text; cause is kept for logging
// and may be nil.
func NewInternalServerError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindInternal,
		Message: http.StatusText(http.StatusInternalServerError),
		cause:   cause,
	}
}
