package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same status code, so
// ErrNotFound.WithMessage("...") still satisfies errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	// ErrWriteConflict is returned when a transaction keeps losing to
	// concurrent commits on the same keys.
	ErrWriteConflict = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "Too many concurrent updates, please retry",
	}
)

// Entity-specific errors.
var (
	ErrUserNotFound   = ErrNotFound.WithMessage("User not found")
	ErrBookNotFound   = ErrNotFound.WithMessage("Book not found")
	ErrReviewNotFound = ErrNotFound.WithMessage("Review not found")
	ErrEmailExists    = ErrAlreadyExists.WithMessage("Email already in use")
	ErrReviewExists   = ErrAlreadyExists.WithMessage("You have already reviewed this book")
)
