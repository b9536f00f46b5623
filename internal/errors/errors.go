// Package errors provides the domain error taxonomy for the Booker API.
//
// Services return *Error values; the API layer turns the Code into an HTTP
// status and the "error" field of the response envelope.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Is and As are re-exported so callers need only one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Code is the machine-readable error code sent to clients.
type Code string

// Error codes.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeDuplicate          Code = "DUPLICATE"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeRateLimited        Code = "RATE_LIMITED"
)

// Duplicates are 400, not 409: existing Booker clients expect it.
var statusByCode = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeDuplicate:          http.StatusBadRequest,
	CodeValidation:         http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeRateLimited:        http.StatusTooManyRequests,
}

// HTTPStatus maps the code to a status. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a domain failure with a client-facing message. Details, when
// set, is serialized next to the message (per-field validation messages).
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same Code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus returns the status for e.Code.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping err. The cause is logged, never sent.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDuplicate  = &Error{Code: CodeDuplicate, Message: "duplicate"}
	ErrForbidden  = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation = &Error{Code: CodeValidation, Message: "validation error"}
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NotFound reports a missing book, review or user.
func NotFound(msg string) *Error { return newError(CodeNotFound, msg) }

// Duplicate reports a uniqueness violation: a taken email or a second
// review of the same book.
func Duplicate(msg string) *Error { return newError(CodeDuplicate, msg) }

// Unauthorized reports a missing or unusable bearer token.
func Unauthorized(msg string) *Error { return newError(CodeUnauthorized, msg) }

func Forbidden(msg string) *Error { return newError(CodeForbidden, msg) }

// Forbiddenf is Forbidden with a formatted message.
func Forbiddenf(format string, args ...any) *Error {
	return newError(CodeForbidden, fmt.Sprintf(format, args...))
}

// ValidationWithDetails reports invalid input; details maps field to message.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func Internal(msg string) *Error { return newError(CodeInternal, msg) }

func InvalidCredentials(msg string) *Error { return newError(CodeInvalidCredentials, msg) }

// Wrap builds an error of the given code around err.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
