package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/http/response"
)

// APIError implements huma.StatusError. Every error a handler returns is
// converted to one by the handler installed in RegisterErrorHandler.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"error" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Per-field validation messages"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render domain and store errors.
// Call it before serving requests; it replaces the package-level huma.NewError.
//
// Huma's own request validation failures (422) are reported as 400
// VALIDATION with one message per offending field. Errors that end up as
// a 500 are logged to logger, which may be nil.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr
			}

			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromEnvelope(response.FromError(domainErr))
			}
		}

		if status == http.StatusUnprocessableEntity || (status == http.StatusBadRequest && len(errs) > 0) {
			return &APIError{
				status:  http.StatusBadRequest,
				Code:    string(domainerrors.CodeValidation),
				Message: "validation failed",
				Details: fieldDetails(errs),
			}
		}

		for _, err := range errs {
			if err == nil {
				continue
			}
			s, env := response.FromError(err)
			if s != http.StatusInternalServerError {
				return fromEnvelope(s, env)
			}
		}

		if status >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("Unhandled API error", "status", status, "message", message, "errors", errs)
			}
			message = "internal server error"
		}
		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

func fromEnvelope(status int, env response.Envelope) *APIError {
	return &APIError{status: status, Code: env.Error, Message: env.Message, Details: env.Details}
}

// fieldDetails flattens huma validation errors into field -> message.
func fieldDetails(errs []error) map[string]string {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			if err != nil {
				details["body"] = err.Error()
			}
			continue
		}
		field := strings.TrimPrefix(detail.Location, "body.")
		if _, seen := details[field]; seen {
			continue
		}
		details[field] = fmt.Sprintf("%s %s", field, detail.Message)
	}
	return details
}

func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeDuplicate)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// asStatusError converts a handler error into a huma.StatusError so huma
// writes the mapped status rather than a blanket 500.
func asStatusError(err error) error {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}
	return huma.NewError(http.StatusInternalServerError, "unexpected error occurred", err)
}
