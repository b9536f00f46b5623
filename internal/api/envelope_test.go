package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/http/response"
	"github.com/bookerapp/booker-server/internal/store"
)

func TestEnvelopeTransformer(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
		want   response.Envelope
	}{
		{
			name:   "data",
			status: "200",
			input:  map[string]string{"id": "book-1"},
			want:   response.Envelope{Success: true, Data: map[string]string{"id": "book-1"}},
		},
		{
			name:   "no content",
			status: "204",
			input:  nil,
			want:   response.Envelope{Success: true},
		},
		{
			name:   "message",
			status: "200",
			input:  MessageBody{Message: "Review deleted"},
			want:   response.Envelope{Success: true, Message: "Review deleted"},
		},
		{
			name:   "paged",
			status: "200",
			input:  BookListBody{Books: []BookResponse{}, Meta: PageMeta{Page: 2, PerPage: 5, Total: 6, TotalPages: 2}},
			want: response.Envelope{
				Success: true,
				Data:    []BookResponse{},
				Meta:    PageMeta{Page: 2, PerPage: 5, Total: 6, TotalPages: 2},
			},
		},
		{
			name:   "api error",
			status: "400",
			input:  &APIError{Code: "VALIDATION", Message: "validation failed", Details: map[string]string{"year": "year is required"}},
			want: response.Envelope{
				Error:   "VALIDATION",
				Message: "validation failed",
				Details: map[string]string{"year": "year is required"},
			},
		},
		{
			name:   "plain error",
			status: "404",
			input:  errors.New("gone"),
			want:   response.Envelope{Error: "NOT_FOUND", Message: "gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorHandler_MapsErrors(t *testing.T) {
	RegisterErrorHandler(nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "domain error",
			err:        domainerrors.Forbidden("Not authorized to delete this book"),
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantMsg:    "Not authorized to delete this book",
		},
		{
			name:       "duplicate is a bad request",
			err:        domainerrors.Duplicate("Email already in use"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "DUPLICATE",
			wantMsg:    "Email already in use",
		},
		{
			name:       "wrapped store not found",
			err:        fmt.Errorf("load book: %w", store.ErrBookNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "anything else hides its message",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := asStatusError(tt.err)

			var apiErr *APIError
			require.ErrorAs(t, se, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestErrorHandler_ValidationBecomesBadRequest(t *testing.T) {
	RegisterErrorHandler(nil)

	se := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body.rating", Message: "expected integer"},
		&huma.ErrorDetail{Location: "body.reviewText", Message: "expected string"},
	)

	var apiErr *APIError
	require.ErrorAs(t, se, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, map[string]string{
		"rating":     "rating expected integer",
		"reviewText": "reviewText expected string",
	}, apiErr.Details)
}
