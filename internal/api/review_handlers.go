package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/service"
)

const msgReviewDeleted = "Review deleted"

func (s *Server) registerReviewRoutes() {
	register(s.api, huma.Operation{
		OperationID: "listMyReviews",
		Method:      http.MethodGet,
		Path:        "/api/reviews/mine",
		Summary:     "List my reviews",
		Description: "Returns the reviews the caller wrote, newest first",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyReviews)

	register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/reviews/{id}",
		Summary:     "List book reviews",
		Description: "Returns a book's reviews, newest first. The path ID is a book ID.",
		Tags:        []string{"Reviews"},
	}, s.handleListBookReviews)

	register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/reviews/{id}",
		Summary:       "Review a book",
		Description:   "Adds the caller's review of a book. Each user may review a book once. The path ID is a book ID.",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReview)

	register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPatch,
		Path:        "/api/reviews/{id}",
		Summary:     "Edit review",
		Description: "Edits the rating or text of the caller's review. The path ID is a review ID.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReview)

	register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/reviews/{id}",
		Summary:     "Delete review",
		Description: "Deletes the caller's review. The path ID is a review ID.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// MyReviewsInput carries the bearer token.
type MyReviewsInput struct {
	Authorization string `header:"Authorization"`
}

// BookReviewsInput addresses a book's reviews.
type BookReviewsInput struct {
	BookID string `path:"id" doc:"Book ID"`
}

// ReviewsResponse is a list of reviews.
type ReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews, newest first"`
}

// ReviewsOutput wraps a list of reviews for Huma.
type ReviewsOutput struct {
	Body ReviewsResponse
}

// CreateReviewRequest is the request body for a new review.
type CreateReviewRequest struct {
	_          struct{} `json:"-" additionalProperties:"true"`
	Rating     int      `json:"rating,omitempty" doc:"Rating from 1 to 5"`
	ReviewText string   `json:"reviewText,omitempty" doc:"Review text, at least 3 characters"`
}

// CreateReviewInput wraps the create review request for Huma.
type CreateReviewInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"id" doc:"Book ID"`
	Body          CreateReviewRequest
}

// UpdateReviewRequest is the request body for editing a review.
type UpdateReviewRequest struct {
	_          struct{} `json:"-" additionalProperties:"true"`
	Rating     *int     `json:"rating,omitempty" doc:"Rating from 1 to 5"`
	ReviewText *string  `json:"reviewText,omitempty" doc:"Review text"`
}

// UpdateReviewInput wraps the update review request for Huma.
type UpdateReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
	Body          UpdateReviewRequest
}

// DeleteReviewInput addresses the review to delete.
type DeleteReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// === Handlers ===

func (s *Server) handleListMyReviews(ctx context.Context, _ *MyReviewsInput) (*ReviewsOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Reviews.Mine(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &ReviewsOutput{Body: ReviewsResponse{Reviews: toReviewResponses(reviews, identityUsers(identity))}}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *BookReviewsInput) (*ReviewsOutput, error) {
	list, err := s.services.Reviews.ListByBook(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	return &ReviewsOutput{Body: ReviewsResponse{Reviews: toReviewResponses(list.Reviews, list.Authors)}}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.Create(ctx, identity, input.BookID, service.CreateReviewRequest{
		Rating:     input.Body.Rating,
		ReviewText: input.Body.ReviewText,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: toReviewResponse(review, reviewAuthor(identity))}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.Update(ctx, identity, input.ID, domain.ReviewPatch{
		Rating:     input.Body.Rating,
		ReviewText: input.Body.ReviewText,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: toReviewResponse(review, reviewAuthor(identity))}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reviews.Delete(ctx, identity, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageBody{Message: msgReviewDeleted}}, nil
}

// reviewAuthor is the users map for a review the caller just wrote. Review
// authors carry only ID and name, whichever endpoint returns them.
func reviewAuthor(identity domain.AuthenticatedIdentity) map[string]*domain.User {
	return singleUser(&domain.User{Record: domain.Record{ID: identity.UserID}, Name: identity.Name})
}
