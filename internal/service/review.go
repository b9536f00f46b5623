package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookerapp/booker-server/internal/domain"
	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/id"
	"github.com/bookerapp/booker-server/internal/normalize"
	"github.com/bookerapp/booker-server/internal/store"
	"github.com/bookerapp/booker-server/internal/validation"
)

const msgAlreadyReviewed = "You have already reviewed this book"

// ReviewService manages reviews. Every successful create, edit and delete
// is followed by a recompute of the book's rating summary.
type ReviewService struct {
	store     *store.Store
	access    *AccessControl
	ratings   *RatingAggregator
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a review service.
func NewReviewService(s *store.Store, access *AccessControl, ratings *RatingAggregator, v *validation.Validator, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: s, access: access, ratings: ratings, validator: v, logger: logger}
}

// CreateReviewRequest contains a new review.
type CreateReviewRequest struct {
	Rating     int    `json:"rating" validate:"gte=1,lte=5"`
	ReviewText string `json:"reviewText" validate:"required,min=3,max=5000"`
}

// ReviewList is a set of reviews with their authors.
type ReviewList struct {
	Reviews []*domain.Review
	Authors map[string]*domain.User
}

// Create adds identity's review of a book. A user may review a book once;
// the store enforces this with a unique (user, book) index, so concurrent
// duplicates also fail.
func (s *ReviewService) Create(ctx context.Context, identity domain.AuthenticatedIdentity, bookID string, req CreateReviewRequest) (*domain.Review, error) {
	req.ReviewText = normalize.ReviewText(req.ReviewText)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, err
	}

	existing, err := s.store.FindReviewByUserAndBook(ctx, identity.UserID, bookID)
	if err != nil && !errors.Is(err, store.ErrReviewNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainerrors.Duplicate(msgAlreadyReviewed)
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Record:     domain.Record{ID: reviewID},
		BookID:     bookID,
		UserID:     identity.UserID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrReviewExists) {
			return nil, domainerrors.Duplicate(msgAlreadyReviewed)
		}
		return nil, err
	}

	if err := s.recompute(ctx, bookID); err != nil {
		return nil, err
	}

	s.info("Review created", "review_id", review.ID, "book_id", bookID, "user_id", identity.UserID)
	return review, nil
}

// ListByBook returns a book's reviews, newest first. An unknown book has
// no reviews.
func (s *ReviewService) ListByBook(ctx context.Context, bookID string) (*ReviewList, error) {
	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reviews)
}

// Mine returns identity's reviews, newest first.
func (s *ReviewService) Mine(ctx context.Context, identity domain.AuthenticatedIdentity) ([]*domain.Review, error) {
	return s.store.ListReviewsByUser(ctx, identity.UserID)
}

// Update edits identity's review and recomputes the book rating.
func (s *ReviewService) Update(ctx context.Context, identity domain.AuthenticatedIdentity, reviewID string, patch domain.ReviewPatch) (*domain.Review, error) {
	if patch.ReviewText != nil {
		text := normalize.ReviewText(*patch.ReviewText)
		patch.ReviewText = &text
	}
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}

	if _, err := s.access.AuthorizeReview(ctx, identity, reviewID, ActionEdit); err != nil {
		return nil, err
	}

	review, err := s.store.UpdateReview(ctx, reviewID, func(r *domain.Review) error {
		if err := CheckReviewOwner(identity, r, ActionEdit); err != nil {
			return err
		}
		if patch.Apply(r) {
			r.Touch()
		}
		return nil
	})
	if errors.Is(err, store.ErrReviewNotFound) {
		return nil, domainerrors.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, review.BookID); err != nil {
		return nil, err
	}

	s.info("Review updated", "review_id", reviewID, "user_id", identity.UserID)
	return review, nil
}

// Delete removes identity's review and recomputes the book rating.
func (s *ReviewService) Delete(ctx context.Context, identity domain.AuthenticatedIdentity, reviewID string) error {
	review, err := s.access.AuthorizeReview(ctx, identity, reviewID, ActionDelete)
	if err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return err
	}

	if err := s.recompute(ctx, review.BookID); err != nil {
		return err
	}

	s.info("Review deleted", "review_id", reviewID, "book_id", review.BookID, "user_id", identity.UserID)
	return nil
}

// recompute refreshes the book rating after a committed review write. A
// recompute that keeps losing to concurrent ones is not reported: the
// review write stands and the winners cover it.
func (s *ReviewService) recompute(ctx context.Context, bookID string) error {
	_, err := s.ratings.Recompute(ctx, bookID)
	if errors.Is(err, store.ErrWriteConflict) {
		return nil
	}
	return err
}

func (s *ReviewService) withAuthors(ctx context.Context, reviews []*domain.Review) (*ReviewList, error) {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.UserID
	}
	authors, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &ReviewList{Reviews: reviews, Authors: authors}, nil
}

func (s *ReviewService) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
