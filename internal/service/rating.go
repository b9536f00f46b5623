package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/store"
)

// RatingAggregator keeps a book's rating summary equal to the mean and
// count of its reviews.
//
// Every recompute is a full scan and overwrite, never an incremental
// adjustment, so concurrent recomputes converge once the last writer
// finishes.
type RatingAggregator struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRatingAggregator creates a RatingAggregator.
func NewRatingAggregator(s *store.Store, logger *slog.Logger) *RatingAggregator {
	return &RatingAggregator{store: s, logger: logger}
}

// Recompute rescans the book's reviews and writes the summary onto the
// book. It must run after the triggering review write has committed.
//
// The scan and the write share one transaction that is replayed when a
// concurrent recompute or book edit commits first, so overlapping review
// writes on one book always leave the summary matching the stored reviews.
// A book deleted in the meantime has nothing to update; the zero summary is
// returned without error.
func (r *RatingAggregator) Recompute(ctx context.Context, bookID string) (domain.RatingSummary, error) {
	book, err := r.store.RecomputeRatingSummary(ctx, bookID, summarizeReviews)
	if errors.Is(err, store.ErrBookNotFound) {
		r.debug("Skipped rating recompute for deleted book", "book_id", bookID)
		return domain.RatingSummary{}, nil
	}
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Rating recompute failed", "book_id", bookID, "error", err)
		}
		return domain.RatingSummary{}, fmt.Errorf("recompute rating: %w", err)
	}

	r.debug("Recomputed book rating",
		"book_id", bookID,
		"average_rating", book.AverageRating,
		"reviews_count", book.ReviewsCount,
	)
	return book.RatingSummary, nil
}

func summarizeReviews(reviews []*domain.Review) domain.RatingSummary {
	ratings := make([]int, len(reviews))
	for i, rv := range reviews {
		ratings[i] = rv.Rating
	}
	return domain.SummarizeRatings(ratings)
}

func (r *RatingAggregator) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
