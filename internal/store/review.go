package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bookerapp/booker-server/internal/domain"
)

func userBookKey(userID, bookID string) string {
	return userID + ":" + bookID
}

// CreateReview stores a new review. The (user, book) pair is guarded by a
// unique index written in the same transaction, so a concurrent duplicate
// fails with ErrReviewExists.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	if err := s.Reviews.Create(ctx, review.ID, review); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrReviewExists.WithCause(err)
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.Reviews.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// FindReviewByUserAndBook returns the user's review of a book, or ErrReviewNotFound.
func (s *Store) FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	review, err := s.Reviews.GetByIndex(ctx, "user_book", userBookKey(userID, bookID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return review, nil
}

// UpdateReview applies fn to the stored review inside one transaction.
func (s *Store) UpdateReview(ctx context.Context, id string, fn func(*domain.Review) error) (*domain.Review, error) {
	review, err := s.Reviews.Mutate(ctx, id, fn)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if err := s.Reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// ListReviewsByBook returns a book's reviews, newest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	reviews, err := s.Reviews.ListBySetIndex(ctx, "book", bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by book: %w", err)
	}
	sortReviewsNewest(reviews)
	return reviews, nil
}

// ListReviewsByUser returns a user's reviews, newest first.
func (s *Store) ListReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	reviews, err := s.Reviews.ListBySetIndex(ctx, "user", userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	sortReviewsNewest(reviews)
	return reviews, nil
}

// DeleteReviewsByBook removes every review of a book and returns the count.
func (s *Store) DeleteReviewsByBook(ctx context.Context, bookID string) (int, error) {
	n, err := s.Reviews.DeleteBySetIndex(ctx, "book", bookID)
	if err != nil {
		return n, fmt.Errorf("delete reviews by book: %w", err)
	}
	return n, nil
}

func sortReviewsNewest(reviews []*domain.Review) {
	slices.SortStableFunc(reviews, func(a, b *domain.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
