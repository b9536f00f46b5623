package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/store"
)

func makeReview(id, userID, bookID string, rating int, offset time.Duration) *domain.Review {
	r := &domain.Review{
		BookID:     bookID,
		UserID:     userID,
		Rating:     rating,
		ReviewText: "Great read",
	}
	r.ID = id
	r.CreatedAt = baseTime.Add(offset)
	r.UpdatedAt = r.CreatedAt
	return r
}

func reviewIDs(reviews []*domain.Review) []string {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	return ids
}

func TestReview_OnePerUserAndBook(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateReview(ctx, makeReview("r1", "u1", "b1", 5, 0)))

	err := s.CreateReview(ctx, makeReview("r2", "u1", "b1", 3, time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrReviewExists)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	// Same user, different book; different user, same book.
	require.NoError(t, s.CreateReview(ctx, makeReview("r3", "u1", "b2", 4, 0)))
	require.NoError(t, s.CreateReview(ctx, makeReview("r4", "u2", "b1", 2, 0)))

	found, err := s.FindReviewByUserAndBook(ctx, "u2", "b1")
	require.NoError(t, err)
	assert.Equal(t, "r4", found.ID)

	_, err = s.FindReviewByUserAndBook(ctx, "u3", "b1")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestReview_ConcurrentDuplicatesLeaveOne(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.CreateReview(ctx, makeReview(fmt.Sprintf("r%d", i), "u1", "b1", 5, 0))
		}()
	}
	wg.Wait()

	reviews, err := s.ListReviewsByBook(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestReview_DeleteFreesTheSlot(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateReview(ctx, makeReview("r1", "u1", "b1", 5, 0)))
	require.NoError(t, s.DeleteReview(ctx, "r1"))

	_, err := s.GetReview(ctx, "r1")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	require.NoError(t, s.CreateReview(ctx, makeReview("r2", "u1", "b1", 1, 0)))
}

func TestReview_Update(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateReview(ctx, makeReview("r1", "u1", "b1", 5, 0)))

	updated, err := s.UpdateReview(ctx, "r1", func(r *domain.Review) error {
		r.Rating = 2
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	_, err = s.UpdateReview(ctx, "missing", func(*domain.Review) error { return nil })
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestReview_ListsAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateReview(ctx, makeReview("old", "u1", "b1", 5, 0)))
	require.NoError(t, s.CreateReview(ctx, makeReview("new", "u2", "b1", 4, time.Hour)))
	require.NoError(t, s.CreateReview(ctx, makeReview("other", "u1", "b2", 3, 2*time.Hour)))

	byBook, err := s.ListReviewsByBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, reviewIDs(byBook))

	byUser, err := s.ListReviewsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "old"}, reviewIDs(byUser))
}

func TestReview_DeleteByBook(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.CreateReview(ctx, makeReview("r1", "u1", "b1", 5, 0)))
	require.NoError(t, s.CreateReview(ctx, makeReview("r2", "u2", "b1", 4, 0)))
	require.NoError(t, s.CreateReview(ctx, makeReview("r3", "u1", "b2", 3, 0)))

	n, err := s.DeleteReviewsByBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.ListReviewsByBook(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, left)

	byUser, err := s.ListReviewsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r3"}, reviewIDs(byUser))

	n, err = s.DeleteReviewsByBook(ctx, "b1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
