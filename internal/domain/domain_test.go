package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestSummarizeRatings(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    RatingSummary
	}{
		{name: "empty resets to zero", ratings: nil, want: RatingSummary{}},
		{name: "single", ratings: []int{4}, want: RatingSummary{AverageRating: 4, ReviewsCount: 1}},
		{name: "even mean", ratings: []int{4, 2}, want: RatingSummary{AverageRating: 3, ReviewsCount: 2}},
		{name: "rounds to two decimals", ratings: []int{5, 4, 4}, want: RatingSummary{AverageRating: 4.33, ReviewsCount: 3}},
		{name: "rounds half up", ratings: []int{1, 2, 2, 2, 2, 2, 2, 2}, want: RatingSummary{AverageRating: 1.88, ReviewsCount: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeRatings(tt.ratings))
		})
	}
}

func TestSummarizeRatings_Idempotent(t *testing.T) {
	ratings := []int{3, 5, 1}
	assert.Equal(t, SummarizeRatings(ratings), SummarizeRatings(ratings))
}

func TestBookPatch_Apply(t *testing.T) {
	book := Book{Title: "Dune", Author: "Frank Herbert", Year: 1965, AddedBy: "user-1"}

	changed := BookPatch{Title: ptr("Dune Messiah"), Year: ptr(1969)}.Apply(&book)

	assert.True(t, changed)
	assert.Equal(t, "Dune Messiah", book.Title)
	assert.Equal(t, 1969, book.Year)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, "user-1", book.AddedBy)
}

func TestBookPatch_ApplySameValues(t *testing.T) {
	book := Book{Title: "Dune"}

	assert.False(t, BookPatch{Title: ptr("Dune")}.Apply(&book))
	assert.False(t, BookPatch{}.Apply(&book))
	assert.True(t, BookPatch{}.IsEmpty())
}

func TestReviewPatch_Apply(t *testing.T) {
	review := Review{Rating: 3, ReviewText: "fine"}

	assert.True(t, ReviewPatch{Rating: ptr(5)}.Apply(&review))
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "fine", review.ReviewText)

	assert.True(t, ReviewPatch{ReviewText: ptr("great")}.Apply(&review))
	assert.False(t, ReviewPatch{Rating: ptr(5)}.Apply(&review))
	assert.False(t, ReviewPatch{}.Apply(&review))
}

func TestAuthenticatedIdentity_Owns(t *testing.T) {
	id := IdentityOf(&User{Record: Record{ID: "user-1"}, Name: "Ada"})

	assert.True(t, id.Owns("user-1"))
	assert.False(t, id.Owns("user-2"))
	assert.False(t, AuthenticatedIdentity{}.Owns(""))
}
