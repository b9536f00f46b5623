package domain

import "math"

// RatingSummary is the derived (averageRating, reviewsCount) pair stored on a book.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	ReviewsCount  int     `json:"reviewsCount"`
}

// SummarizeRatings computes the summary for a set of ratings: the mean
// rounded to two decimals and the count, or zeroes for an empty set.
func SummarizeRatings(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))

	return RatingSummary{
		AverageRating: math.Round(mean*100) / 100,
		ReviewsCount:  len(ratings),
	}
}

// Book is a catalogue entry. AddedBy references the owning user.
type Book struct {
	Record
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
	AddedBy     string `json:"addedBy"`
	RatingSummary
}

// BookPatch is a partial update. Nil fields are left untouched; only the
// fields listed here can ever change through an update.
type BookPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Author      *string `json:"author,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=5,max=10000"`
	Genre       *string `json:"genre,omitempty" validate:"omitempty,min=1,max=100"`
	Year        *int    `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
}

// IsEmpty reports whether the patch sets no field.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Description == nil && p.Genre == nil && p.Year == nil
}

// Apply copies the present fields onto b and reports whether anything changed.
func (p BookPatch) Apply(b *Book) bool {
	changed := false
	changed = setIfPresent(&b.Title, p.Title) || changed
	changed = setIfPresent(&b.Author, p.Author) || changed
	changed = setIfPresent(&b.Description, p.Description) || changed
	changed = setIfPresent(&b.Genre, p.Genre) || changed
	changed = setIfPresent(&b.Year, p.Year) || changed
	return changed
}

func setIfPresent[T comparable](dst *T, src *T) bool {
	if src == nil || *dst == *src {
		return false
	}
	*dst = *src
	return true
}
