package domain

// Review is one user's rating of one book. There is at most one review per
// (UserID, BookID).
type Review struct {
	Record
	BookID     string `json:"bookId"`
	UserID     string `json:"userId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

// ReviewPatch is a partial update of a review's rating and text.
type ReviewPatch struct {
	Rating     *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	ReviewText *string `json:"reviewText,omitempty" validate:"omitempty,min=3,max=5000"`
}

// IsEmpty reports whether the patch sets no field.
func (p ReviewPatch) IsEmpty() bool {
	return p.Rating == nil && p.ReviewText == nil
}

// Apply copies the present fields onto r and reports whether anything changed.
func (p ReviewPatch) Apply(r *Review) bool {
	ratingChanged := setIfPresent(&r.Rating, p.Rating)
	textChanged := setIfPresent(&r.ReviewText, p.ReviewText)
	return ratingChanged || textChanged
}
