package api

import (
	"time"

	"github.com/bookerapp/booker-server/internal/domain"
)

// UserResponse is a user as exposed by the API. The password hash is never
// included.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Name      string    `json:"name" doc:"Display name"`
	Email     string    `json:"email" doc:"Email address"`
	CreatedAt time.Time `json:"createdAt" doc:"Registration time"`
}

// UserRef is a user reference populated inside books and reviews.
type UserRef struct {
	ID    string `json:"id" doc:"User ID"`
	Name  string `json:"name,omitempty" doc:"Display name"`
	Email string `json:"email,omitempty" doc:"Email address, on book owners only"`
}

// BookResponse is a catalogue entry with its owner populated.
type BookResponse struct {
	ID            string    `json:"id" doc:"Book ID"`
	Title         string    `json:"title" doc:"Title"`
	Author        string    `json:"author" doc:"Author"`
	Description   string    `json:"description" doc:"Description (markdown)"`
	Genre         string    `json:"genre" doc:"Genre"`
	Year          int       `json:"year" doc:"Publication year"`
	AverageRating float64   `json:"averageRating" doc:"Mean review rating, two decimals"`
	ReviewsCount  int       `json:"reviewsCount" doc:"Number of reviews"`
	AddedBy       UserRef   `json:"addedBy" doc:"User who added the book"`
	CreatedAt     time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updatedAt" doc:"Last update time"`
}

// ReviewResponse is a review with its author populated.
type ReviewResponse struct {
	ID         string    `json:"id" doc:"Review ID"`
	BookID     string    `json:"bookId" doc:"Reviewed book"`
	User       UserRef   `json:"user" doc:"Review author"`
	Rating     int       `json:"rating" doc:"Rating from 1 to 5"`
	ReviewText string    `json:"reviewText" doc:"Review text"`
	CreatedAt  time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt  time.Time `json:"updatedAt" doc:"Last update time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// ownerRef populates a book owner. A missing user still yields its ID.
func ownerRef(id string, users map[string]*domain.User) UserRef {
	if u, ok := users[id]; ok {
		return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return UserRef{ID: id}
}

// authorRef populates a review author with ID and name.
func authorRef(id string, users map[string]*domain.User) UserRef {
	if u, ok := users[id]; ok {
		return UserRef{ID: u.ID, Name: u.Name}
	}
	return UserRef{ID: id}
}

func toBookResponse(b *domain.Book, users map[string]*domain.User) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		Genre:         b.Genre,
		Year:          b.Year,
		AverageRating: b.AverageRating,
		ReviewsCount:  b.ReviewsCount,
		AddedBy:       ownerRef(b.AddedBy, users),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookResponses(books []*domain.Book, users map[string]*domain.User) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b, users)
	}
	return out
}

func toReviewResponse(r *domain.Review, users map[string]*domain.User) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		User:       authorRef(r.UserID, users),
		Rating:     r.Rating,
		ReviewText: r.ReviewText,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toReviewResponses(reviews []*domain.Review, users map[string]*domain.User) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewResponse(r, users)
	}
	return out
}

// singleUser is the users map for responses that only reference u.
func singleUser(u *domain.User) map[string]*domain.User {
	return map[string]*domain.User{u.ID: u}
}
