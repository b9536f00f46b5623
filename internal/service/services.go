// Package service implements the Booker business operations: accounts and
// tokens, the book catalogue, reviews, rating aggregation and ownership
// checks. Handlers call services; services call the store.
package service

import (
	"log/slog"

	"github.com/bookerapp/booker-server/internal/auth"
	"github.com/bookerapp/booker-server/internal/store"
	"github.com/bookerapp/booker-server/internal/validation"
)

// Services bundles every service built over one store.
type Services struct {
	Auth    *AuthService
	Books   *BookService
	Reviews *ReviewService
	Ratings *RatingAggregator
	Access  *AccessControl
}

// New wires the services. searcher may be nil.
func New(s *store.Store, tokens auth.TokenIssuer, searcher BookSearcher, logger *slog.Logger) *Services {
	v := validation.New()
	access := NewAccessControl(s)
	ratings := NewRatingAggregator(s, logger)

	return &Services{
		Auth:    NewAuthService(s, tokens, v, logger),
		Books:   NewBookService(s, access, searcher, v, logger),
		Reviews: NewReviewService(s, access, ratings, v, logger),
		Ratings: ratings,
		Access:  access,
	}
}
