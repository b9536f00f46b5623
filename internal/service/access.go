package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookerapp/booker-server/internal/domain"
	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/store"
)

// Actions named in Forbidden messages.
const (
	ActionUpdate = "update"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Client-visible messages; existing clients match on them.
const (
	msgBookNotFound   = "Book not found"
	msgReviewNotFound = "Review not found"
)

// AccessControl decides whether an identity may mutate a book or review.
// Existence is checked before ownership: a missing resource is NotFound
// whoever asks.
type AccessControl struct {
	store *store.Store
}

// NewAccessControl creates an AccessControl over s.
func NewAccessControl(s *store.Store) *AccessControl {
	return &AccessControl{store: s}
}

// AuthorizeBook loads the book and checks that identity owns it.
func (a *AccessControl) AuthorizeBook(ctx context.Context, identity domain.AuthenticatedIdentity, bookID, action string) (*domain.Book, error) {
	book, err := a.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrBookNotFound) {
		return nil, domainerrors.NotFound(msgBookNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}

	if err := CheckBookOwner(identity, book, action); err != nil {
		return nil, err
	}
	return book, nil
}

// AuthorizeReview loads the review and checks that identity wrote it.
func (a *AccessControl) AuthorizeReview(ctx context.Context, identity domain.AuthenticatedIdentity, reviewID, action string) (*domain.Review, error) {
	review, err := a.store.GetReview(ctx, reviewID)
	if errors.Is(err, store.ErrReviewNotFound) {
		return nil, domainerrors.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}

	if err := CheckReviewOwner(identity, review, action); err != nil {
		return nil, err
	}
	return review, nil
}

// CheckBookOwner returns Forbidden unless identity added book.
func CheckBookOwner(identity domain.AuthenticatedIdentity, book *domain.Book, action string) error {
	if !identity.Owns(book.AddedBy) {
		return domainerrors.Forbiddenf("Not authorized to %s this book", action)
	}
	return nil
}

// CheckReviewOwner returns Forbidden unless identity wrote review.
func CheckReviewOwner(identity domain.AuthenticatedIdentity, review *domain.Review, action string) error {
	if !identity.Owns(review.UserID) {
		return domainerrors.Forbiddenf("Not authorized to %s this review", action)
	}
	return nil
}
