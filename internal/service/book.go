package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookerapp/booker-server/internal/domain"
	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/id"
	"github.com/bookerapp/booker-server/internal/normalize"
	"github.com/bookerapp/booker-server/internal/search"
	"github.com/bookerapp/booker-server/internal/store"
	"github.com/bookerapp/booker-server/internal/validation"
)

// BookSearcher runs full-text queries over the catalogue.
type BookSearcher interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// BookService manages the catalogue.
type BookService struct {
	store     *store.Store
	access    *AccessControl
	searcher  BookSearcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a book service. searcher may be nil, in which case
// Search reports an internal error.
func NewBookService(s *store.Store, access *AccessControl, searcher BookSearcher, v *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{store: s, access: access, searcher: searcher, validator: v, logger: logger}
}

// CreateBookRequest contains the fields of a new book.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=300"`
	Author      string `json:"author" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,min=5,max=10000"`
	Genre       string `json:"genre" validate:"required,min=1,max=100"`
	Year        *int   `json:"year" validate:"required,gte=0,lte=9999"`
}

// ListQuery selects one page of the catalogue.
type ListQuery struct {
	Page   int
	Search string
	Genre  string
	Sort   string
}

// BookList is one catalogue page with the owners of its books.
type BookList struct {
	store.Page[*domain.Book]
	Owners map[string]*domain.User
}

// BookDetail is a book with its owner and its reviews, newest first.
type BookDetail struct {
	Book    *domain.Book
	Owner   *domain.User
	Reviews []*domain.Review
	// Authors maps review UserIDs to users.
	Authors map[string]*domain.User
}

// SearchHit is one full-text match.
type SearchHit struct {
	Book  *domain.Book
	Score float64
}

// SearchResult holds full-text matches in relevance order.
type SearchResult struct {
	Hits  []SearchHit
	Total uint64
}

// Create adds a book owned by identity. Rating fields start at zero.
func (s *BookService) Create(ctx context.Context, identity domain.AuthenticatedIdentity, req CreateBookRequest) (*domain.Book, error) {
	req.Title = normalize.Text(req.Title)
	req.Author = normalize.Text(req.Author)
	req.Genre = normalize.Text(req.Genre)
	req.Description = normalize.Description(req.Description)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Record:      domain.Record{ID: bookID},
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        *req.Year,
		AddedBy:     identity.UserID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	s.info("Book created", "book_id", book.ID, "user_id", identity.UserID)
	return book, nil
}

// Get returns a book with its owner and reviews.
func (s *BookService) Get(ctx context.Context, bookID string) (*BookDetail, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrBookNotFound) {
		return nil, domainerrors.NotFound(msgBookNotFound)
	}
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(reviews)+1)
	ids = append(ids, book.AddedBy)
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &BookDetail{Book: book, Owner: users[book.AddedBy], Reviews: reviews, Authors: users}, nil
}

// List returns one page of the catalogue, five books per page.
func (s *BookService) List(ctx context.Context, q ListQuery) (*BookList, error) {
	page, err := s.store.ListBooks(ctx, store.BookQuery{
		Search:     q.Search,
		Genre:      strings.TrimSpace(q.Genre),
		Sort:       store.ParseBookSort(q.Sort),
		PageParams: store.PageParams{Page: q.Page, PerPage: store.DefaultPerPage},
	})
	if err != nil {
		return nil, err
	}

	owners, err := s.ownersOf(ctx, page.Items)
	if err != nil {
		return nil, err
	}
	return &BookList{Page: page, Owners: owners}, nil
}

// Mine returns the books identity added, newest first.
func (s *BookService) Mine(ctx context.Context, identity domain.AuthenticatedIdentity) ([]*domain.Book, error) {
	return s.store.ListBooksByOwner(ctx, identity.UserID)
}

// Update applies patch to a book owned by identity. Only the patch's
// whitelisted fields can change; the owner and rating summary never do.
func (s *BookService) Update(ctx context.Context, identity domain.AuthenticatedIdentity, bookID string, patch domain.BookPatch) (*domain.Book, error) {
	normalize.BookPatch(&patch)
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}

	if _, err := s.access.AuthorizeBook(ctx, identity, bookID, ActionUpdate); err != nil {
		return nil, err
	}

	book, err := s.store.UpdateBook(ctx, bookID, func(b *domain.Book) error {
		if err := CheckBookOwner(identity, b, ActionUpdate); err != nil {
			return err
		}
		if patch.Apply(b) {
			b.Touch()
		}
		return nil
	})
	if errors.Is(err, store.ErrBookNotFound) {
		return nil, domainerrors.NotFound(msgBookNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.info("Book updated", "book_id", bookID, "user_id", identity.UserID)
	return book, nil
}

// Delete removes a book owned by identity together with all its reviews.
//
// The two steps are not atomic. Reviews go first so no review is left
// pointing at a missing book; if the book delete then fails the error is
// returned and the book remains, without reviews.
func (s *BookService) Delete(ctx context.Context, identity domain.AuthenticatedIdentity, bookID string) error {
	if _, err := s.access.AuthorizeBook(ctx, identity, bookID, ActionDelete); err != nil {
		return err
	}

	removed, err := s.store.DeleteReviewsByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("delete book reviews: %w", err)
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book after removing %d reviews: %w", removed, err)
	}

	s.info("Book deleted", "book_id", bookID, "user_id", identity.UserID, "reviews_removed", removed)
	return nil
}

// Search runs a relevance-ranked full-text query. Hits whose book has
// since been deleted are dropped.
func (s *BookService) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if s.searcher == nil {
		return nil, domainerrors.Internal("search is not available")
	}

	res, err := s.searcher.Search(ctx, search.Params{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	out := &SearchResult{Hits: make([]SearchHit, 0, len(res.Hits)), Total: res.Total}
	for _, h := range res.Hits {
		book, err := s.store.GetBook(ctx, h.ID)
		if errors.Is(err, store.ErrBookNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Hits = append(out.Hits, SearchHit{Book: book, Score: h.Score})
	}
	return out, nil
}

func (s *BookService) ownersOf(ctx context.Context, books []*domain.Book) (map[string]*domain.User, error) {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.AddedBy
	}
	return s.store.GetUsersByIDs(ctx, ids)
}

func (s *BookService) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
