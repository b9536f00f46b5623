package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/text/cases"

	"github.com/bookerapp/booker-server/internal/domain"
)

// BookSort selects the catalogue ordering.
type BookSort string

// Supported orderings. Anything else sorts like SortNewest.
const (
	SortNewest BookSort = ""
	SortYear   BookSort = "year"
	SortRating BookSort = "rating"
)

// ParseBookSort maps a query value to a BookSort.
func ParseBookSort(v string) BookSort {
	switch BookSort(strings.ToLower(strings.TrimSpace(v))) {
	case SortYear:
		return SortYear
	case SortRating:
		return SortRating
	default:
		return SortNewest
	}
}

// BookQuery filters, orders and pages the catalogue.
type BookQuery struct {
	// Search is a case-insensitive substring matched against title OR author.
	Search string
	// Genre must match exactly when set.
	Genre string
	Sort  BookSort
	PageParams
}

// CreateBook stores a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := s.Books.Create(ctx, book.ID, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	s.indexBook(ctx, book)
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.Books.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// UpdateBook applies fn to the stored book inside one transaction and
// returns the result. Errors returned by fn abort the update unchanged.
func (s *Store) UpdateBook(ctx context.Context, id string, fn func(*domain.Book) error) (*domain.Book, error) {
	book, err := s.Books.Mutate(ctx, id, fn)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	s.indexBook(ctx, book)
	return book, nil
}

// RecomputeRatingSummary scans the book's reviews and writes summarize's
// result onto the book in one transaction. The scan and the book read are
// both conflict-checked at commit, so of any set of overlapping recomputes
// the one that commits last has seen every review committed before it
// started; losers are replayed.
func (s *Store) RecomputeRatingSummary(ctx context.Context, id string, summarize func([]*domain.Review) domain.RatingSummary) (*domain.Book, error) {
	var book *domain.Book
	err := s.update(ctx, func(txn *badger.Txn) error {
		reviews, err := s.Reviews.listBySetIndexTxn(ctx, txn, "book", id)
		if err != nil {
			return err
		}
		summary := summarize(reviews)

		book, err = s.Books.mutateTxn(txn, id, func(b *domain.Book) error {
			b.RatingSummary = summary
			return nil
		})
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recompute rating summary: %w", err)
	}
	s.indexBook(ctx, book)
	return book, nil
}

// DeleteBook removes a book document. Reviews are not touched; callers
// delete them first.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := s.Books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if err := s.searchIndexer.DeleteBook(ctx, id); err != nil {
		s.warn("Failed to remove book from search index", "book_id", id, "error", err)
	}
	return nil
}

// ListBooks returns one page of the catalogue matching q.
//
// Ordering is total: after the selected key, ties fall back to newest
// first and then to ID, so paging is stable.
func (s *Store) ListBooks(ctx context.Context, q BookQuery) (Page[*domain.Book], error) {
	search := cases.Fold().String(strings.TrimSpace(q.Search))

	var matched []*domain.Book
	for book, err := range s.Books.List(ctx) {
		if err != nil {
			return Page[*domain.Book]{}, fmt.Errorf("list books: %w", err)
		}
		if q.Genre != "" && book.Genre != q.Genre {
			continue
		}
		if search != "" && !containsFolded(book.Title, search) && !containsFolded(book.Author, search) {
			continue
		}
		matched = append(matched, book)
	}

	SortBooks(matched, q.Sort)
	return Paginate(matched, q.PageParams), nil
}

// ListBooksByOwner returns the books a user added, newest first.
func (s *Store) ListBooksByOwner(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.Books.ListBySetIndex(ctx, "owner", userID)
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	SortBooks(books, SortNewest)
	return books, nil
}

// CountBooks returns the number of stored books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	n := 0
	for _, err := range s.Books.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("count books: %w", err)
		}
		n++
	}
	return n, nil
}

// SortBooks orders books in place by key, with newest-first then ID as
// tie-breakers.
func SortBooks(books []*domain.Book, key BookSort) {
	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		switch key {
		case SortYear:
			if c := b.Year - a.Year; c != 0 {
				return c
			}
		case SortRating:
			if a.AverageRating != b.AverageRating {
				if a.AverageRating > b.AverageRating {
					return -1
				}
				return 1
			}
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func containsFolded(s, foldedNeedle string) bool {
	return strings.Contains(cases.Fold().String(s), foldedNeedle)
}

func (s *Store) indexBook(ctx context.Context, book *domain.Book) {
	if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
		s.warn("Failed to index book", "book_id", book.ID, "error", err)
	}
}
