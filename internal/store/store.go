// Package store persists users, books and reviews as JSON documents in
// BadgerDB. Each collection is an Entity keyed by its own prefix.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookerapp/booker-server/internal/domain"
)

// maxCommitAttempts bounds how often a read-write transaction is replayed
// after losing to a concurrent commit.
const maxCommitAttempts = 32

const (
	userPrefix   = "user:"
	bookPrefix   = "book:"
	reviewPrefix = "review:"
)

// SearchIndexer keeps a full-text index in step with book writes.
// The store calls it after each committed write; failures are logged and
// never roll back the write.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op SearchIndexer for tests.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Set via SetSearchIndexer after creation: the search service is built
	// from the store, so it cannot be a constructor argument.
	searchIndexer SearchIndexer

	Users   *Entity[domain.User]
	Books   *Entity[domain.Book]
	Reviews *Entity[domain.Review]
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logger is too chatty.
	opts.SyncWrites = true       // Survive crashes without losing acknowledged writes.
	opts.CompactL0OnClose = true // Faster next startup.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}
	s.initUsers()
	s.initBooks()
	s.initReviews()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer installs the indexer notified of book writes.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// Ping performs a trivial read, used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, userPrefix).
		WithIndexTransform("email",
			func(u *domain.User) []string { return []string{normalizeEmail(u.Email)} },
			normalizeEmail,
		)
}

func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, bookPrefix).
		WithSetIndex("owner", func(b *domain.Book) string { return b.AddedBy })
}

func (s *Store) initReviews() {
	s.Reviews = NewEntity[domain.Review](s, reviewPrefix).
		WithIndex("user_book", func(r *domain.Review) []string {
			return []string{userBookKey(r.UserID, r.BookID)}
		}).
		WithSetIndex("book", func(r *domain.Review) string { return r.BookID }).
		WithSetIndex("user", func(r *domain.Review) string { return r.UserID })
}

// update runs fn in a read-write transaction, replaying it when the commit
// fails with badger.ErrConflict. fn must be safe to run more than once.
// Running out of attempts yields ErrWriteConflict.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if attempt == maxCommitAttempts {
			return ErrWriteConflict.WithCause(err)
		}

		// Jittered so replaying writers do not collide in lockstep.
		backoff := time.Duration(1+rand.IntN(attempt*500)) * time.Microsecond
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
