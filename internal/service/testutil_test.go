package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookerapp/booker-server/internal/auth"
	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/search"
	"github.com/bookerapp/booker-server/internal/store"
)

type testEnv struct {
	store    *store.Store
	index    *search.BookIndex
	services *Services
}

// setupServices creates services over a temporary store and search index.
func setupServices(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "booker-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	index, err := search.NewBookIndex(search.Options{DataPath: filepath.Join(tmpDir, "search")})
	require.NoError(t, err)
	s.SetSearchIndexer(index)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewPasetoIssuer(key, 15*time.Minute)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &testEnv{
		store:    s,
		index:    index,
		services: New(s, tokens, index, nil),
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func (e *testEnv) signup(t *testing.T, name string) domain.AuthenticatedIdentity {
	t.Helper()
	resp, err := e.services.Auth.Signup(context.Background(), SignupRequest{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "secret123",
	})
	require.NoError(t, err)
	return domain.IdentityOf(resp.User)
}

func (e *testEnv) createBook(t *testing.T, owner domain.AuthenticatedIdentity, title string) *domain.Book {
	t.Helper()
	book, err := e.services.Books.Create(context.Background(), owner, CreateBookRequest{
		Title:       title,
		Author:      "Frank Herbert",
		Description: "A desert planet and its spice.",
		Genre:       "SciFi",
		Year:        intPtr(1965),
	})
	require.NoError(t, err)
	return book
}

func (e *testEnv) review(t *testing.T, who domain.AuthenticatedIdentity, bookID string, rating int) *domain.Review {
	t.Helper()
	review, err := e.services.Reviews.Create(context.Background(), who, bookID, CreateReviewRequest{
		Rating:     rating,
		ReviewText: "Worth reading",
	})
	require.NoError(t, err)
	return review
}

func (e *testEnv) book(t *testing.T, id string) *domain.Book {
	t.Helper()
	book, err := e.store.GetBook(context.Background(), id)
	require.NoError(t, err)
	return book
}
