package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")

	book := ts.createBook(t, ada.Token, "Dune", 1965)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 1965, book.Year)
	assert.Zero(t, book.AverageRating)
	assert.Zero(t, book.ReviewsCount)
	assert.Equal(t, ada.ID, book.AddedBy.ID)
	assert.Equal(t, "ada", book.AddedBy.Name)
}

func TestCreateBook_RequiresAuthAndValidates(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")

	resp := ts.api.Post("/api/books", map[string]any{"title": "Dune"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/books", bearer(ada.Token), map[string]any{"title": "Dune", "description": "tiny"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Error)
	for _, field := range []string{"author", "genre", "description", "year"} {
		assert.Contains(t, env.Details, field)
	}
}

func TestCreateBook_IgnoresClientRatingAndOwner(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")

	resp := ts.api.Post("/api/books", bearer(ada.Token), map[string]any{
		"title": "Dune", "author": "Frank Herbert", "description": "Spice and sand.",
		"genre": "SciFi", "year": 1965,
		"averageRating": 5, "reviewsCount": 99, "addedBy": "someone-else",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	book := decodeEnvelope[BookResponse](t, resp).Data
	assert.Zero(t, book.AverageRating)
	assert.Zero(t, book.ReviewsCount)
	assert.Equal(t, ada.ID, book.AddedBy.ID)
}

func TestListBooks_PaginatesByFive(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	for i := range 12 {
		ts.createBook(t, ada.Token, fmt.Sprintf("Book %02d", i), 1950+i)
	}

	tests := []struct {
		query     string
		wantItems int
		wantPage  int
	}{
		{query: "", wantItems: 5, wantPage: 1},
		{query: "?page=2", wantItems: 5, wantPage: 2},
		{query: "?page=3", wantItems: 2, wantPage: 3},
		{query: "?page=4", wantItems: 0, wantPage: 4},
		{query: "?page=abc", wantItems: 5, wantPage: 1},
		{query: "?page=-2", wantItems: 5, wantPage: 1},
	}

	for _, tt := range tests {
		t.Run("page"+tt.query, func(t *testing.T) {
			resp := ts.api.Get("/api/books" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			env := decodeEnvelope[[]BookResponse](t, resp)
			assert.True(t, env.Success)
			assert.Len(t, env.Data, tt.wantItems)
			require.NotNil(t, env.Meta)
			assert.Equal(t, tt.wantPage, env.Meta.Page)
			assert.Equal(t, 5, env.Meta.PerPage)
			assert.Equal(t, 12, env.Meta.Total)
			assert.Equal(t, 3, env.Meta.TotalPages)
		})
	}
}

func TestListBooks_FiltersAndSorts(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	bob := ts.signup(t, "bob")

	dune := ts.createBook(t, ada.Token, "Dune", 1965)
	resp := ts.api.Post("/api/books", bearer(ada.Token), map[string]any{
		"title": "The Hobbit", "author": "J.R.R. Tolkien", "description": "There and back again.",
		"genre": "Fantasy", "year": 1937,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	hobbit := decodeEnvelope[BookResponse](t, resp).Data

	ts.review(t, bob.Token, hobbit.ID, 5)
	ts.review(t, bob.Token, dune.ID, 2)

	ids := func(path string) []string {
		resp := ts.api.Get(path)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var out []string
		for _, b := range decodeEnvelope[[]BookResponse](t, resp).Data {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{hobbit.ID}, ids("/api/books?search=tolk"))
	assert.Equal(t, []string{dune.ID}, ids("/api/books?genre=SciFi"))
	assert.Equal(t, []string{hobbit.ID, dune.ID}, ids("/api/books?sort=rating"))
	assert.Equal(t, []string{dune.ID, hobbit.ID}, ids("/api/books?sort=year"))
	assert.Equal(t, []string{hobbit.ID, dune.ID}, ids("/api/books?sort=unknown"))
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	bob := ts.signup(t, "bob")
	dune := ts.createBook(t, ada.Token, "Dune", 1965)
	ts.review(t, ada.Token, dune.ID, 4)
	ts.review(t, bob.Token, dune.ID, 2)

	detail := ts.getBook(t, dune.ID)
	assert.Equal(t, "ada@example.com", detail.Book.AddedBy.Email)
	assert.Equal(t, 3.0, detail.Book.AverageRating)
	assert.Equal(t, 2, detail.Book.ReviewsCount)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "bob", detail.Reviews[0].User.Name)
	assert.Empty(t, detail.Reviews[0].User.Email)

	resp := ts.api.Get("/api/books/book-missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "NOT_FOUND", env.Error)
	assert.Equal(t, "Book not found", env.Message)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	bob := ts.signup(t, "bob")
	dune := ts.createBook(t, ada.Token, "Dune", 1965)

	resp := ts.api.Patch("/api/books/"+dune.ID, bearer(bob.Token), map[string]any{"title": "Stolen"})
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "Not authorized to update this book", decodeEnvelope[any](t, resp).Message)

	resp = ts.api.Patch("/api/books/book-missing", bearer(bob.Token), map[string]any{"title": "x"})
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Patch("/api/books/"+dune.ID, bearer(ada.Token), map[string]any{
		"title": "Dune Messiah", "year": 1969, "addedBy": bob.ID, "averageRating": 5,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeEnvelope[BookResponse](t, resp).Data
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, 1969, updated.Year)
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Equal(t, ada.ID, updated.AddedBy.ID)
	assert.Zero(t, updated.AverageRating)

	resp = ts.api.Patch("/api/books/"+dune.ID, bearer(ada.Token), map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteBook_Cascades(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	bob := ts.signup(t, "bob")
	dune := ts.createBook(t, ada.Token, "Dune", 1965)
	ts.review(t, ada.Token, dune.ID, 4)
	ts.review(t, bob.Token, dune.ID, 2)

	resp := ts.api.Delete("/api/books/"+dune.ID, bearer(bob.Token))
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "Not authorized to delete this book", decodeEnvelope[any](t, resp).Message)

	resp = ts.api.Delete("/api/books/"+dune.ID, bearer(ada.Token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env := decodeEnvelope[any](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "Book and its reviews deleted", env.Message)

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/books/"+dune.ID).Code)

	resp = ts.api.Get("/api/reviews/" + dune.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[ReviewsResponse](t, resp).Data.Reviews)

	resp = ts.api.Get("/api/reviews/mine", bearer(bob.Token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[ReviewsResponse](t, resp).Data.Reviews)
}

func TestListMyBooks(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	bob := ts.signup(t, "bob")
	ts.createBook(t, ada.Token, "Dune", 1965)
	ts.createBook(t, bob.Token, "Emma", 1815)

	resp := ts.api.Get("/api/books/mine", bearer(ada.Token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	books := decodeEnvelope[BooksResponse](t, resp).Data.Books
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)

	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/books/mine").Code)
}

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	ada := ts.signup(t, "ada")
	dune := ts.createBook(t, ada.Token, "Dune", 1965)
	ts.createBook(t, ada.Token, "Emma", 1815)

	resp := ts.api.Get("/api/books/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeEnvelope[SearchResponse](t, resp).Data
	require.Len(t, result.Hits, 1)
	assert.Equal(t, dune.ID, result.Hits[0].Book.ID)
	assert.Equal(t, "ada", result.Hits[0].Book.AddedBy.Name)

	resp = ts.api.Get("/api/books/search")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[SearchResponse](t, resp).Data.Hits)
}
