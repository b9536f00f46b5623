package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/service"
)

const msgBookDeleted = "Book and its reviews deleted"

func (s *Server) registerBookRoutes() {
	register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "List books",
		Description: "Returns one page of the catalogue, five books per page, with optional search, genre filter and sort",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	register(s.api, huma.Operation{
		OperationID: "listMyBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/mine",
		Summary:     "List my books",
		Description: "Returns the books the caller added, newest first",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyBooks)

	register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title, author and description, ranked by relevance",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its reviews, newest first",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/books",
		Summary:       "Create book",
		Description:   "Adds a book owned by the caller",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/books/{id}",
		Summary:     "Update book",
		Description: "Updates title, author, description, genre or year of a book the caller owns",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book the caller owns together with all its reviews",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListBooksInput contains catalogue query parameters.
type ListBooksInput struct {
	Page   string `query:"page" doc:"1-based page number; invalid values mean page 1"`
	Search string `query:"search" doc:"Case-insensitive substring of title or author"`
	Genre  string `query:"genre" doc:"Exact genre"`
	Sort   string `query:"sort" doc:"year or rating, both descending; newest first otherwise"`
}

// PageMeta describes a page of results.
type PageMeta struct {
	Page       int `json:"page" doc:"Current page"`
	PerPage    int `json:"perPage" doc:"Page size"`
	Total      int `json:"total" doc:"Matching books"`
	TotalPages int `json:"totalPages" doc:"Number of pages"`
}

// BookListBody is a page of books. Books go in data and paging in meta.
type BookListBody struct {
	Books []BookResponse `json:"books"`
	Meta  PageMeta       `json:"meta"`
}

func (b BookListBody) envelopeData() any { return b.Books }
func (b BookListBody) envelopeMeta() any { return b.Meta }

// BookListOutput wraps a page of books for Huma.
type BookListOutput struct {
	Body BookListBody
}

// MyBooksInput carries the bearer token.
type MyBooksInput struct {
	Authorization string `header:"Authorization"`
}

// BooksResponse is a plain list of books.
type BooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books, newest first"`
}

// BooksOutput wraps a list of books for Huma.
type BooksOutput struct {
	Body BooksResponse
}

// SearchBooksInput contains full-text search parameters.
type SearchBooksInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" doc:"Maximum hits, default 10, at most 50"`
}

// SearchHitResponse is one search match.
type SearchHitResponse struct {
	Book  BookResponse `json:"book" doc:"Matching book"`
	Score float64      `json:"score" doc:"Relevance score"`
}

// SearchResponse holds search matches in relevance order.
type SearchResponse struct {
	Hits  []SearchHitResponse `json:"hits" doc:"Matches"`
	Total uint64              `json:"total" doc:"Total matches in the index"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// BookIDInput addresses a single book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailResponse is a book with its reviews.
type BookDetailResponse struct {
	Book    BookResponse     `json:"book" doc:"The book"`
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews, newest first"`
}

// BookDetailOutput wraps a book detail for Huma.
type BookDetailOutput struct {
	Body BookDetailResponse
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       string   `json:"title,omitempty" doc:"Title"`
	Author      string   `json:"author,omitempty" doc:"Author"`
	Description string   `json:"description,omitempty" doc:"Description, at least 5 characters; HTML is converted to markdown"`
	Genre       string   `json:"genre,omitempty" doc:"Genre"`
	Year        *int     `json:"year,omitempty" doc:"Publication year"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// UpdateBookRequest is the request body for updating a book. Fields other
// than these are ignored.
type UpdateBookRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       *string  `json:"title,omitempty" doc:"Title"`
	Author      *string  `json:"author,omitempty" doc:"Author"`
	Description *string  `json:"description,omitempty" doc:"Description"`
	Genre       *string  `json:"genre,omitempty" doc:"Genre"`
	Year        *int     `json:"year,omitempty" doc:"Publication year"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// DeleteBookInput addresses the book to delete.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	page, err := strconv.Atoi(strings.TrimSpace(input.Page))
	if err != nil || page < 1 {
		page = 1
	}

	list, err := s.services.Books.List(ctx, service.ListQuery{
		Page:   page,
		Search: input.Search,
		Genre:  input.Genre,
		Sort:   input.Sort,
	})
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: BookListBody{
		Books: toBookResponses(list.Items, list.Owners),
		Meta: PageMeta{
			Page:       list.Page.Page,
			PerPage:    list.PerPage,
			Total:      list.Total,
			TotalPages: list.TotalPages,
		},
	}}, nil
}

func (s *Server) handleListMyBooks(ctx context.Context, _ *MyBooksInput) (*BooksOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Books.Mine(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &BooksOutput{Body: BooksResponse{Books: toBookResponses(books, identityUsers(identity))}}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchOutput, error) {
	res, err := s.services.Books.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	books := make([]*domain.Book, len(res.Hits))
	for i, h := range res.Hits {
		books[i] = h.Book
	}
	owners, err := s.services.Auth.UsersByIDs(ctx, ownerIDs(books))
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = SearchHitResponse{Book: toBookResponse(h.Book, owners), Score: h.Score}
	}
	return &SearchOutput{Body: SearchResponse{Hits: hits, Total: res.Total}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	detail, err := s.services.Books.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: BookDetailResponse{
		Book:    toBookResponse(detail.Book, detail.Authors),
		Reviews: toReviewResponses(detail.Reviews, detail.Authors),
	}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.Create(ctx, identity, service.CreateBookRequest{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Description: input.Body.Description,
		Genre:       input.Body.Genre,
		Year:        input.Body.Year,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book, identityUsers(identity))}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.Update(ctx, identity, input.ID, domain.BookPatch{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Description: input.Body.Description,
		Genre:       input.Body.Genre,
		Year:        input.Body.Year,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book, identityUsers(identity))}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Books.Delete(ctx, identity, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageBody{Message: msgBookDeleted}}, nil
}

func ownerIDs(books []*domain.Book) []string {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.AddedBy
	}
	return ids
}

// identityUsers builds a users map from the caller's identity, enough to
// populate references to the caller.
func identityUsers(identity domain.AuthenticatedIdentity) map[string]*domain.User {
	u := &domain.User{Record: domain.Record{ID: identity.UserID}, Name: identity.Name, Email: identity.Email}
	return singleUser(u)
}
