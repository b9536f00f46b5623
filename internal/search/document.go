// Package search provides full-text search over the book catalogue using
// Bleve. It complements the store's substring filter with stemmed,
// relevance-ranked matching on title, author and description.
package search

import (
	"github.com/bookerapp/booker-server/internal/domain"
)

// BookDocument is the shape of a book inside the Bleve index.
type BookDocument struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description,omitempty"`
	Genre       string  `json:"genre"`
	Year        int     `json:"year"`
	Rating      float64 `json:"rating"`
	CreatedAt   int64   `json:"created_at"`
}

// BookToDocument converts a book into its indexed form.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       b.Genre,
		Year:        b.Year,
		Rating:      b.AverageRating,
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field map Bleve indexes. Field names
// match the mapping in buildIndexMapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"genre":      d.Genre,
		"year":       float64(d.Year),
		"rating":     d.Rating,
		"created_at": float64(d.CreatedAt),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	return m
}
