package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookerapp/booker-server/internal/domain"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "trims", input: "  Dune  ", want: "Dune"},
		{name: "collapses inner whitespace", input: "Frank \t\n Herbert", want: "Frank Herbert"},
		{name: "composes accents", input: "Café", want: "Café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "", want: false},
		{input: "A plain description.", want: false},
		{input: "Use <stdin> for input and 2 > 1 is true", want: false},
		{input: "<p>A paragraph.</p>", want: true},
		{input: "Line one<br/>Line two", want: true},
		{input: "<STRONG>Loud</STRONG>", want: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsHTML(tt.input), tt.input)
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "A desert planet.", Description("  A desert planet.  "))
	assert.Equal(t, "Line one\nLine two", Description("Line one\nLine two"))
	assert.Equal(t, "A **desert** planet.", Description("<p>A <strong>desert</strong> planet.</p>"))
}

func TestBookAndPatch(t *testing.T) {
	b := &domain.Book{Title: " Dune ", Author: "Frank  Herbert", Genre: " SciFi", Description: "<p>Spice</p>"}
	Book(b)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, "SciFi", b.Genre)
	assert.Equal(t, "Spice", b.Description)

	title := "  Dune Messiah "
	p := &domain.BookPatch{Title: &title}
	BookPatch(p)
	assert.Equal(t, "Dune Messiah", *p.Title)
	assert.Nil(t, p.Author)
}

func TestReviewText(t *testing.T) {
	assert.Equal(t, "Great", ReviewText("  Great \n"))
}
