// Package normalize cleans user-supplied book and profile text before it is
// validated and stored.
package normalize

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/bookerapp/booker-server/internal/domain"
)

// htmlTagPattern detects common HTML tags such as <p>, <br/> or <b>.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

var whitespace = regexp.MustCompile(`\s+`)

// Text composes Unicode to NFC, trims the ends and collapses inner runs of
// whitespace to a single space.
func Text(s string) string {
	s = norm.NFC.String(s)
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Description converts HTML descriptions to Markdown. Plain text is only
// NFC-composed and trimmed; its line breaks are kept.
func Description(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

// Book normalizes every text field of b in place.
func Book(b *domain.Book) {
	b.Title = Text(b.Title)
	b.Author = Text(b.Author)
	b.Genre = Text(b.Genre)
	b.Description = Description(b.Description)
}

// BookPatch normalizes the fields present in p in place.
func BookPatch(p *domain.BookPatch) {
	apply(p.Title, Text)
	apply(p.Author, Text)
	apply(p.Genre, Text)
	apply(p.Description, Description)
}

// ReviewText trims review text.
func ReviewText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func apply(field *string, fn func(string) string) {
	if field != nil {
		*field = fn(*field)
	}
}
