package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Search limits.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params configures a search query.
type Params struct {
	Query  string
	Genre  string // exact genre filter, optional
	Limit  int
	Offset int
}

// Result holds matching book IDs in relevance order.
type Result struct {
	Query  string
	Total  uint64
	TookMs int64
	Hits   []Hit
}

// Hit is one matching book.
type Hit struct {
	ID         string
	Score      float64
	Highlights map[string]string
}

// Search runs a relevance-ranked query. An empty query matches nothing.
func (s *BookIndex) Search(ctx context.Context, params Params) (*Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)
	params.Offset = max(params.Offset, 0)

	if params.Query == "" {
		return &Result{Hits: []Hit{}}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "-created_at"})
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildSearchQuery matches the text against title (boosted), author and
// description, with fuzzy and prefix matching on title for typos and
// partial input, then ANDs the genre filter.
func buildSearchQuery(params Params) query.Query {
	titleMatch := bleve.NewMatchQuery(params.Query)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	authorMatch := bleve.NewMatchQuery(params.Query)
	authorMatch.SetField("author")
	authorMatch.SetBoost(2.0)

	descMatch := bleve.NewMatchQuery(params.Query)
	descMatch.SetField("description")
	descMatch.SetBoost(0.5)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)

	text := []query.Query{titleMatch, authorMatch, descMatch, fuzzy}
	if len(params.Query) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		text = append(text, prefix)
	}

	textQuery := bleve.NewDisjunctionQuery(text...)
	if params.Genre == "" {
		return textQuery
	}

	genre := bleve.NewTermQuery(params.Genre)
	genre.SetField("genre")
	return bleve.NewConjunctionQuery(textQuery, genre)
}
