package store

// DefaultPerPage is the catalogue page size.
const DefaultPerPage = 5

// PageParams selects one page of a result set. Pages are 1-indexed.
type PageParams struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to at least 1 and fills in the page size.
func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
}

// Offset returns the index of the first item on the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns ceil(total/perPage).
func (p PageParams) TotalPages(total int) int {
	if total <= 0 || p.PerPage <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}

// Page is one page of results plus the totals needed to render paging.
type Page[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Paginate slices items according to p. A page past the end yields an
// empty (non-nil) slice with the correct totals.
func Paginate[T any](items []T, p PageParams) Page[T] {
	p.Normalize()

	start := len(items)
	if p.Page-1 <= len(items)/p.PerPage {
		start = min(p.Offset(), len(items))
	}
	end := min(start+p.PerPage, len(items))

	page := make([]T, end-start)
	copy(page, items[start:end])

	return Page[T]{
		Items:      page,
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      len(items),
		TotalPages: p.TotalPages(len(items)),
	}
}
