package pagination

import "strconv"

// PostsPerPage is the fixed page size used by every listing view.
const PostsPerPage = 10

// Page is one fixed-size, 1-indexed slice of an ordered collection plus the
// navigation metadata the views render.
type Page[T any] struct {
	Items       []T  `json:"items"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	Number      int  `json:"number"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// ParsePage interprets a raw "page" query value. Anything absent, unparseable
// or below 1 collapses to the first page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Paginate slices an already-ordered collection into its requested page.
// A page number past the end clamps to the last page rather than failing,
// and an empty collection still yields a single empty page. Pure function,
// no hidden state.
func Paginate[T any](items []T, page int) Page[T] {
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + PostsPerPage - 1) / PostsPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PostsPerPage
	end := start + PostsPerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:       items[start:end],
		TotalItems:  total,
		TotalPages:  totalPages,
		Number:      page,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}
