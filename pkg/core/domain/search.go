package domain

// LinkFilter narrows a full-scan listing.
type LinkFilter struct {
	Tag    string
	Source string
	Search string
	Limit  int
	Offset int
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// NewPagination computes hasMore for a window over total items.
func NewPagination(total, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset < total-limit,
	}
}

// Page returns the [offset, offset+limit) window of items, clamped to bounds.
func Page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

type SearchQuery struct {
	Query  string
	Tag    string
	Source string
	Limit  int
	Offset int
}

type Highlights struct {
	Title       []string `json:"title"`
	Description []string `json:"description"`
	Tags        []string `json:"tags"`
}

type SearchResult struct {
	Slug        string     `json:"slug"`
	Target      string     `json:"target"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Tags        []string   `json:"tags"`
	Source      Source     `json:"source"`
	Score       int        `json:"score"`
	Highlights  Highlights `json:"highlights"`
}

type SearchResponse struct {
	Query      *string           `json:"query"`
	Filters    map[string]string `json:"filters"`
	Results    []SearchResult    `json:"results"`
	Pagination Pagination        `json:"pagination"`
}
