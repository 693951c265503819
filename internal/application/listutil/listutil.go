// Package listutil parses list-view query parameters (page, sort, search,
// named filters) and computes pagination metadata. Every admin screen goes
// through these helpers instead of hand-rolling its own parsing.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
)

// DefaultPerPage is the page size used when the request names none.
const DefaultPerPage = 10

// PerPageOptions are the page sizes the screens offer. Anything else in
// the query string falls back to DefaultPerPage.
var PerPageOptions = []int{10, 20, 50, 100}

// PageParams holds the page/per_page pair from the query string.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int // one of PerPageOptions
}

// SortParams holds the sort/dir pair from the query string.
type SortParams struct {
	Sort string // validated column name, or empty
	Dir  string // "asc" or "desc", never anything else
}

// FilterParams holds free-text search plus the recognised named filters.
type FilterParams struct {
	Search  string            // value of the q parameter
	Filters map[string]string // exact-match filters (e.g. status=unmatched)
}

// ListParams bundles everything a list screen needs from the query string.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// ParseListParams parses page, sort and filter parameters in one call.
func ParseListParams(q url.Values, allowedSortCols []string, filterKeys []string) ListParams {
	return ListParams{
		PageParams:   ParsePageParams(q),
		SortParams:   ParseSortParams(q, allowedSortCols),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// ParsePageParams extracts page and per_page from URL query values.
// POST: Page >= 1; PerPage is one of PerPageOptions
func ParsePageParams(q url.Values) PageParams {
	pp := PageParams{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		pp.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		pp.PerPage = n
	}
	return pp
}

// ParseSortParams extracts sort and dir from URL query values.
// PRE: allowedColumns lists the sortable column names
// POST: Dir is always "asc" or "desc"; Sort is empty if not allowed
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	sp := SortParams{Sort: q.Get("sort"), Dir: "asc"}
	if !slices.Contains(allowedColumns, sp.Sort) {
		sp.Sort = ""
	}
	if q.Get("dir") == "desc" {
		sp.Dir = "desc"
	}
	return sp
}

// ParseFilterParams extracts search and named filters from URL query values.
// PRE: filterKeys names the filter parameters the screen accepts
// POST: Filters holds only recognised keys with non-empty values
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	filters := make(map[string]string, len(filterKeys))
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}
	return FilterParams{Search: q.Get("q"), Filters: filters}
}

// PageInfo is what templates consume to render pagination controls.
type PageInfo struct {
	Page       int // clamped current page
	PerPage    int
	Total      int // rows matching the active filters
	TotalPages int // at least 1, even for an empty result
}

// NewPageInfo derives pagination metadata from a row count.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped into [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset is the SQL OFFSET that selects the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page,
// or 0 when the result set is empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number shown on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// PageNumbers returns at most 5 page numbers centered on the current page
// for rendering pagination controls.
func (p PageInfo) PageNumbers() []int {
	const window = 5
	first := max(p.Page-window/2, 1)
	last := min(first+window-1, p.TotalPages)
	first = max(last-window+1, 1)

	pages := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		pages = append(pages, n)
	}
	return pages
}

// ShowPagination reports whether pagination controls should be displayed.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}
