// Package listview implements the generalized filtered/paginated list
// controller behind every admin screen. One parameterized implementation
// owns filter state, debounced search, pagination, and loading/error flags,
// instead of each screen duplicating the fetch/paginate/debounce machinery.
package listview

import (
	"context"
	"sync"
	"time"

	"campdesk/internal/application/listutil"
)

// Query is the abstract list request handed to a Fetcher.
type Query struct {
	Filters map[string]string // equality predicates
	Search  string            // case-insensitive substring search
	Sort    string            // single sort column
	Dir     string            // "asc" or "desc"
	Page    int               // 1-indexed
	PerPage int
}

// Result carries one fetched page of rows plus the total matching count.
type Result[T any] struct {
	Rows       []T
	TotalCount int
}

// Fetcher retrieves one page of rows for a query. Implementations wrap a
// store's List+Count pair; they are never retried by the controller.
type Fetcher[T any] func(ctx context.Context, q Query) (Result[T], error)

// State is an immutable snapshot of the controller for rendering.
type State[T any] struct {
	Rows       []T
	TotalCount int
	PageInfo   listutil.PageInfo
	Search     string
	Filters    map[string]string
	Sort       string
	Dir        string
	IsLoading  bool
	Error      string // user-facing message from the last failed fetch
}

// DefaultDebounce is the delay applied to search/filter changes before a
// fetch fires, absorbing rapid keystrokes.
const DefaultDebounce = 500 * time.Millisecond

// Controller owns one logical list view: the current filter/search/page
// combination and the page of rows from the last successful fetch. A fetch
// in flight never corrupts previously rendered rows; results are fenced by
// a monotonic tag so a stale response can never overwrite a newer one.
type Controller[T any] struct {
	mu       sync.Mutex
	fetch    Fetcher[T]
	debounce time.Duration
	perPage  int
	timer    *time.Timer

	seq uint64 // tag of the most recently issued fetch

	filters    map[string]string
	search     string
	sort       string
	dir        string
	page       int
	rows       []T
	totalCount int
	fetched    bool // at least one successful fetch completed
	loading    bool
	errMsg     string
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithDebounce overrides the search/filter debounce delay. Zero makes
// search and filter changes fetch synchronously (server-side rendering).
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(c *Controller[T]) { c.debounce = d }
}

// WithPerPage overrides the fixed page size.
func WithPerPage[T any](n int) Option[T] {
	return func(c *Controller[T]) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithSort sets the initial sort column and direction.
func WithSort[T any](col, dir string) Option[T] {
	return func(c *Controller[T]) { c.sort, c.dir = col, dir }
}

// NewController creates a list controller around a fetcher.
func NewController[T any](fetch Fetcher[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		fetch:    fetch,
		debounce: DefaultDebounce,
		perPage:  listutil.DefaultPerPage,
		filters:  make(map[string]string),
		page:     1,
		dir:      "asc",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetFilter changes one equality filter, resets the page to 1, and
// schedules a debounced fetch. An empty value clears the filter.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) {
	c.mu.Lock()
	if value == "" {
		delete(c.filters, key)
	} else {
		c.filters[key] = value
	}
	c.page = 1
	c.mu.Unlock()
	c.schedule(ctx)
}

// SetSearch changes the search term, resets the page to 1, and schedules a
// debounced fetch.
func (c *Controller[T]) SetSearch(ctx context.Context, term string) {
	c.mu.Lock()
	c.search = term
	c.page = 1
	c.mu.Unlock()
	c.schedule(ctx)
}

// SetSort changes the sort column/direction and fetches immediately.
func (c *Controller[T]) SetSort(ctx context.Context, col, dir string) {
	c.mu.Lock()
	c.sort = col
	if dir == "desc" {
		c.dir = "desc"
	} else {
		c.dir = "asc"
	}
	c.mu.Unlock()
	c.fetchNow(ctx)
}

// SetPage navigates to a page and fetches immediately, without debounce.
// Navigating past the last known page, below 1, or to the current page is
// a no-op.
func (c *Controller[T]) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	if page < 1 || page == c.page {
		c.mu.Unlock()
		return
	}
	if c.fetched && page > listutil.NewPageInfo(1, c.perPage, c.totalCount).TotalPages {
		c.mu.Unlock()
		return
	}
	c.page = page
	c.mu.Unlock()
	c.fetchNow(ctx)
}

// Refresh re-issues the fetch for the current filter/search/page state.
// Used by manual refresh actions and after a successful mutation.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.fetchNow(ctx)
}

// PatchRow replaces the first row matching the predicate in place, for
// mutations known not to affect filter membership or sort order. Returns
// false if no row matched (callers then fall back to Refresh).
func (c *Controller[T]) PatchRow(match func(T) bool, replacement T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, row := range c.rows {
		if match(row) {
			c.rows[i] = replacement
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current view state. The returned rows are
// a copy; mutating them never affects the controller.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	filters := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		filters[k] = v
	}
	return State[T]{
		Rows:       rows,
		TotalCount: c.totalCount,
		PageInfo:   listutil.NewPageInfo(c.page, c.perPage, c.totalCount),
		Search:     c.search,
		Filters:    filters,
		Sort:       c.sort,
		Dir:        c.dir,
		IsLoading:  c.loading,
		Error:      c.errMsg,
	}
}

// schedule arms the debounce timer, replacing any pending fetch. With a
// zero debounce the fetch runs synchronously.
func (c *Controller[T]) schedule(ctx context.Context) {
	if c.debounce <= 0 {
		c.fetchNow(ctx)
		return
	}
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() { c.fetchNow(ctx) })
	c.mu.Unlock()
}

// fetchNow issues a tagged fetch for the current query state. The lock is
// released during the network call; the result is applied only if no newer
// fetch has been issued meanwhile.
func (c *Controller[T]) fetchNow(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	tag := c.seq
	c.loading = true
	c.errMsg = ""
	q := Query{
		Filters: make(map[string]string, len(c.filters)),
		Search:  c.search,
		Sort:    c.sort,
		Dir:     c.dir,
		Page:    c.page,
		PerPage: c.perPage,
	}
	for k, v := range c.filters {
		q.Filters[k] = v
	}
	c.mu.Unlock()

	res, err := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if tag != c.seq {
		// A newer fetch was issued while this one was in flight.
		return
	}
	c.loading = false
	if err != nil {
		// Prior rows stay untouched; only the error message changes.
		c.errMsg = err.Error()
		return
	}
	c.rows = res.Rows
	c.totalCount = res.TotalCount
	c.fetched = true
}
