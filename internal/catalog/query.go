// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog drives the paginated, searchable book listing of one visitor.

A [Query] owns the filters (search text, category, page) and the last result.
Filter changes trigger fetches; search text is debounced so a burst of
keystrokes costs one request.

Ordering:

Every fetch takes a generation number. A response is applied only if no newer
fetch started meanwhile, so results always reflect the latest filters even when
the backend answers out of order. In-flight requests are not aborted.
*/
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/ctxutil"
	"github.com/taibuivan/bookstore/pkg/pagination"
	"github.com/taibuivan/bookstore/pkg/slug"
)

const (
	// DefaultPageSize is the number of books per catalog page.
	DefaultPageSize = constants.CatalogPageSize

	// DefaultDebounce is the quiet period after the last keystroke before searching.
	DefaultDebounce = 500 * time.Millisecond
)

// Gateway is the part of the backend API the catalog needs.
type Gateway interface {
	Books(ctx context.Context, filter backend.BookFilter) (backend.Page[backend.Book], error)
	Book(ctx context.Context, id int64) (backend.Book, error)
	Categories(ctx context.Context) ([]backend.Category, error)
}

// Options tunes a [Query]. Zero values select the defaults.
type Options struct {
	PageSize int
	Debounce time.Duration
}

// State is a copy of the listing as last fetched.
type State struct {
	Books         []backend.Book `json:"books"`
	TotalPages    int            `json:"totalPages"`
	TotalElements int64          `json:"totalElements"`
	Page          int            `json:"page"`
	SearchText    string         `json:"searchText"`
	CategoryID    *int64         `json:"categoryId"`
	Loading       bool           `json:"loading"`

	// Err is the failure of the last applied fetch. Zero books with a nil Err
	// is a valid empty result.
	Err     error  `json:"-"`
	Message string `json:"error,omitempty"`
}

// Window returns the pagination controls for the current page.
func (state State) Window() []pagination.Item {
	return pagination.Window(state.Page, state.TotalPages)
}

// Query is one visitor's catalog listing. It is safe for concurrent use.
type Query struct {
	gateway  Gateway
	logger   *slog.Logger
	pageSize int
	debounce time.Duration

	// ctx bounds debounced fetches, which run outside any request.
	ctx    context.Context
	cancel context.CancelFunc

	group singleflight.Group

	mu         sync.Mutex
	state      State
	categories []backend.Category
	generation uint64
	timer      *time.Timer
}

// New creates a query. Background work stops when parent is done or
// [Query.Close] is called.
func New(parent context.Context, gateway Gateway, options Options, logger *slog.Logger) *Query {
	if options.PageSize <= 0 {
		options.PageSize = DefaultPageSize
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(parent)
	return &Query{
		gateway:  gateway,
		logger:   logger,
		pageSize: options.PageSize,
		debounce: options.Debounce,
		ctx:      ctx,
		cancel:   cancel,
		state:    State{Books: []backend.Book{}},
	}
}

// # Filter Operations

// Load fetches the first page with the current filters and warms the
// category list. A category failure is logged, not returned.
func (query *Query) Load(ctx context.Context) error {
	if _, err := query.Categories(ctx); err != nil {
		query.logger.WarnContext(ctx, "categories unavailable", slog.String("error", err.Error()))
	}

	query.mu.Lock()
	query.state.Page = 0
	query.mu.Unlock()

	return query.fetch(ctx)
}

// SetSearchText stores text and restarts the debounce timer. When the timer
// fires the listing goes back to page 0 and is fetched once.
func (query *Query) SetSearchText(text string) {
	query.mu.Lock()
	defer query.mu.Unlock()

	query.state.SearchText = text
	if query.timer != nil {
		query.timer.Stop()
	}
	query.timer = time.AfterFunc(query.debounce, query.searchNow)
}

func (query *Query) searchNow() {
	if query.ctx.Err() != nil {
		return
	}

	query.mu.Lock()
	query.state.Page = 0
	query.mu.Unlock()

	if err := query.fetch(query.ctx); err != nil {
		query.logger.Warn("debounced search failed", slog.String("error", err.Error()))
	}
}

// SetCategory filters by category. Selecting the active category again, or
// passing nil, shows all categories.
func (query *Query) SetCategory(ctx context.Context, categoryID *int64) error {
	query.mu.Lock()
	current := query.state.CategoryID
	if categoryID == nil || (current != nil && *current == *categoryID) {
		query.state.CategoryID = nil
	} else {
		id := *categoryID
		query.state.CategoryID = &id
	}
	query.state.Page = 0
	query.mu.Unlock()

	return query.fetch(ctx)
}

// SetPage moves to page. Pages outside [0, TotalPages) are ignored. If the
// fetch fails the previous page number comes back, so Page keeps describing
// the books on display.
func (query *Query) SetPage(ctx context.Context, page int) error {
	query.mu.Lock()
	if page < 0 || page >= query.state.TotalPages {
		query.mu.Unlock()
		return nil
	}
	previous := query.state.Page
	query.state.Page = page
	query.mu.Unlock()

	err := query.fetch(ctx)
	if err != nil {
		query.mu.Lock()
		// Another filter change may have moved the page meanwhile.
		if query.state.Page == page {
			query.state.Page = previous
		}
		query.mu.Unlock()
	}
	return err
}

/*
SelectCategoryByName applies a deep-linked category.

Description: name is matched against the loaded categories ignoring case and
accents. Unlike [Query.SetCategory] this never toggles: following the same
link twice keeps the filter. Unknown names are ignored.

Returns:
  - bool: whether a category matched
  - error: category or book fetch failure
*/
func (query *Query) SelectCategoryByName(ctx context.Context, name string) (bool, error) {
	categories, err := query.Categories(ctx)
	if err != nil {
		return false, err
	}

	index := slices.IndexFunc(categories, func(category backend.Category) bool {
		return slug.Equal(category.Name, name)
	})
	if index < 0 {
		return false, nil
	}
	id := categories[index].ID

	query.mu.Lock()
	if current := query.state.CategoryID; current != nil && *current == id {
		query.mu.Unlock()
		return true, nil
	}
	query.state.CategoryID = &id
	query.state.Page = 0
	query.mu.Unlock()

	return true, query.fetch(ctx)
}

// # Reads

// State returns a copy of the listing.
func (query *Query) State() State {
	query.mu.Lock()
	defer query.mu.Unlock()

	state := query.state
	state.Books = slices.Clone(query.state.Books)
	if query.state.CategoryID != nil {
		id := *query.state.CategoryID
		state.CategoryID = &id
	}
	return state
}

// Categories returns every category, loading them once. Concurrent first
// calls share one request; a failed load is retried by the next call.
//
// The shared request outlives any single caller: a caller whose ctx ends stops
// waiting, while the load runs on until the query is closed.
func (query *Query) Categories(ctx context.Context) ([]backend.Category, error) {
	query.mu.Lock()
	if query.categories != nil {
		categories := slices.Clone(query.categories)
		query.mu.Unlock()
		return categories, nil
	}
	query.mu.Unlock()

	results := query.group.DoChan("categories", func() (any, error) {
		loadCtx, cancel := context.WithCancel(ctxutil.Detach(ctx))
		defer cancel()
		defer context.AfterFunc(query.ctx, cancel)()

		categories, err := query.gateway.Categories(loadCtx)
		if err != nil {
			return nil, err
		}

		query.mu.Lock()
		query.categories = categories
		query.mu.Unlock()
		return categories, nil
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return slices.Clone(result.Val.([]backend.Category)), nil
	case <-ctx.Done():
		return nil, apperr.Transport(ctx.Err())
	}
}

// Book fetches the details of one book.
func (query *Query) Book(ctx context.Context, id int64) (backend.Book, error) {
	if id <= 0 {
		return backend.Book{}, apperr.NotFound("Book")
	}
	return query.gateway.Book(ctx, id)
}

// Close stops the debounce timer and background fetches.
func (query *Query) Close() {
	query.mu.Lock()
	if query.timer != nil {
		query.timer.Stop()
	}
	query.mu.Unlock()
	query.cancel()
}

// # Fetching

// fetch loads the page selected by the current filters.
func (query *Query) fetch(ctx context.Context) error {
	// 1. Snapshot filters and claim a generation
	query.mu.Lock()
	query.generation++
	generation := query.generation
	filter := backend.BookFilter{
		Page:       query.state.Page,
		Size:       query.pageSize,
		Search:     query.state.SearchText,
		CategoryID: query.state.CategoryID,
	}
	query.state.Loading = true
	query.mu.Unlock()

	// 2. Call the backend without holding the lock
	page, err := query.gateway.Books(ctx, filter)

	// 3. Apply only if still the latest fetch
	query.mu.Lock()
	defer query.mu.Unlock()

	if generation != query.generation {
		query.logger.DebugContext(ctx, "stale catalog response dropped",
			slog.Uint64("generation", generation), slog.String("search", filter.Search))
		return err
	}

	query.state.Loading = false
	if err != nil {
		query.state.Err = err
		query.state.Message = apperr.MessageOr(err, "Failed to load books")
		return err
	}

	query.state.Err = nil
	query.state.Message = ""
	query.state.Books = page.Items
	query.state.TotalPages = page.TotalPages
	query.state.TotalElements = page.TotalElements
	return nil
}
