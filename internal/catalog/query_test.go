// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/backend/backendtest"
	"github.com/taibuivan/bookstore/internal/catalog"
)

const debounce = 30 * time.Millisecond

type fixture struct {
	fake    *backendtest.Server
	query   *catalog.Query
	fiction backend.Category
	science backend.Category
}

// newFixture stocks ten books: six fiction (one titled "Dune") and four science.
func newFixture(t *testing.T) fixture {
	t.Helper()

	fake := backendtest.New(t)
	fiction := fake.AddCategory("Non-Fiction", "non-fiction")
	science := fake.AddCategory("Science", "science")

	fake.AddBook("Dune", "10.00", &fiction)
	for i := range 5 {
		fake.AddBook(fmt.Sprintf("Story %d", i), "5.00", &fiction)
	}
	for i := range 4 {
		fake.AddBook(fmt.Sprintf("Physics %d", i), "15.00", &science)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	query := catalog.New(context.Background(), fake.Client(t), catalog.Options{Debounce: debounce}, logger)
	t.Cleanup(query.Close)

	return fixture{fake: fake, query: query, fiction: fiction, science: science}
}

/*
TestLoad fetches the first page of eight.
*/
func TestLoad(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.query.Load(context.Background()))

	state := f.query.State()
	assert.Len(t, state.Books, catalog.DefaultPageSize)
	assert.Equal(t, 2, state.TotalPages)
	assert.EqualValues(t, 10, state.TotalElements)
	assert.Zero(t, state.Page)
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
}

/*
TestSetPage moves within bounds and ignores the rest.
*/
func TestSetPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.query.Load(ctx))

	require.NoError(t, f.query.SetPage(ctx, 1))
	assert.Len(t, f.query.State().Books, 2)
	assert.Equal(t, 1, f.query.State().Page)

	calls := f.fake.Calls("GET /books")
	require.NoError(t, f.query.SetPage(ctx, 2))
	require.NoError(t, f.query.SetPage(ctx, -1))
	assert.Equal(t, calls, f.fake.Calls("GET /books"))
	assert.Equal(t, 1, f.query.State().Page)
}

/*
TestSetPage_FailureKeepsPage leaves the page number matching the books shown.
*/
func TestSetPage_FailureKeepsPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.query.Load(ctx))
	shown := f.query.State().Books

	f.fake.Fail("GET /books", http.StatusInternalServerError, "")
	require.Error(t, f.query.SetPage(ctx, 1))

	state := f.query.State()
	assert.Zero(t, state.Page)
	assert.Equal(t, shown, state.Books)
	assert.Error(t, state.Err)
	assert.False(t, state.Loading)

	f.fake.Clear("GET /books")
	require.NoError(t, f.query.SetPage(ctx, 1))
	assert.Equal(t, 1, f.query.State().Page)
	assert.Len(t, f.query.State().Books, 2)
}

/*
TestSetSearchText_Debounced sends one request for a burst of keystrokes.
*/
func TestSetSearchText_Debounced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.query.Load(ctx))
	require.NoError(t, f.query.SetPage(ctx, 1))
	before := f.fake.Calls("GET /books")

	for _, text := range []string{"d", "du", "dun", "dune"} {
		f.query.SetSearchText(text)
	}

	assert.Eventually(t, func() bool {
		state := f.query.State()
		return len(state.Books) == 1 && !state.Loading
	}, time.Second, 5*time.Millisecond)

	time.Sleep(3 * debounce)
	assert.Equal(t, before+1, f.fake.Calls("GET /books"))

	state := f.query.State()
	assert.Equal(t, "dune", state.SearchText)
	assert.Zero(t, state.Page)
	assert.Equal(t, "Dune", state.Books[0].Title)
}

/*
TestSetSearchText_NoResults is an empty listing, not an error.
*/
func TestSetSearchText_NoResults(t *testing.T) {
	f := newFixture(t)
	f.query.SetSearchText("zzz")

	assert.Eventually(t, func() bool {
		return f.fake.Calls("GET /books") == 1 && !f.query.State().Loading
	}, time.Second, 5*time.Millisecond)

	state := f.query.State()
	assert.Empty(t, state.Books)
	assert.Zero(t, state.TotalPages)
	assert.NoError(t, state.Err)
}

/*
TestClose_StopsPendingSearch drops a search still waiting on its timer.
*/
func TestClose_StopsPendingSearch(t *testing.T) {
	f := newFixture(t)

	f.query.SetSearchText("dune")
	f.query.Close()

	time.Sleep(3 * debounce)
	assert.Zero(t, f.fake.Calls("GET /books"))
}

/*
TestSetCategory toggles the filter and resets the page.
*/
func TestSetCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.query.Load(ctx))
	require.NoError(t, f.query.SetPage(ctx, 1))

	require.NoError(t, f.query.SetCategory(ctx, &f.science.ID))
	state := f.query.State()
	require.NotNil(t, state.CategoryID)
	assert.Equal(t, f.science.ID, *state.CategoryID)
	assert.Zero(t, state.Page)
	assert.Len(t, state.Books, 4)

	require.NoError(t, f.query.SetCategory(ctx, &f.science.ID))
	state = f.query.State()
	assert.Nil(t, state.CategoryID)
	assert.EqualValues(t, 10, state.TotalElements)

	require.NoError(t, f.query.SetCategory(ctx, &f.fiction.ID))
	require.NoError(t, f.query.SetCategory(ctx, nil))
	assert.Nil(t, f.query.State().CategoryID)
}

/*
TestSelectCategoryByName matches names loosely and never toggles.
*/
func TestSelectCategoryByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	matched, err := f.query.SelectCategoryByName(ctx, "non fiction")
	require.NoError(t, err)
	assert.True(t, matched)
	require.NotNil(t, f.query.State().CategoryID)
	assert.Equal(t, f.fiction.ID, *f.query.State().CategoryID)
	assert.Len(t, f.query.State().Books, 6)

	calls := f.fake.Calls("GET /books")
	matched, err = f.query.SelectCategoryByName(ctx, "NON-FICTION")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, calls, f.fake.Calls("GET /books"))
	assert.Equal(t, f.fiction.ID, *f.query.State().CategoryID)

	matched, err = f.query.SelectCategoryByName(ctx, "Poetry")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, f.fiction.ID, *f.query.State().CategoryID)
}

/*
TestCategories_Coalesced shares a single request among concurrent callers.
*/
func TestCategories_Coalesced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	f.fake.Hook("GET /categories", func(*http.Request) { <-release })

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			categories, err := f.query.Categories(ctx)
			assert.NoError(t, err)
			assert.Len(t, categories, 2)
		}()
	}

	assert.Eventually(t, func() bool { return f.fake.Calls("GET /categories") == 1 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	_, err := f.query.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fake.Calls("GET /categories"))
}

/*
TestCategories_FirstCallerCancelled lets the other callers finish the shared
load after the caller that started it gives up.
*/
func TestCategories_FirstCallerCancelled(t *testing.T) {
	f := newFixture(t)

	release := make(chan struct{})
	f.fake.Hook("GET /categories", func(*http.Request) { <-release })

	first, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := f.query.Categories(first)
		firstDone <- err
	}()
	assert.Eventually(t, func() bool { return f.fake.Calls("GET /categories") == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		categories []backend.Category
		err        error
	}
	secondDone := make(chan outcome, 1)
	go func() {
		categories, err := f.query.Categories(context.Background())
		secondDone <- outcome{categories, err}
	}()

	cancel()
	require.ErrorIs(t, <-firstDone, context.Canceled)

	close(release)
	second := <-secondDone
	require.NoError(t, second.err)
	assert.Len(t, second.categories, 2)

	// The load completed, so even a caller that has already given up is served
	// from memory.
	categories, err := f.query.Categories(first)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

/*
TestFetch_StaleResponseDropped keeps the newest filters when an older
request answers last.
*/
func TestFetch_StaleResponseDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	slowID := strconv.FormatInt(f.science.ID, 10)
	f.fake.Hook("GET /books", func(request *http.Request) {
		if request.URL.Query().Get("categoryId") == slowID {
			<-release
		}
	})

	done := make(chan error, 1)
	go func() { done <- f.query.SetCategory(ctx, &f.science.ID) }()
	assert.Eventually(t, func() bool { return f.fake.Calls("GET /books") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.query.SetCategory(ctx, nil))
	close(release)
	require.NoError(t, <-done)

	state := f.query.State()
	assert.Nil(t, state.CategoryID)
	assert.EqualValues(t, 10, state.TotalElements)
	assert.False(t, state.Loading)
}

/*
TestFetch_Failure records the error on the state.
*/
func TestFetch_Failure(t *testing.T) {
	f := newFixture(t)
	f.fake.Fail("GET /books", http.StatusInternalServerError, "")

	err := f.query.Load(context.Background())
	require.Error(t, err)

	state := f.query.State()
	assert.Error(t, state.Err)
	assert.Equal(t, "Failed to load books", state.Message)
	assert.False(t, state.Loading)
}

/*
TestBook fetches details and rejects impossible ids locally.
*/
func TestBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.query.Load(ctx))

	first := f.query.State().Books[0]
	book, err := f.query.Book(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, book.Title)

	_, err = f.query.Book(ctx, 0)
	assert.Error(t, err)
}

/*
TestState_Window exposes pagination controls for the listing.
*/
func TestState_Window(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.query.Load(context.Background()))

	items := f.query.State().Window()
	require.Len(t, items, 2)
	assert.True(t, items[0].Current)
}

func TestExcerpt(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 120))

	excerpt := catalog.Excerpt(long, catalog.ExcerptWords)
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.Len(t, strings.Split(strings.TrimSuffix(excerpt, "..."), " "), catalog.ExcerptWords)

	short := "A short tale."
	assert.Equal(t, short, catalog.Excerpt(short, catalog.ExcerptWords))
	assert.Equal(t, "", catalog.Excerpt("", catalog.ExcerptWords))
}
