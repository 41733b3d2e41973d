// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storefront_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/auth"
	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/backend/backendtest"
	"github.com/taibuivan/bookstore/internal/catalog"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
	"github.com/taibuivan/bookstore/internal/storefront"
)

const customer = "reader@example.com"

type staticToken string

func (token staticToken) Token() string { return string(token) }

type fixture struct {
	fake  *backendtest.Server
	store prefs.Store
	deps  storefront.Dependencies
	book  backend.Book
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	fake := backendtest.New(t)
	fake.AddUser(customer)
	book := fake.AddBook("Dune", "12.50", nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := prefs.OpenFile(filepath.Join(t.TempDir(), "prefs.yaml"), logger)
	require.NoError(t, err)

	return fixture{
		fake:  fake,
		store: store,
		book:  book,
		deps: storefront.Dependencies{
			Backend: fake.Client(t),
			Store:   store,
			Catalog: catalog.Options{Debounce: 10 * time.Millisecond},
			Logger:  logger,
		},
	}
}

// seedCart puts a line in the customer's server-side cart.
func (f fixture) seedCart(t *testing.T) {
	t.Helper()
	token := staticToken(f.fake.IssueToken(customer, []string{"ROLE_CUSTOMER"}, time.Hour))
	_, err := f.deps.Backend.WithTokenSource(token).AddToCart(context.Background(), backend.AddToCartRequest{BookID: f.book.ID, Quantity: 1})
	require.NoError(t, err)
}

func login(t *testing.T, workspace *storefront.Workspace) {
	t.Helper()
	_, err := workspace.Auth.Login(context.Background(), auth.Credentials{
		Email:         customer,
		Password:      backendtest.DefaultPassword,
		CaptchaID:     backendtest.CaptchaID,
		CaptchaAnswer: backendtest.CaptchaAnswer,
	})
	require.NoError(t, err)
}

/*
TestWorkspace_AuthDrivesCart refreshes the cart on login and resets it on logout.
*/
func TestWorkspace_AuthDrivesCart(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t)
	ctx := context.Background()

	workspace := storefront.NewWorkspace(ctx, "visitor-1", f.deps)
	t.Cleanup(workspace.Close)
	require.NoError(t, workspace.Open(ctx))
	assert.Zero(t, workspace.Cart.Count())

	login(t, workspace)
	assert.Equal(t, 1, workspace.Cart.Count())

	require.NoError(t, workspace.Auth.Logout(ctx))
	assert.Zero(t, workspace.Cart.Count())
	assert.Nil(t, workspace.Cart.View().Snapshot)
}

/*
TestWorkspace_OpenRestoresSession picks up a token persisted by an earlier workspace.
*/
func TestWorkspace_OpenRestoresSession(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t)
	ctx := context.Background()

	first := storefront.NewWorkspace(ctx, "visitor-1", f.deps)
	require.NoError(t, first.Open(ctx))
	login(t, first)
	first.Close()

	second := storefront.NewWorkspace(ctx, "visitor-1", f.deps)
	t.Cleanup(second.Close)
	require.NoError(t, second.Open(ctx))

	session, ok := second.Session(ctx)
	require.True(t, ok)
	assert.Equal(t, customer, session.Subject)
	assert.Equal(t, 1, second.Cart.Count())

	// Open is idempotent.
	calls := f.fake.Calls("GET /cart")
	require.NoError(t, second.Open(ctx))
	assert.Equal(t, calls, f.fake.Calls("GET /cart"))
}

/*
TestWorkspace_ScopedPreferences keeps visitors' keys apart.
*/
func TestWorkspace_ScopedPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := storefront.NewWorkspace(ctx, "alice", f.deps)
	bob := storefront.NewWorkspace(ctx, "bob", f.deps)
	t.Cleanup(alice.Close)
	t.Cleanup(bob.Close)

	require.NoError(t, alice.Theme.Set(ctx, true))
	login(t, alice)

	dark, err := bob.Theme.IsDark(ctx)
	require.NoError(t, err)
	assert.False(t, dark)

	require.NoError(t, bob.Open(ctx))
	_, signedIn := bob.Session(ctx)
	assert.False(t, signedIn)

	raw, found, err := f.store.Get(ctx, "alice:"+constants.PrefKeyToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotEmpty(t, raw)
}

/*
TestRegistry_GetAndSweep reuses live workspaces and evicts idle ones.
*/
func TestRegistry_GetAndSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registry := storefront.NewRegistry(ctx, f.deps, time.Minute)
	t.Cleanup(registry.Close)

	now := time.Now()
	registry.SetClock(func() time.Time { return now })

	first, err := registry.Get(ctx, "visitor-1")
	require.NoError(t, err)
	again, err := registry.Get(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = registry.Get(ctx, "visitor-2")
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())

	assert.Zero(t, registry.Sweep())

	now = now.Add(2 * time.Minute)
	_, err = registry.Get(ctx, "visitor-2")
	require.NoError(t, err)

	assert.Equal(t, 1, registry.Sweep())
	assert.Equal(t, 1, registry.Len())

	fresh, err := registry.Get(ctx, "visitor-1")
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
}

/*
TestRegistry_Close drops every workspace.
*/
func TestRegistry_Close(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registry := storefront.NewRegistry(ctx, f.deps, time.Minute)
	_, err := registry.Get(ctx, "visitor-1")
	require.NoError(t, err)

	registry.Close()
	assert.Zero(t, registry.Len())
}
