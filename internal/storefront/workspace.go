// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storefront assembles the client modules into per-visitor workspaces.

A [Workspace] is everything one browser session sees: its auth state, cart,
catalog listing, theme and account services, all sharing one persisted store
scope and one backend client that authenticates with the visitor's token.

A [Registry] keeps workspaces alive between requests and evicts idle ones.
*/
package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taibuivan/bookstore/internal/admin"
	"github.com/taibuivan/bookstore/internal/auth"
	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/cart"
	"github.com/taibuivan/bookstore/internal/catalog"
	"github.com/taibuivan/bookstore/internal/checkout"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/profile"
	"github.com/taibuivan/bookstore/internal/review"
	"github.com/taibuivan/bookstore/internal/theme"
)

// Dependencies are the process-wide collaborators shared by all workspaces.
type Dependencies struct {
	// Backend is the anonymous client; each workspace derives an authenticated view.
	Backend *backend.Client
	// Store is the unscoped persisted store.
	Store   prefs.Store
	Catalog catalog.Options
	Logger  *slog.Logger
}

// Workspace is one visitor's storefront.
type Workspace struct {
	ID string

	Auth     *auth.State
	Cart     *cart.State
	Catalog  *catalog.Query
	Checkout *checkout.Service
	Theme    *theme.Theme
	Profile  *profile.Service
	Reviews  *review.Service
	Admin    *admin.Service

	logger   *slog.Logger
	lastSeen atomic.Int64

	openMu sync.Mutex
	opened bool
}

/*
NewWorkspace wires the modules for visitorID.

Description: Auth transitions drive the cart: signing in refreshes it and
signing out resets it. The workspace is inert until [Workspace.Open].

Parameters:
  - parent: context.Context bounding background work (debounced searches)
  - visitorID: string
  - deps: Dependencies
*/
func NewWorkspace(parent context.Context, visitorID string, deps Dependencies) *Workspace {
	logger := deps.Logger.With(slog.String("visitor_id", visitorID))
	store := prefs.Scoped(deps.Store, visitorID)

	// 1. Auth talks to the anonymous client; everything else carries the token
	authState := auth.New(deps.Backend, store, logger)
	client := deps.Backend.WithTokenSource(authState)

	// 2. Feature modules
	cartState := cart.New(client, authState, logger)
	workspace := &Workspace{
		ID:       visitorID,
		Auth:     authState,
		Cart:     cartState,
		Catalog:  catalog.New(parent, client, deps.Catalog, logger),
		Checkout: checkout.NewService(client, cartState, authState, logger),
		Theme:    theme.New(store, logger),
		Profile:  profile.NewService(client, authState, logger),
		Reviews:  review.NewService(client, authState, logger),
		Admin:    admin.NewService(client, authState, logger),
		logger:   logger,
	}
	workspace.Touch()

	// 3. Keep the cart in step with the session
	authState.Subscribe(func(ctx context.Context, _ sec.Session, signedIn bool) {
		if !signedIn {
			cartState.Reset()
			return
		}
		if err := cartState.Refresh(ctx); err != nil {
			logger.WarnContext(ctx, "cart refresh after login failed", slog.String("error", err.Error()))
		}
	})

	return workspace
}

// Open restores the persisted session and, when signed in, loads the cart.
// It runs once; a failed Open is retried by the next call.
func (workspace *Workspace) Open(ctx context.Context) error {
	workspace.openMu.Lock()
	defer workspace.openMu.Unlock()

	if workspace.opened {
		return nil
	}

	if err := workspace.Auth.Init(ctx); err != nil {
		return fmt.Errorf("workspace_open_failed: %w", err)
	}
	if _, signedIn := workspace.Auth.Current(ctx); signedIn {
		if err := workspace.Cart.Refresh(ctx); err != nil {
			workspace.logger.WarnContext(ctx, "cart unavailable on open", slog.String("error", err.Error()))
		}
	}

	workspace.opened = true
	return nil
}

// Session returns the visitor's live session.
func (workspace *Workspace) Session(ctx context.Context) (sec.Session, bool) {
	return workspace.Auth.Current(ctx)
}

// Touch marks the workspace as used now.
func (workspace *Workspace) Touch() {
	workspace.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen reports when the workspace was last used.
func (workspace *Workspace) LastSeen() time.Time {
	return time.Unix(0, workspace.lastSeen.Load())
}

// Close stops background work. The persisted session survives.
func (workspace *Workspace) Close() {
	workspace.Catalog.Close()
}
