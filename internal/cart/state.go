// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cart keeps the visitor's optimistic view of the server-side cart.

Two projections are maintained:

  - The badge: a count of distinct lines plus the set of tracked book ids. It
    moves immediately on user gestures and is corrected by [State.Refresh].
  - The snapshot: the last cart the backend returned, edited optimistically by
    the cart page and restored when the backend rejects an edit.

Only Refresh results are authoritative. Everything else is a display hint.

State machine:

	Empty ──Refresh──▶ Syncing ──ok──▶ Synced ◀──Refresh── OptimisticallyAdjusted
	                       └──fail──▶ Empty        Synced ──Increment/Decrement──▶ OptimisticallyAdjusted
*/
package cart

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/sec"
)

// # Contracts & Types

// Status names the badge's position in the sync protocol.
type Status string

const (
	StatusEmpty                  Status = "EMPTY"
	StatusSyncing                Status = "SYNCING"
	StatusSynced                 Status = "SYNCED"
	StatusOptimisticallyAdjusted Status = "OPTIMISTICALLY_ADJUSTED"
)

// Gateway is the part of the backend API the cart needs.
type Gateway interface {
	Cart(ctx context.Context) (backend.Cart, error)
	AddToCart(ctx context.Context, request backend.AddToCartRequest) (backend.Cart, error)
	UpdateCartItem(ctx context.Context, lineID int64, quantity int) (backend.Cart, error)
	RemoveCartItem(ctx context.Context, lineID int64) error
}

// SessionSource reports whether a visitor is signed in.
type SessionSource interface {
	Current(ctx context.Context) (sec.Session, bool)
}

// Snapshot is the local projection of the server cart.
type Snapshot struct {
	Items []backend.CartItem `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// View is a consistent copy of the cart state.
type View struct {
	Status   Status    `json:"status"`
	Count    int       `json:"count"`
	Tracked  []string  `json:"tracked"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// State is one visitor's cart state.
//
// # Concurrency
//
// All fields are guarded by mu. Network calls are made without holding it, so
// a slow backend never blocks readers of the badge.
type State struct {
	gateway  Gateway
	sessions SessionSource
	logger   *slog.Logger

	mu         sync.Mutex
	status     Status
	count      int
	tracked    map[string]struct{}
	snapshot   *Snapshot
	generation uint64

	// revision changes whenever the snapshot is replaced by the server's view
	// (or dropped). Local edits roll back only while it is unchanged.
	revision uint64
}

// New constructs an empty cart state.
func New(gateway Gateway, sessions SessionSource, logger *slog.Logger) *State {
	return &State{
		gateway:  gateway,
		sessions: sessions,
		logger:   logger,
		status:   StatusEmpty,
		tracked:  make(map[string]struct{}),
	}
}

// ItemID is the badge key of a book.
func ItemID(bookID int64) string {
	return strconv.FormatInt(bookID, 10)
}

// # Badge Transitions

// Increment counts itemID as newly added. It reports whether the badge moved:
// empty ids and ids already tracked leave it unchanged.
func (state *State) Increment(itemID string) bool {
	state.mu.Lock()
	defer state.mu.Unlock()

	if itemID == "" {
		return false
	}
	if _, ok := state.tracked[itemID]; ok {
		return false
	}

	state.tracked[itemID] = struct{}{}
	state.count++
	state.status = StatusOptimisticallyAdjusted
	return true
}

// Decrement reverses an increment.
//
// A tracked id is unmarked and the count drops to max(0, count-1). An empty id
// applies that same rule without touching the set, for callers that do not
// know which book a line holds. A non-empty id that is not tracked is a no-op
// rather than a plain max(0, count-1): decrementing there would leave the count
// below the size of the tracked set.
func (state *State) Decrement(itemID string) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if itemID != "" {
		if _, ok := state.tracked[itemID]; !ok {
			return
		}
		delete(state.tracked, itemID)
	}

	state.count = max(0, state.count-1)
	state.status = StatusOptimisticallyAdjusted
}

// # Reconciliation

/*
Refresh replaces the badge and snapshot with the authoritative server cart.

Description: Without a session the state resets to Empty and no request is
made. A response is applied only if no newer Refresh started after it, so a
slow reply can never overwrite a fresher one. On failure the badge resets to
zero and the snapshot is dropped, as no trustworthy cart is known.

Parameters:
  - context: context.Context

Returns:
  - err: the backend failure, after the badge has been reset
*/
func (state *State) Refresh(context context.Context) error {
	if _, ok := state.sessions.Current(context); !ok {
		state.Reset()
		return nil
	}

	state.mu.Lock()
	state.generation++
	generation := state.generation
	state.status = StatusSyncing
	state.mu.Unlock()

	cart, err := state.gateway.Cart(context)

	state.mu.Lock()
	defer state.mu.Unlock()

	if generation != state.generation {
		// A newer refresh or a reset owns the state now.
		state.logger.DebugContext(context, "stale cart response dropped", slog.Uint64("generation", generation))
		return err
	}

	if err != nil {
		state.count = 0
		state.tracked = make(map[string]struct{})
		state.snapshot = nil
		state.revision++
		state.status = StatusEmpty
		state.logger.WarnContext(context, "cart refresh failed", slog.String("error", err.Error()))
		return err
	}

	state.applyLocked(cart)
	return nil
}

// applyLocked installs cart as the authoritative state. Callers hold mu.
func (state *State) applyLocked(cart backend.Cart) {
	tracked := make(map[string]struct{}, len(cart.Items))
	for _, item := range cart.Items {
		tracked[ItemID(item.BookID)] = struct{}{}
	}

	state.count = len(cart.Items)
	state.tracked = tracked
	state.snapshot = snapshotOf(cart)
	state.revision++
	state.status = StatusSynced
}

// Reset forgets everything, as on logout. Refreshes in flight are orphaned.
func (state *State) Reset() {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.generation++
	state.count = 0
	state.tracked = make(map[string]struct{})
	state.snapshot = nil
	state.revision++
	state.status = StatusEmpty
}

// # Reads

// View returns a copy of the current state.
func (state *State) View() View {
	state.mu.Lock()
	defer state.mu.Unlock()

	tracked := make([]string, 0, len(state.tracked))
	for id := range state.tracked {
		tracked = append(tracked, id)
	}
	slices.Sort(tracked)

	return View{
		Status:   state.status,
		Count:    state.count,
		Tracked:  tracked,
		Snapshot: state.snapshot.clone(),
	}
}

// Count returns the badge value.
func (state *State) Count() int {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.count
}

// Tracked reports whether itemID is counted in the badge.
func (state *State) Tracked(itemID string) bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	_, ok := state.tracked[itemID]
	return ok
}

// Status returns the position in the sync protocol.
func (state *State) Status() Status {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.status
}
