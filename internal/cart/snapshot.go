// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/validate"
)

// snapshotOf copies the server cart into a local projection.
func snapshotOf(cart backend.Cart) *Snapshot {
	return &Snapshot{
		Items: slices.Clone(cart.Items),
		Total: cart.TotalAmount,
	}
}

func (snapshot *Snapshot) clone() *Snapshot {
	if snapshot == nil {
		return nil
	}
	return &Snapshot{Items: slices.Clone(snapshot.Items), Total: snapshot.Total}
}

// recomputeTotal sums line subtotals.
func (snapshot *Snapshot) recomputeTotal() {
	total := decimal.Zero
	for _, item := range snapshot.Items {
		total = total.Add(item.Subtotal)
	}
	snapshot.Total = total
}

// # Mutations

/*
Add puts quantity copies of a book in the cart.

Description: The badge is bumped before the request. If the backend refuses,
the bump is undone (only if it happened) and the error is returned. On
success the cart is refreshed; a failed refresh does not fail the add.

Parameters:
  - context: context.Context
  - bookID: int64
  - quantity: int (at least 1)

Returns:
  - err: UNAUTHORIZED without a session, VALIDATION_ERROR, or the backend failure
*/
func (state *State) Add(context context.Context, bookID int64, quantity int) error {
	if _, ok := state.sessions.Current(context); !ok {
		return apperr.Unauthorized("Please login to add to cart")
	}

	validator := &validate.Validator{}
	validator.
		Positive("bookId", bookID).
		Custom("quantity", quantity < 1, "Quantity must be at least 1")
	if err := validator.Err(); err != nil {
		return err
	}

	itemID := ItemID(bookID)
	applied := state.Increment(itemID)

	if _, err := state.gateway.AddToCart(context, backend.AddToCartRequest{BookID: bookID, Quantity: quantity}); err != nil {
		if applied {
			state.Decrement(itemID)
		}
		return err
	}

	state.refreshQuietly(context)
	return nil
}

/*
UpdateQuantity changes the quantity of a cart line.

Description: The snapshot is updated first (line subtotal and cart total
recomputed locally) and restored if the backend refuses the change, unless a
refresh has replaced it in the meantime.

Parameters:
  - context: context.Context
  - lineID: int64 (cart line id, not book id)
  - quantity: int (at least 1)
*/
func (state *State) UpdateQuantity(context context.Context, lineID int64, quantity int) error {
	if quantity < 1 {
		return validate.RequiredError("quantity", "Quantity must be at least 1")
	}

	previous, revision, err := state.editSnapshot(lineID, func(snapshot *Snapshot, index int) {
		item := &snapshot.Items[index]
		item.Quantity = quantity
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		snapshot.recomputeTotal()
	})
	if err != nil {
		return err
	}

	if _, err := state.gateway.UpdateCartItem(context, lineID, quantity); err != nil {
		state.restoreSnapshot(previous, revision)
		return err
	}

	state.refreshQuietly(context)
	return nil
}

/*
RemoveItem deletes a cart line.

Description: The line leaves the snapshot and the badge at once. Either way
the call ends with a refresh: on success it reconciles the totals, and if the
backend refuses it repairs the badge after the snapshot is restored.
*/
func (state *State) RemoveItem(context context.Context, lineID int64) error {
	var bookID int64
	previous, revision, err := state.editSnapshot(lineID, func(snapshot *Snapshot, index int) {
		bookID = snapshot.Items[index].BookID
		snapshot.Items = slices.Delete(snapshot.Items, index, index+1)
		snapshot.recomputeTotal()
	})
	if err != nil {
		return err
	}
	state.Decrement(ItemID(bookID))

	if err := state.gateway.RemoveCartItem(context, lineID); err != nil {
		state.restoreSnapshot(previous, revision)
		state.refreshQuietly(context)
		return err
	}

	state.refreshQuietly(context)
	return nil
}

// Clear drops the local projection after the server emptied the cart
// (for example after checkout). The badge is left to the next refresh.
func (state *State) Clear() {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.snapshot = nil
}

// editSnapshot applies edit to the line with lineID and returns the prior
// snapshot for rollback, with the revision it belongs to.
func (state *State) editSnapshot(lineID int64, edit func(snapshot *Snapshot, index int)) (*Snapshot, uint64, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.snapshot == nil {
		return nil, 0, apperr.NotFound("Cart item")
	}
	index := slices.IndexFunc(state.snapshot.Items, func(item backend.CartItem) bool { return item.ID == lineID })
	if index < 0 {
		return nil, 0, apperr.NotFound("Cart item")
	}

	previous := state.snapshot.clone()
	edit(state.snapshot, index)
	return previous, state.revision, nil
}

// restoreSnapshot rolls back a local edit. A snapshot installed by a later
// refresh or reset is newer than previous and is kept.
func (state *State) restoreSnapshot(previous *Snapshot, revision uint64) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.revision != revision {
		state.logger.Debug("cart rollback skipped, snapshot replaced", slog.Uint64("revision", revision))
		return
	}
	state.snapshot = previous
}

// refreshQuietly reconciles after a successful mutation. Its failure is logged,
// not returned: the mutation itself went through.
func (state *State) refreshQuietly(context context.Context) {
	if err := state.Refresh(context); err != nil {
		state.logger.WarnContext(context, "cart reconciliation failed", slog.String("error", err.Error()))
	}
}
