// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/checkout"
	"github.com/taibuivan/bookstore/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookstore/internal/platform/request"
	"github.com/taibuivan/bookstore/internal/platform/respond"
	"github.com/taibuivan/bookstore/pkg/pagination"
)

// # Cart

// cartHandler exposes the optimistic cart.
type cartHandler struct{}

// Routes mounts the cart endpoints. The badge count is public; anything that
// touches the server cart needs a session.
func (handler *cartHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/count", handler.count)

	router.Group(func(signedIn chi.Router) {
		signedIn.Use(middleware.RequireSession(resolveSession))

		signedIn.Get("/", handler.view)
		signedIn.Post("/refresh", handler.refresh)
		signedIn.Post("/items", handler.add)
		signedIn.Put("/items/{itemID}", handler.update)
		signedIn.Delete("/items/{itemID}", handler.remove)
	})

	return router
}

/*
GET /storefront/v1/cart/count.

Response:
  - 200: {count: int} (0 for anonymous visitors)
*/
func (handler *cartHandler) count(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]int{"count": workspaceFrom(request).Cart.Count()})
}

/*
GET /storefront/v1/cart.

Description: Returns the local projection, loading it first if the visitor has
none yet.
*/
func (handler *cartHandler) view(writer http.ResponseWriter, request *http.Request) {
	state := workspaceFrom(request).Cart
	if state.View().Snapshot == nil {
		if err := state.Refresh(request.Context()); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}
	respond.OK(writer, state.View())
}

func (handler *cartHandler) refresh(writer http.ResponseWriter, request *http.Request) {
	state := workspaceFrom(request).Cart
	if err := state.Refresh(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state.View())
}

/*
POST /storefront/v1/cart/items.

Request:
  - body: {bookId: int64, quantity: int}

Response:
  - 200: cart view after reconciliation
  - 400: VALIDATION_ERROR (the badge has been rolled back)
*/
func (handler *cartHandler) add(writer http.ResponseWriter, request *http.Request) {
	var body backend.AddToCartRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	state := workspaceFrom(request).Cart
	if err := state.Add(request.Context(), body.BookID, body.Quantity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state.View())
}

func (handler *cartHandler) update(writer http.ResponseWriter, request *http.Request) {
	lineID, err := requestutil.ID(request, "itemID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body backend.UpdateQuantityRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state := workspaceFrom(request).Cart
	if err := state.UpdateQuantity(request.Context(), lineID, body.Quantity); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state.View())
}

func (handler *cartHandler) remove(writer http.ResponseWriter, request *http.Request) {
	lineID, err := requestutil.ID(request, "itemID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state := workspaceFrom(request).Cart
	if err := state.RemoveItem(request.Context(), lineID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state.View())
}

// # Orders

// orderHandler places and tracks orders.
type orderHandler struct{}

func (handler *orderHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireSession(resolveSession))

	router.Post("/", handler.submit)
	router.Get("/", handler.list)
	router.Get("/steps", handler.steps)
	router.Get("/{orderID}/tracking", handler.tracking)

	return router
}

/*
POST /storefront/v1/orders.

Request:
  - body: {shippingAddress: Address, paymentProvider: string (default "simulated")}

Response:
  - 201: backend.Order
  - 400: VALIDATION_ERROR or the backend's refusal (e.g. "Cart is empty")
*/
func (handler *orderHandler) submit(writer http.ResponseWriter, request *http.Request) {
	var body backend.OrderRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := workspaceFrom(request).Checkout.SubmitOrder(request.Context(), body.ShippingAddress, body.PaymentProvider)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, order)
}

func (handler *orderHandler) list(writer http.ResponseWriter, request *http.Request) {
	orders, err := workspaceFrom(request).Checkout.Orders(request.Context(), pagination.PageFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	paginated(writer, orders)
}

/*
GET /storefront/v1/orders/{orderID}/tracking.

Response:
  - 200: checkout.Tracking (order, step, five-step timeline, expected delivery)
*/
func (handler *orderHandler) tracking(writer http.ResponseWriter, request *http.Request) {
	orderID, err := requestutil.ID(request, "orderID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tracking, err := workspaceFrom(request).Checkout.Tracking(request.Context(), orderID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tracking)
}

// steps lists the milestone names for clients rendering a timeline.
func (handler *orderHandler) steps(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string][]string{"steps": checkout.Steps})
}
