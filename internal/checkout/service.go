// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package checkout turns the visitor's cart into an order and reports order
// progress.
package checkout

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/platform/validate"
	"github.com/taibuivan/bookstore/pkg/uuid"
)

// DefaultPaymentProvider is used when the visitor picks none.
const DefaultPaymentProvider = constants.DefaultPaymentProvider

// Gateway is the part of the backend API checkout needs.
type Gateway interface {
	PlaceOrder(ctx context.Context, request backend.OrderRequest, idempotencyKey string) (backend.Order, error)
	Orders(ctx context.Context, page int) (backend.Page[backend.Order], error)
	Order(ctx context.Context, id int64) (backend.Order, error)
}

// Cart is the cart projection an order empties.
type Cart interface {
	Clear()
	Refresh(ctx context.Context) error
}

// SessionSource reports whether a visitor is signed in.
type SessionSource interface {
	Current(ctx context.Context) (sec.Session, bool)
}

// Service places and lists orders for one visitor.
type Service struct {
	gateway  Gateway
	cart     Cart
	sessions SessionSource
	logger   *slog.Logger
}

// NewService constructs a checkout service.
func NewService(gateway Gateway, cart Cart, sessions SessionSource, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, cart: cart, sessions: sessions, logger: logger}
}

/*
SubmitOrder places an order for the current server cart.

Description: The address is validated before any request. Each call carries a
fresh idempotency key. On success the local cart projection is cleared and the
badge refreshed; on failure the cart is left untouched.

Parameters:
  - context: context.Context
  - address: backend.Address (line2 optional)
  - provider: string ("" selects simulated)

Returns:
  - backend.Order: the placed order
  - error: UNAUTHORIZED, VALIDATION_ERROR, or the backend message ("Checkout failed" when none)
*/
func (service *Service) SubmitOrder(context context.Context, address backend.Address, provider string) (backend.Order, error) {
	// 1. Guard
	if _, ok := service.sessions.Current(context); !ok {
		return backend.Order{}, apperr.Unauthorized("Please login to checkout")
	}

	address = normalizeAddress(address)
	if err := validateAddress(address); err != nil {
		return backend.Order{}, err
	}

	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = DefaultPaymentProvider
	}

	// 2. Place
	order, err := service.gateway.PlaceOrder(context, backend.OrderRequest{
		ShippingAddress: address,
		PaymentProvider: provider,
	}, uuid.New())
	if err != nil {
		return backend.Order{}, err
	}

	service.logger.InfoContext(context, "order_placed",
		slog.Int64("order_id", order.ID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)

	// 3. The server emptied the cart; follow it
	service.cart.Clear()
	if err := service.cart.Refresh(context); err != nil {
		service.logger.WarnContext(context, "cart refresh after checkout failed", slog.String("error", err.Error()))
	}

	return order, nil
}

// Orders lists the visitor's orders. Both paginated and bare-array replies are accepted.
func (service *Service) Orders(context context.Context, page int) (backend.Page[backend.Order], error) {
	if _, ok := service.sessions.Current(context); !ok {
		return backend.Page[backend.Order]{}, apperr.Unauthorized("Please login to view orders")
	}
	return service.gateway.Orders(context, max(page, 0))
}

// Tracking loads one order and its delivery timeline.
func (service *Service) Tracking(context context.Context, orderID int64) (Tracking, error) {
	if _, ok := service.sessions.Current(context); !ok {
		return Tracking{}, apperr.Unauthorized("Please login to view orders")
	}

	order, err := service.gateway.Order(context, orderID)
	if err != nil {
		return Tracking{}, err
	}
	return TrackingFor(order, order.CreatedAt.Time), nil
}

func normalizeAddress(address backend.Address) backend.Address {
	return backend.Address{
		Line1:    strings.TrimSpace(address.Line1),
		Line2:    strings.TrimSpace(address.Line2),
		City:     strings.TrimSpace(address.City),
		Postcode: strings.TrimSpace(address.Postcode),
		Country:  strings.TrimSpace(address.Country),
	}
}

func validateAddress(address backend.Address) error {
	validator := &validate.Validator{}
	validator.
		Required("line1", address.Line1).
		MaxLen("line1", address.Line1, 255).
		MaxLen("line2", address.Line2, 255).
		Required("city", address.City).
		MaxLen("city", address.City, 100).
		Required("postcode", address.Postcode).
		MaxLen("postcode", address.Postcode, 20).
		Required("country", address.Country).
		MaxLen("country", address.Country, 100)
	return validator.Err()
}
