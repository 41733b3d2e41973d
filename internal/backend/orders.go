// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/taibuivan/bookstore/internal/platform/constants"
)

// PlaceOrder submits the visitor's cart as an order.
//
// idempotencyKey is sent as Idempotency-Key so a resubmitted form cannot create
// a second order on backends that honour the header.
func (client *Client) PlaceOrder(ctx context.Context, request OrderRequest, idempotencyKey string) (Order, error) {
	var order Order
	err := client.do(ctx, call{
		method:   http.MethodPost,
		path:     "/orders",
		body:     request,
		out:      &order,
		fallback: "Checkout failed",
		headers:  map[string]string{constants.HeaderIdempotencyKey: idempotencyKey},
	})
	return order, err
}

// Orders lists the visitor's orders, newest first.
func (client *Client) Orders(ctx context.Context, page int) (Page[Order], error) {
	var orders Page[Order]
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/orders",
		query:    url.Values{"page": {strconv.Itoa(page)}},
		out:      &orders,
		fallback: "Failed to load orders",
	})
	return orders, err
}

// Order fetches one of the visitor's orders.
func (client *Client) Order(ctx context.Context, id int64) (Order, error) {
	var order Order
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     pathf("/orders/%d", id),
		out:      &order,
		fallback: "Failed to load order",
	})
	return order, err
}
