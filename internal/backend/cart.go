// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
)

// Cart fetches the authoritative cart of the signed-in visitor.
func (client *Client) Cart(ctx context.Context) (Cart, error) {
	var cart Cart
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/cart",
		out:      &cart,
		fallback: "Failed to load cart",
	})
	return normalizeCart(cart), err
}

// AddToCart adds copies of a book and returns the updated cart.
func (client *Client) AddToCart(ctx context.Context, request AddToCartRequest) (Cart, error) {
	var cart Cart
	err := client.do(ctx, call{
		method:   http.MethodPost,
		path:     "/cart/items",
		body:     request,
		out:      &cart,
		fallback: "Failed to add to cart",
	})
	return normalizeCart(cart), err
}

// UpdateCartItem sets the quantity of a cart line.
func (client *Client) UpdateCartItem(ctx context.Context, lineID int64, quantity int) (Cart, error) {
	var cart Cart
	err := client.do(ctx, call{
		method:   http.MethodPut,
		path:     pathf("/cart/items/%d", lineID),
		body:     UpdateQuantityRequest{Quantity: quantity},
		out:      &cart,
		fallback: "Failed to update quantity",
	})
	return normalizeCart(cart), err
}

// RemoveCartItem deletes a cart line.
func (client *Client) RemoveCartItem(ctx context.Context, lineID int64) error {
	return client.do(ctx, call{
		method:   http.MethodDelete,
		path:     pathf("/cart/items/%d", lineID),
		fallback: "Failed to remove item",
	})
}

// ClearCart empties the cart.
func (client *Client) ClearCart(ctx context.Context) error {
	return client.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/cart",
		fallback: "Failed to clear cart",
	})
}

func normalizeCart(cart Cart) Cart {
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return cart
}
