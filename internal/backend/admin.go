// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// # Books

// CreateBook adds a catalog entry.
func (client *Client) CreateBook(ctx context.Context, request BookRequest) (Book, error) {
	var book Book
	err := client.do(ctx, call{
		method:   http.MethodPost,
		path:     "/admin/books",
		body:     request,
		out:      &book,
		fallback: "Failed to save book",
	})
	return book, err
}

// UpdateBook replaces a catalog entry.
func (client *Client) UpdateBook(ctx context.Context, id int64, request BookRequest) (Book, error) {
	var book Book
	err := client.do(ctx, call{
		method:   http.MethodPut,
		path:     pathf("/admin/books/%d", id),
		body:     request,
		out:      &book,
		fallback: "Failed to save book",
	})
	return book, err
}

// DeleteBook removes a catalog entry.
func (client *Client) DeleteBook(ctx context.Context, id int64) error {
	return client.do(ctx, call{
		method:   http.MethodDelete,
		path:     pathf("/admin/books/%d", id),
		fallback: "Failed to delete book",
	})
}

// # Categories

// CreateCategory adds a category.
func (client *Client) CreateCategory(ctx context.Context, request CategoryRequest) (Category, error) {
	var category Category
	err := client.do(ctx, call{
		method:   http.MethodPost,
		path:     "/admin/categories",
		body:     request,
		out:      &category,
		fallback: "Failed to save category",
	})
	return category, err
}

// UpdateCategory replaces a category.
func (client *Client) UpdateCategory(ctx context.Context, id int64, request CategoryRequest) (Category, error) {
	var category Category
	err := client.do(ctx, call{
		method:   http.MethodPut,
		path:     pathf("/admin/categories/%d", id),
		body:     request,
		out:      &category,
		fallback: "Failed to save category",
	})
	return category, err
}

// DeleteCategory removes a category.
func (client *Client) DeleteCategory(ctx context.Context, id int64) error {
	return client.do(ctx, call{
		method:   http.MethodDelete,
		path:     pathf("/admin/categories/%d", id),
		fallback: "Failed to delete category",
	})
}

// # Orders

// AllOrders lists every customer's orders, newest first.
func (client *Client) AllOrders(ctx context.Context, page int) (Page[Order], error) {
	var orders Page[Order]
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/admin/orders",
		query:    url.Values{"page": {strconv.Itoa(page)}},
		out:      &orders,
		fallback: "Failed to load orders",
	})
	return orders, err
}

// UpdateOrderStatus moves an order to status.
func (client *Client) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (Order, error) {
	var order Order
	err := client.do(ctx, call{
		method:   http.MethodPut,
		path:     pathf("/admin/orders/%d/status", id),
		body:     statusRequest{Status: status},
		out:      &order,
		fallback: "Failed to update status",
	})
	return order, err
}
