// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin exposes catalog and order management to administrators.

Gating here is a courtesy: the role is read from the unverified session token
so that non-admins are turned away early. The backend enforces access itself.
*/
package admin

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/platform/validate"
)

// Gateway is the part of the backend API administration needs.
type Gateway interface {
	Books(ctx context.Context, filter backend.BookFilter) (backend.Page[backend.Book], error)
	CreateBook(ctx context.Context, request backend.BookRequest) (backend.Book, error)
	UpdateBook(ctx context.Context, id int64, request backend.BookRequest) (backend.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	CreateCategory(ctx context.Context, request backend.CategoryRequest) (backend.Category, error)
	UpdateCategory(ctx context.Context, id int64, request backend.CategoryRequest) (backend.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	AllOrders(ctx context.Context, page int) (backend.Page[backend.Order], error)
	UpdateOrderStatus(ctx context.Context, id int64, status backend.OrderStatus) (backend.Order, error)
}

// SessionSource reports the visitor's session.
type SessionSource interface {
	Current(ctx context.Context) (sec.Session, bool)
}

// Service performs administrative actions for one visitor.
type Service struct {
	gateway  Gateway
	sessions SessionSource
	logger   *slog.Logger
}

// NewService constructs an admin service.
func NewService(gateway Gateway, sessions SessionSource, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, sessions: sessions, logger: logger}
}

// Allowed reports whether the visitor holds the admin role.
func (service *Service) Allowed(ctx context.Context) bool {
	session, ok := service.sessions.Current(ctx)
	return ok && session.IsAdmin()
}

// authorize turns away visitors without the admin role.
func (service *Service) authorize(ctx context.Context) error {
	session, ok := service.sessions.Current(ctx)
	if !ok {
		return apperr.Unauthorized("Please sign in to continue")
	}
	if !session.IsAdmin() {
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}

// # Books

// Books lists the catalog page by page, unfiltered.
func (service *Service) Books(ctx context.Context, page int) (backend.Page[backend.Book], error) {
	if err := service.authorize(ctx); err != nil {
		return backend.Page[backend.Book]{}, err
	}
	return service.gateway.Books(ctx, backend.BookFilter{Page: max(page, 0)})
}

// SaveBook creates a book when id is zero and replaces book id otherwise.
func (service *Service) SaveBook(ctx context.Context, id int64, request backend.BookRequest) (backend.Book, error) {
	if err := service.authorize(ctx); err != nil {
		return backend.Book{}, err
	}

	request.Title = strings.TrimSpace(request.Title)
	request.Author = strings.TrimSpace(request.Author)
	request.ISBN = strings.TrimSpace(request.ISBN)

	validator := &validate.Validator{}
	validator.
		Required("title", request.Title).
		MaxLen("title", request.Title, 255).
		Required("author", request.Author).
		MaxLen("author", request.Author, 255).
		NonNegativeMoney("price", request.Price).
		Custom("stockQuantity", request.StockQuantity < 0, "Must not be negative").
		Positive("categoryId", request.CategoryID)
	if err := validator.Err(); err != nil {
		return backend.Book{}, err
	}

	var (
		book backend.Book
		err  error
	)
	if id == 0 {
		book, err = service.gateway.CreateBook(ctx, request)
	} else {
		book, err = service.gateway.UpdateBook(ctx, id, request)
	}
	if err != nil {
		return backend.Book{}, err
	}

	service.logger.InfoContext(ctx, "book_saved", slog.Int64("book_id", book.ID), slog.Bool("created", id == 0))
	return book, nil
}

// DeleteBook removes a book.
func (service *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := service.authorize(ctx); err != nil {
		return err
	}
	if err := service.gateway.DeleteBook(ctx, id); err != nil {
		return err
	}
	service.logger.InfoContext(ctx, "book_deleted", slog.Int64("book_id", id))
	return nil
}

// # Categories

// SaveCategory creates a category when id is zero and replaces it otherwise.
func (service *Service) SaveCategory(ctx context.Context, id int64, request backend.CategoryRequest) (backend.Category, error) {
	if err := service.authorize(ctx); err != nil {
		return backend.Category{}, err
	}

	request.Name = strings.TrimSpace(request.Name)
	request.Slug = strings.TrimSpace(request.Slug)

	validator := &validate.Validator{}
	validator.
		Required("name", request.Name).
		MaxLen("name", request.Name, 100).
		Required("slug", request.Slug)
	if request.Slug != "" {
		validator.Slug("slug", request.Slug)
	}
	if err := validator.Err(); err != nil {
		return backend.Category{}, err
	}

	if id == 0 {
		return service.gateway.CreateCategory(ctx, request)
	}
	return service.gateway.UpdateCategory(ctx, id, request)
}

// DeleteCategory removes a category.
func (service *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := service.authorize(ctx); err != nil {
		return err
	}
	return service.gateway.DeleteCategory(ctx, id)
}

// # Orders

// Orders lists every customer's orders.
func (service *Service) Orders(ctx context.Context, page int) (backend.Page[backend.Order], error) {
	if err := service.authorize(ctx); err != nil {
		return backend.Page[backend.Order]{}, err
	}
	return service.gateway.AllOrders(ctx, max(page, 0))
}

// UpdateOrderStatus moves an order to status, which must be a known status.
func (service *Service) UpdateOrderStatus(ctx context.Context, id int64, status backend.OrderStatus) (backend.Order, error) {
	if err := service.authorize(ctx); err != nil {
		return backend.Order{}, err
	}

	allowed := make([]string, len(backend.OrderStatuses))
	for index, known := range backend.OrderStatuses {
		allowed[index] = string(known)
	}

	validator := &validate.Validator{}
	validator.OneOf("status", string(status), allowed...)
	if err := validator.Err(); err != nil {
		return backend.Order{}, err
	}

	order, err := service.gateway.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return backend.Order{}, err
	}

	service.logger.InfoContext(ctx, "order_status_updated", slog.Int64("order_id", id), slog.String("status", string(status)))
	return order, nil
}
