// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookstore/internal/platform/request"
	"github.com/taibuivan/bookstore/internal/platform/respond"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/pkg/pagination"
)

// adminHandler serves catalog and order management.
type adminHandler struct{}

// Routes mounts the admin endpoints behind the admin role.
func (handler *adminHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(resolveSession, sec.RoleAdmin))

	// Books
	router.Get("/books", handler.listBooks)
	router.Post("/books", handler.saveBook)
	router.Put("/books/{bookID}", handler.saveBook)
	router.Delete("/books/{bookID}", handler.deleteBook)

	// Categories
	router.Post("/categories", handler.saveCategory)
	router.Put("/categories/{categoryID}", handler.saveCategory)
	router.Delete("/categories/{categoryID}", handler.deleteCategory)

	// Orders
	router.Get("/orders", handler.listOrders)
	router.Get("/orders/statuses", handler.statuses)
	router.Put("/orders/{orderID}/status", handler.updateStatus)

	return router
}

// optionalPathID reads an id segment that is absent on create routes.
func optionalPathID(request *http.Request, name string) (int64, error) {
	if requestutil.Param(request, name) == "" {
		return 0, nil
	}
	return requestutil.ID(request, name)
}

func (handler *adminHandler) listBooks(writer http.ResponseWriter, request *http.Request) {
	books, err := workspaceFrom(request).Admin.Books(request.Context(), pagination.PageFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	paginated(writer, books)
}

/*
POST /storefront/v1/admin/books and PUT /storefront/v1/admin/books/{bookID}.

Request:
  - body: backend.BookRequest (title, author required; price and stock not negative; categoryId required)

Response:
  - 201: created book
  - 200: updated book
*/
func (handler *adminHandler) saveBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := optionalPathID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body backend.BookRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := workspaceFrom(request).Admin.SaveBook(request.Context(), bookID, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if bookID == 0 {
		respond.Created(writer, book)
		return
	}
	respond.OK(writer, book)
}

func (handler *adminHandler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Admin.DeleteBook(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *adminHandler) saveCategory(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := optionalPathID(request, "categoryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body backend.CategoryRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := workspaceFrom(request).Admin.SaveCategory(request.Context(), categoryID, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if categoryID == 0 {
		respond.Created(writer, category)
		return
	}
	respond.OK(writer, category)
}

func (handler *adminHandler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := requestutil.ID(request, "categoryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Admin.DeleteCategory(request.Context(), categoryID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *adminHandler) listOrders(writer http.ResponseWriter, request *http.Request) {
	orders, err := workspaceFrom(request).Admin.Orders(request.Context(), pagination.PageFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	paginated(writer, orders)
}

func (handler *adminHandler) statuses(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, backend.OrderStatuses)
}

/*
PUT /storefront/v1/admin/orders/{orderID}/status.

Request:
  - body: {status: PENDING | PAID | PROCESSING | SHIPPED | DELIVERED | CANCELLED}
*/
func (handler *adminHandler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	orderID, err := requestutil.ID(request, "orderID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body struct {
		Status backend.OrderStatus `json:"status"`
	}
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := workspaceFrom(request).Admin.UpdateOrderStatus(request.Context(), orderID, body.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, order)
}
