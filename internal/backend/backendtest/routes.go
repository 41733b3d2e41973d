// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backendtest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/taibuivan/bookstore/internal/backend"
)

func (server *Server) routes(api chi.Router) {
	server.handle(api, http.MethodGet, "/", func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]string{"message": "Bookstore API"})
	})

	// Accounts
	server.handle(api, http.MethodGet, "/auth/captcha", server.captcha)
	server.handle(api, http.MethodPost, "/auth/login", server.login)
	server.handle(api, http.MethodPost, "/auth/register", server.register)
	server.handle(api, http.MethodGet, "/users/me", server.authed(server.me))
	server.handle(api, http.MethodPut, "/users/me", server.authed(server.updateMe))
	server.handle(api, http.MethodDelete, "/users/me", server.authed(server.deleteMe))
	server.handle(api, http.MethodPut, "/users/me/password", server.authed(server.changePassword))

	// Catalog
	server.handle(api, http.MethodGet, "/books", server.listBooks)
	server.handle(api, http.MethodGet, "/books/{bookID}", server.getBook)
	server.handle(api, http.MethodGet, "/categories", server.listCategories)
	server.handle(api, http.MethodGet, "/books/{bookID}/reviews", server.listReviews)
	server.handle(api, http.MethodPost, "/books/{bookID}/reviews", server.authed(server.createReview))
	server.handle(api, http.MethodPut, "/books/{bookID}/reviews/{reviewID}", server.authed(server.updateReview))
	server.handle(api, http.MethodDelete, "/books/{bookID}/reviews/{reviewID}", server.authed(server.deleteReview))

	// Cart
	server.handle(api, http.MethodGet, "/cart", server.authed(server.getCart))
	server.handle(api, http.MethodPost, "/cart/items", server.authed(server.addToCart))
	server.handle(api, http.MethodPut, "/cart/items/{itemID}", server.authed(server.updateCartItem))
	server.handle(api, http.MethodDelete, "/cart/items/{itemID}", server.authed(server.removeCartItem))
	server.handle(api, http.MethodDelete, "/cart", server.authed(server.clearCart))

	// Orders
	server.handle(api, http.MethodPost, "/orders", server.authed(server.placeOrder))
	server.handle(api, http.MethodGet, "/orders", server.authed(server.listOrders))
	server.handle(api, http.MethodGet, "/orders/{orderID}", server.authed(server.getOrder))

	// Administration
	server.handle(api, http.MethodPost, "/admin/books", server.admin(server.saveBook))
	server.handle(api, http.MethodPut, "/admin/books/{bookID}", server.admin(server.saveBook))
	server.handle(api, http.MethodDelete, "/admin/books/{bookID}", server.admin(server.deleteBook))
	server.handle(api, http.MethodPost, "/admin/categories", server.admin(server.saveCategory))
	server.handle(api, http.MethodPut, "/admin/categories/{categoryID}", server.admin(server.saveCategory))
	server.handle(api, http.MethodDelete, "/admin/categories/{categoryID}", server.admin(server.deleteCategory))
	server.handle(api, http.MethodGet, "/admin/orders", server.admin(server.listAllOrders))
	server.handle(api, http.MethodPut, "/admin/orders/{orderID}/status", server.admin(server.updateOrderStatus))
}

// # Guards

type authedHandler func(writer http.ResponseWriter, request *http.Request, email string)

func (server *Server) authed(next authedHandler) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		email, _ := server.subject(request)
		if email == "" {
			writeJSON(writer, http.StatusUnauthorized, map[string]any{"status": 401, "error": "Unauthorized"})
			return
		}
		next(writer, request, email)
	}
}

func (server *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return server.authed(func(writer http.ResponseWriter, request *http.Request, _ string) {
		_, roles := server.subject(request)
		if !slices.Contains(roles, "ROLE_ADMIN") {
			writeJSON(writer, http.StatusForbidden, map[string]any{"status": 403, "error": "Forbidden"})
			return
		}
		next(writer, request)
	})
}

func idParam(request *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	return id
}

func decode(writer http.ResponseWriter, request *http.Request, target any) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		writeMessage(writer, http.StatusBadRequest, "Malformed JSON request")
		return false
	}
	return true
}

// # Accounts

func (server *Server) captcha(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, backend.Captcha{ID: CaptchaID, Question: "What is 2 + 2?"})
}

func (server *Server) login(writer http.ResponseWriter, request *http.Request) {
	var body backend.LoginRequest
	if !decode(writer, request, &body) {
		return
	}
	if body.CaptchaID != CaptchaID || body.CaptchaAnswer != CaptchaAnswer {
		writeText(writer, http.StatusBadRequest, "Invalid CAPTCHA")
		return
	}

	server.mu.Lock()
	acct, ok := server.accounts[body.Email]
	ttl := server.TokenTTL
	server.mu.Unlock()

	if !ok || acct.password != body.Password {
		writeMessage(writer, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(writer, http.StatusOK, map[string]string{"token": server.IssueToken(body.Email, acct.profile.Roles, ttl)})
}

func (server *Server) register(writer http.ResponseWriter, request *http.Request) {
	var body backend.RegisterRequest
	if !decode(writer, request, &body) {
		return
	}
	if body.CaptchaID != CaptchaID || body.CaptchaAnswer != CaptchaAnswer {
		writeText(writer, http.StatusBadRequest, "Invalid CAPTCHA")
		return
	}
	if body.Password != body.ConfirmPassword {
		writeText(writer, http.StatusBadRequest, "Passwords do not match")
		return
	}

	server.mu.Lock()
	_, taken := server.accounts[body.Email]
	server.mu.Unlock()
	if taken {
		writeText(writer, http.StatusBadRequest, "Email already in use")
		return
	}

	server.AddUser(body.Email)
	server.mu.Lock()
	acct := server.accounts[body.Email]
	acct.password = body.Password
	acct.profile.FirstName = body.FirstName
	acct.profile.LastName = body.LastName
	server.mu.Unlock()

	writeText(writer, http.StatusOK, "User registered successfully")
}

func (server *Server) me(writer http.ResponseWriter, _ *http.Request, email string) {
	server.mu.Lock()
	defer server.mu.Unlock()

	acct, ok := server.accounts[email]
	if !ok {
		writeMessage(writer, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(writer, http.StatusOK, acct.profile)
}

func (server *Server) updateMe(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.UpdateProfileRequest
	if !decode(writer, request, &body) {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	acct, ok := server.accounts[email]
	if !ok {
		writeMessage(writer, http.StatusNotFound, "User not found")
		return
	}
	acct.profile.FirstName = body.FirstName
	acct.profile.LastName = body.LastName
	writeJSON(writer, http.StatusOK, acct.profile)
}

func (server *Server) deleteMe(writer http.ResponseWriter, _ *http.Request, email string) {
	server.mu.Lock()
	delete(server.accounts, email)
	delete(server.carts, email)
	server.mu.Unlock()
	writer.WriteHeader(http.StatusNoContent)
}

func (server *Server) changePassword(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.ChangePasswordRequest
	if !decode(writer, request, &body) {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	acct, ok := server.accounts[email]
	if !ok || acct.password != body.OldPassword {
		writeText(writer, http.StatusBadRequest, "Old password is incorrect")
		return
	}
	acct.password = body.NewPassword
	writeText(writer, http.StatusOK, "Password changed successfully")
}

// # Catalog

func (server *Server) listBooks(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	size, _ := strconv.Atoi(query.Get("size"))
	search := strings.ToLower(query.Get("search"))
	categoryID, _ := strconv.ParseInt(query.Get("categoryId"), 10, 64)

	server.mu.Lock()
	var matched []backend.Book
	for _, book := range server.books {
		if search != "" && !strings.Contains(strings.ToLower(book.Title+" "+book.Author+" "+book.ISBN), search) {
			continue
		}
		if categoryID != 0 && (book.Category == nil || book.Category.ID != categoryID) {
			continue
		}
		matched = append(matched, book)
	}
	server.mu.Unlock()

	writeJSON(writer, http.StatusOK, springPage(matched, page, size))
}

func (server *Server) getBook(writer http.ResponseWriter, request *http.Request) {
	id := idParam(request, "bookID")

	server.mu.Lock()
	defer server.mu.Unlock()

	for _, book := range server.books {
		if book.ID == id {
			writeJSON(writer, http.StatusOK, book)
			return
		}
	}
	writeMessage(writer, http.StatusNotFound, "Book not found")
}

func (server *Server) listCategories(writer http.ResponseWriter, _ *http.Request) {
	server.mu.Lock()
	defer server.mu.Unlock()

	categories := append([]backend.Category{}, server.categories...)
	writeJSON(writer, http.StatusOK, categories)
}

func (server *Server) listReviews(writer http.ResponseWriter, request *http.Request) {
	page, _ := strconv.Atoi(request.URL.Query().Get("page"))

	server.mu.Lock()
	reviews := append([]backend.Review(nil), server.reviews[idParam(request, "bookID")]...)
	server.mu.Unlock()

	writeJSON(writer, http.StatusOK, springPage(reviews, page, 10))
}

func (server *Server) createReview(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.ReviewRequest
	if !decode(writer, request, &body) {
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		writeMessage(writer, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	bookID := idParam(request, "bookID")

	server.mu.Lock()
	defer server.mu.Unlock()

	server.nextID++
	review := backend.Review{
		ID:        server.nextID,
		Rating:    body.Rating,
		Comment:   body.Comment,
		User:      &backend.ReviewAuthor{Email: email, FirstName: "Test"},
		CreatedAt: backend.Timestamp{Time: time.Now().UTC()},
	}
	server.reviews[bookID] = append(server.reviews[bookID], review)
	writeJSON(writer, http.StatusOK, review)
}

func (server *Server) updateReview(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.ReviewRequest
	if !decode(writer, request, &body) {
		return
	}

	bookID, reviewID := idParam(request, "bookID"), idParam(request, "reviewID")

	server.mu.Lock()
	defer server.mu.Unlock()

	for i, review := range server.reviews[bookID] {
		if review.ID != reviewID {
			continue
		}
		if !review.AuthoredBy(email) {
			writeMessage(writer, http.StatusForbidden, "You can only edit your own reviews")
			return
		}
		review.Rating, review.Comment = body.Rating, body.Comment
		server.reviews[bookID][i] = review
		writeJSON(writer, http.StatusOK, review)
		return
	}
	writeMessage(writer, http.StatusNotFound, "Review not found")
}

func (server *Server) deleteReview(writer http.ResponseWriter, request *http.Request, email string) {
	bookID, reviewID := idParam(request, "bookID"), idParam(request, "reviewID")

	server.mu.Lock()
	defer server.mu.Unlock()

	reviews := server.reviews[bookID]
	for i, review := range reviews {
		if review.ID == reviewID && review.AuthoredBy(email) {
			server.reviews[bookID] = slices.Delete(reviews, i, i+1)
			writer.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(writer, http.StatusNotFound, "Review not found")
}

// # Cart

func (server *Server) cartLocked(email string) backend.Cart {
	items := append([]backend.CartItem{}, server.carts[email]...)
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return backend.Cart{ID: 1, Items: items, TotalAmount: total}
}

func (server *Server) getCart(writer http.ResponseWriter, _ *http.Request, email string) {
	server.mu.Lock()
	defer server.mu.Unlock()
	writeJSON(writer, http.StatusOK, server.cartLocked(email))
}

func (server *Server) addToCart(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.AddToCartRequest
	if !decode(writer, request, &body) {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	index := slices.IndexFunc(server.books, func(book backend.Book) bool { return book.ID == body.BookID })
	if index < 0 {
		writeMessage(writer, http.StatusNotFound, "Book not found")
		return
	}
	book := server.books[index]

	lines := server.carts[email]
	for i, line := range lines {
		if line.BookID == body.BookID {
			lines[i].Quantity += body.Quantity
			lines[i].Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
			writeJSON(writer, http.StatusOK, server.cartLocked(email))
			return
		}
	}

	if body.Quantity > book.StockQuantity {
		writeText(writer, http.StatusBadRequest, "Insufficient stock")
		return
	}

	server.nextID++
	server.carts[email] = append(lines, backend.CartItem{
		ID:        server.nextID,
		BookID:    book.ID,
		BookTitle: book.Title,
		Quantity:  body.Quantity,
		UnitPrice: book.Price,
		Subtotal:  book.Price.Mul(decimal.NewFromInt(int64(body.Quantity))),
	})
	writeJSON(writer, http.StatusOK, server.cartLocked(email))
}

func (server *Server) updateCartItem(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.UpdateQuantityRequest
	if !decode(writer, request, &body) {
		return
	}
	lineID := idParam(request, "itemID")

	server.mu.Lock()
	defer server.mu.Unlock()

	lines := server.carts[email]
	for i, line := range lines {
		if line.ID == lineID {
			lines[i].Quantity = body.Quantity
			lines[i].Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(body.Quantity)))
			writeJSON(writer, http.StatusOK, server.cartLocked(email))
			return
		}
	}
	writeMessage(writer, http.StatusNotFound, "Cart item not found")
}

func (server *Server) removeCartItem(writer http.ResponseWriter, request *http.Request, email string) {
	lineID := idParam(request, "itemID")

	server.mu.Lock()
	defer server.mu.Unlock()

	server.carts[email] = slices.DeleteFunc(server.carts[email], func(line backend.CartItem) bool { return line.ID == lineID })
	writer.WriteHeader(http.StatusNoContent)
}

func (server *Server) clearCart(writer http.ResponseWriter, _ *http.Request, email string) {
	server.mu.Lock()
	delete(server.carts, email)
	server.mu.Unlock()
	writer.WriteHeader(http.StatusNoContent)
}

// # Orders

func (server *Server) placeOrder(writer http.ResponseWriter, request *http.Request, email string) {
	var body backend.OrderRequest
	if !decode(writer, request, &body) {
		return
	}
	key := request.Header.Get("Idempotency-Key")

	server.mu.Lock()
	defer server.mu.Unlock()

	if previous, seen := server.idempotent[key]; seen && key != "" {
		for _, owned := range server.orders {
			if owned.order.ID == previous {
				writeJSON(writer, http.StatusOK, owned.order)
				return
			}
		}
	}

	lines := server.carts[email]
	if len(lines) == 0 {
		writeText(writer, http.StatusBadRequest, "Cart is empty")
		return
	}

	cart := server.cartLocked(email)
	server.nextID++
	order := backend.Order{
		ID:              server.nextID,
		TotalAmount:     cart.TotalAmount,
		Status:          backend.OrderPending,
		PaymentStatus:   "SUCCESS",
		PaymentProvider: body.PaymentProvider,
		ShippingAddress: body.ShippingAddress,
		CreatedAt:       backend.Timestamp{Time: time.Now().UTC()},
	}
	for _, line := range lines {
		order.OrderItems = append(order.OrderItems, backend.OrderItem{
			ID:        line.ID,
			BookID:    line.BookID,
			BookTitle: line.BookTitle,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
	}

	server.orders = append(server.orders, ownedOrder{owner: email, order: order})
	if key != "" {
		server.idempotent[key] = order.ID
	}
	delete(server.carts, email)
	writeJSON(writer, http.StatusOK, order)
}

func (server *Server) ordersLocked(email string) []backend.Order {
	var orders []backend.Order
	for i := len(server.orders) - 1; i >= 0; i-- {
		if email == "" || server.orders[i].owner == email {
			orders = append(orders, server.orders[i].order)
		}
	}
	if orders == nil {
		orders = []backend.Order{}
	}
	return orders
}

func (server *Server) listOrders(writer http.ResponseWriter, request *http.Request, email string) {
	page, _ := strconv.Atoi(request.URL.Query().Get("page"))

	server.mu.Lock()
	orders := server.ordersLocked(email)
	asArray := server.OrdersAsArray
	server.mu.Unlock()

	if asArray {
		writeJSON(writer, http.StatusOK, orders)
		return
	}
	writeJSON(writer, http.StatusOK, springPage(orders, page, 20))
}

func (server *Server) getOrder(writer http.ResponseWriter, request *http.Request, email string) {
	id := idParam(request, "orderID")

	server.mu.Lock()
	defer server.mu.Unlock()

	for _, owned := range server.orders {
		if owned.order.ID == id && owned.owner == email {
			writeJSON(writer, http.StatusOK, owned.order)
			return
		}
	}
	writeMessage(writer, http.StatusNotFound, "Order not found")
}

// # Administration

func (server *Server) saveBook(writer http.ResponseWriter, request *http.Request) {
	var body backend.BookRequest
	if !decode(writer, request, &body) {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	var category *backend.Category
	for i := range server.categories {
		if server.categories[i].ID == body.CategoryID {
			category = &server.categories[i]
		}
	}

	book := backend.Book{
		Title:         body.Title,
		Author:        body.Author,
		Description:   body.Description,
		ISBN:          body.ISBN,
		Price:         body.Price,
		CoverImageURL: body.CoverImageURL,
		StockQuantity: body.StockQuantity,
		Category:      category,
	}

	if id := idParam(request, "bookID"); id != 0 {
		for i := range server.books {
			if server.books[i].ID == id {
				book.ID = id
				server.books[i] = book
				writeJSON(writer, http.StatusOK, book)
				return
			}
		}
		writeMessage(writer, http.StatusNotFound, "Book not found")
		return
	}

	server.nextID++
	book.ID = server.nextID
	server.books = append(server.books, book)
	writeJSON(writer, http.StatusOK, book)
}

func (server *Server) deleteBook(writer http.ResponseWriter, request *http.Request) {
	id := idParam(request, "bookID")

	server.mu.Lock()
	server.books = slices.DeleteFunc(server.books, func(book backend.Book) bool { return book.ID == id })
	server.mu.Unlock()
	writer.WriteHeader(http.StatusNoContent)
}

func (server *Server) saveCategory(writer http.ResponseWriter, request *http.Request) {
	var body backend.CategoryRequest
	if !decode(writer, request, &body) {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	category := backend.Category{Name: body.Name, Slug: body.Slug, Description: body.Description}
	if id := idParam(request, "categoryID"); id != 0 {
		for i := range server.categories {
			if server.categories[i].ID == id {
				category.ID = id
				server.categories[i] = category
				writeJSON(writer, http.StatusOK, category)
				return
			}
		}
		writeMessage(writer, http.StatusNotFound, "Category not found")
		return
	}

	server.nextID++
	category.ID = server.nextID
	server.categories = append(server.categories, category)
	writeJSON(writer, http.StatusOK, category)
}

func (server *Server) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id := idParam(request, "categoryID")

	server.mu.Lock()
	server.categories = slices.DeleteFunc(server.categories, func(category backend.Category) bool { return category.ID == id })
	server.mu.Unlock()
	writer.WriteHeader(http.StatusNoContent)
}

func (server *Server) listAllOrders(writer http.ResponseWriter, request *http.Request) {
	page, _ := strconv.Atoi(request.URL.Query().Get("page"))

	server.mu.Lock()
	orders := server.ordersLocked("")
	server.mu.Unlock()

	writeJSON(writer, http.StatusOK, springPage(orders, page, 20))
}

func (server *Server) updateOrderStatus(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Status backend.OrderStatus `json:"status"`
	}
	if !decode(writer, request, &body) {
		return
	}
	id := idParam(request, "orderID")

	server.mu.Lock()
	defer server.mu.Unlock()

	for i := range server.orders {
		if server.orders[i].order.ID == id {
			server.orders[i].order.Status = body.Status
			writeJSON(writer, http.StatusOK, server.orders[i].order)
			return
		}
	}
	writeMessage(writer, http.StatusNotFound, "Order not found")
}
