// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backendtest runs an in-memory bookstore API for tests.

The fake speaks the same wire format as the real backend (paginated wrappers,
plain-text errors, HS256 bearer tokens carrying sub/roles/exp) so client
packages can be tested end to end without mocks.

Tests steer it with:

  - [Server.Fail]: answer a route with a fixed error until cleared.
  - [Server.Hook]: run a function before a route is handled (block, count, delay).
  - [Server.Calls]: count how often a route was hit.

Routes are named "METHOD /pattern" relative to the API root, e.g.
"POST /cart/items" or "PUT /cart/items/{itemID}".
*/
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/taibuivan/bookstore/internal/backend"
)

const (
	// CaptchaID and CaptchaAnswer solve the only challenge the fake issues.
	CaptchaID     = "captcha-1"
	CaptchaAnswer = "4"

	// DefaultPassword is set on accounts created with [Server.AddUser].
	DefaultPassword = "secret1"
)

type account struct {
	profile  backend.UserProfile
	password string
}

type failure struct {
	status int
	body   string
}

// Server is the fake API. All exported fields may be changed between calls.
type Server struct {
	*httptest.Server

	// OrdersAsArray answers order listings with a bare array instead of a page.
	OrdersAsArray bool

	// TokenTTL is the lifetime of tokens issued by login.
	TokenTTL time.Duration

	mu         sync.Mutex
	secret     []byte
	nextID     int64
	books      []backend.Book
	categories []backend.Category
	accounts   map[string]*account
	carts      map[string][]backend.CartItem
	orders     []ownedOrder
	reviews    map[int64][]backend.Review
	idempotent map[string]int64
	failures   map[string]failure
	hooks      map[string]func(*http.Request)
	calls      map[string]int
}

type ownedOrder struct {
	owner string
	order backend.Order
}

// New starts a fake API and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()

	server := &Server{
		TokenTTL:   time.Hour,
		secret:     []byte("backendtest-signing-key"),
		nextID:     100,
		accounts:   make(map[string]*account),
		carts:      make(map[string][]backend.CartItem),
		reviews:    make(map[int64][]backend.Review),
		idempotent: make(map[string]int64),
		failures:   make(map[string]failure),
		hooks:      make(map[string]func(*http.Request)),
		calls:      make(map[string]int),
	}

	router := chi.NewRouter()
	router.Route("/api", func(api chi.Router) {
		server.routes(api)
	})

	server.Server = httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// APIURL is the base URL to configure a [backend.Client] with.
func (server *Server) APIURL() string {
	return server.URL + "/api"
}

// Client returns an anonymous client for the fake, without rate limiting.
func (server *Server) Client(t testing.TB) *backend.Client {
	t.Helper()
	client, err := backend.New(backend.Options{BaseURL: server.APIURL()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("backendtest: client: %v", err)
	}
	return client
}

// # Fixtures

// AddUser registers an account with [DefaultPassword].
func (server *Server) AddUser(email string, roles ...string) {
	server.mu.Lock()
	defer server.mu.Unlock()

	if len(roles) == 0 {
		roles = []string{"ROLE_CUSTOMER"}
	}
	server.nextID++
	server.accounts[email] = &account{
		profile:  backend.UserProfile{ID: server.nextID, Email: email, FirstName: "Test", LastName: "User", Roles: roles},
		password: DefaultPassword,
	}
}

// AddCategory stores a category and returns it with its id.
func (server *Server) AddCategory(name, slug string) backend.Category {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.nextID++
	category := backend.Category{ID: server.nextID, Name: name, Slug: slug}
	server.categories = append(server.categories, category)
	return category
}

// AddBook stores a book priced at price with ten copies in stock.
func (server *Server) AddBook(title string, price string, category *backend.Category) backend.Book {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.nextID++
	book := backend.Book{
		ID:            server.nextID,
		Title:         title,
		Author:        "Author of " + title,
		Description:   "About " + title,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 10,
		Category:      category,
	}
	server.books = append(server.books, book)
	return book
}

// IssueToken signs a token for email valid for ttl (negative ttl yields an
// expired token).
func (server *Server) IssueToken(email string, roles []string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub":   email,
		"roles": roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(server.secret)
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	return signed
}

// CartLines returns a copy of email's server-side cart.
func (server *Server) CartLines(email string) []backend.CartItem {
	server.mu.Lock()
	defer server.mu.Unlock()
	return append([]backend.CartItem(nil), server.carts[email]...)
}

// OrderCount returns how many orders exist in total.
func (server *Server) OrderCount() int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return len(server.orders)
}

// # Steering

// Fail answers route with status and body until [Server.Clear] is called.
func (server *Server) Fail(route string, status int, body string) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.failures[route] = failure{status: status, body: body}
}

// Hook runs fn before route is handled. fn runs without the server lock.
func (server *Server) Hook(route string, fn func(*http.Request)) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.hooks[route] = fn
}

// Clear removes failures and hooks for route.
func (server *Server) Clear(route string) {
	server.mu.Lock()
	defer server.mu.Unlock()
	delete(server.failures, route)
	delete(server.hooks, route)
}

// Calls reports how many requests reached route.
func (server *Server) Calls(route string) int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.calls[route]
}

// # Plumbing

// handle registers fn under method and pattern with steering applied.
func (server *Server) handle(router chi.Router, method, pattern string, fn http.HandlerFunc) {
	route := method + " " + pattern
	router.Method(method, pattern, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		server.mu.Lock()
		server.calls[route]++
		hook := server.hooks[route]
		fail, failing := server.failures[route]
		server.mu.Unlock()

		if hook != nil {
			hook(request)
		}
		if failing {
			writeText(writer, fail.status, fail.body)
			return
		}
		fn(writer, request)
	}))
}

// subject returns the verified email of the bearer token, or "".
func (server *Server) subject(request *http.Request) (string, []string) {
	header := request.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return server.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", nil
	}

	subject, _ := claims.GetSubject()
	var roles []string
	if list, ok := claims["roles"].([]any); ok {
		for _, role := range list {
			if name, ok := role.(string); ok {
				roles = append(roles, name)
			}
		}
	}
	return subject, roles
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func writeText(writer http.ResponseWriter, status int, body string) {
	if strings.HasPrefix(strings.TrimSpace(body), "{") {
		writer.Header().Set("Content-Type", "application/json")
	} else {
		writer.Header().Set("Content-Type", "text/plain")
	}
	writer.WriteHeader(status)
	_, _ = io.WriteString(writer, body)
}

func writeMessage(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]any{"status": status, "message": message})
}

func springPage[T any](items []T, page, size int) map[string]any {
	if items == nil {
		items = []T{}
	}
	if size <= 0 {
		size = 20
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	start := min(page*size, total)
	end := min(start+size, total)
	return map[string]any{
		"content":       items[start:end],
		"totalPages":    totalPages,
		"totalElements": total,
		"number":        page,
		"size":          size,
	}
}
