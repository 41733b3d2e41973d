// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/api"
	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/backend/backendtest"
	"github.com/taibuivan/bookstore/internal/catalog"
	"github.com/taibuivan/bookstore/internal/platform/config"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
	"github.com/taibuivan/bookstore/internal/storefront"
)

const (
	customer = "reader@example.com"
	operator = "admin@example.com"
	secret   = "0123456789abcdef0123456789abcdef"
)

type harness struct {
	fake     *backendtest.Server
	registry *storefront.Registry
	url      string
	book     backend.Book
}

// newHarness runs the full router against the fake backend.
func newHarness(t *testing.T, health api.HealthDependencies) harness {
	t.Helper()

	fake := backendtest.New(t)
	fake.AddUser(customer)
	fake.AddUser(operator, "ROLE_CUSTOMER", "ROLE_ADMIN")
	fiction := fake.AddCategory("Fiction", "fiction")
	book := fake.AddBook("Dune", "12.50", &fiction)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := prefs.OpenFile(filepath.Join(t.TempDir(), "prefs.yaml"), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	registry := storefront.NewRegistry(ctx, storefront.Dependencies{
		Backend: fake.Client(t),
		Store:   store,
		Catalog: catalog.Options{Debounce: 10 * time.Millisecond},
		Logger:  logger,
	}, time.Hour)
	t.Cleanup(registry.Close)

	cfg := &config.Config{ServerPort: "0", Environment: "development"}
	liveness, readiness := api.NewHealthHandlers(health, logger)
	server := api.NewServer(ctx, cfg, logger, api.NewVisitors([]byte(secret), nil, registry, false), api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
	})

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return harness{fake: fake, registry: registry, url: httpServer.URL, book: book}
}

// browser returns a client that keeps the visitor cookie between requests.
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

func (h harness) call(t *testing.T, client *http.Client, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, h.url+path, reader)
	require.NoError(t, err)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	var decoded envelope
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return response.StatusCode, decoded
}

func (h harness) login(t *testing.T, client *http.Client, email string) {
	t.Helper()
	status, reply := h.call(t, client, http.MethodPost, "/storefront/v1/session/login", map[string]string{
		"email":         email,
		"password":      backendtest.DefaultPassword,
		"captchaId":     backendtest.CaptchaID,
		"captchaAnswer": backendtest.CaptchaAnswer,
	})
	require.Equal(t, http.StatusOK, status, reply.Error)
}

func decodeData[T any](t *testing.T, reply envelope) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(reply.Data, &value))
	return value
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// # Health

func TestHealth(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{
		CheckBackend: func(context.Context) error { return nil },
	})
	client := browser(t)

	status, _ := h.call(t, client, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)

	status, reply := h.call(t, client, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", decodeData[map[string]any](t, reply)["status"])
}

func TestReadiness_Degraded(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{
		CheckBackend: func(context.Context) error { return errors.New("connection refused") },
	})

	status, reply := h.call(t, browser(t), http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", decodeData[map[string]any](t, reply)["status"])
}

// # Visitors

/*
TestVisitor_CookieBindsWorkspace verifies that a browser keeps one workspace
across requests while a second browser gets its own.
*/
func TestVisitor_CookieBindsWorkspace(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})

	first, second := browser(t), browser(t)
	h.login(t, first, customer)

	status, reply := h.call(t, first, http.MethodGet, "/storefront/v1/session", nil)
	require.Equal(t, http.StatusOK, status)
	session := decodeData[map[string]any](t, reply)
	assert.Equal(t, true, session["signedIn"])
	assert.Equal(t, customer, session["email"])

	_, reply = h.call(t, second, http.MethodGet, "/storefront/v1/session", nil)
	assert.Equal(t, false, decodeData[map[string]any](t, reply)["signedIn"])

	assert.Equal(t, 2, h.registry.Len())
}

func TestVisitor_ForgedCookieStartsFresh(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	client := browser(t)

	request, err := http.NewRequest(http.MethodGet, h.url+"/storefront/v1/session", nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: constants.VisitorCookieName, Value: "not-signed"})

	response, err := client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
	var issued bool
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.VisitorCookieName {
			issued = true
			assert.True(t, cookie.HttpOnly)
			assert.NotEqual(t, "not-signed", cookie.Value)
		}
	}
	assert.True(t, issued)
}

// # Guards

func TestGuards(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})

	anonymous := browser(t)
	status, reply := h.call(t, anonymous, http.MethodPost, "/storefront/v1/cart/items", map[string]any{"bookId": h.book.ID})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Please sign in to continue", reply.Error)

	status, _ = h.call(t, anonymous, http.MethodGet, "/storefront/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.call(t, anonymous, http.MethodGet, "/storefront/v1/admin/books", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	shopper := browser(t)
	h.login(t, shopper, customer)
	status, reply = h.call(t, shopper, http.MethodGet, "/storefront/v1/admin/books", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", reply.Error)

	admin := browser(t)
	h.login(t, admin, operator)
	status, _ = h.call(t, admin, http.MethodGet, "/storefront/v1/admin/books", nil)
	assert.Equal(t, http.StatusOK, status)
}

// # Shopping Flow

/*
TestShoppingFlow walks a visitor from browsing to a placed order.

Expectations:
  - The badge follows adds and is cleared by checkout.
  - The order is created once on the backend.
*/
func TestShoppingFlow(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	client := browser(t)

	// 1. Browse
	status, reply := h.call(t, client, http.MethodPost, "/storefront/v1/catalog/load", nil)
	require.Equal(t, http.StatusOK, status, reply.Error)

	status, reply = h.call(t, client, http.MethodGet, "/storefront/v1/books/"+itoa(h.book.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeData[map[string]any](t, reply)["inStock"])

	// 2. Add to cart
	h.login(t, client, customer)
	status, reply = h.call(t, client, http.MethodPost, "/storefront/v1/cart/items", map[string]any{"bookId": h.book.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, status, reply.Error)

	_, reply = h.call(t, client, http.MethodGet, "/storefront/v1/cart/count", nil)
	assert.Equal(t, map[string]int{"count": 1}, decodeData[map[string]int](t, reply))
	assert.Len(t, h.fake.CartLines(customer), 1)

	// 3. Checkout
	status, reply = h.call(t, client, http.MethodPost, "/storefront/v1/orders", map[string]any{
		"shippingAddress": map[string]string{"line1": "1 Main St", "city": "Springfield", "postcode": "12345", "country": "US"},
	})
	require.Equal(t, http.StatusCreated, status, reply.Error)
	order := decodeData[backend.Order](t, reply)
	assert.Equal(t, 1, h.fake.OrderCount())

	_, reply = h.call(t, client, http.MethodGet, "/storefront/v1/cart/count", nil)
	assert.Equal(t, 0, decodeData[map[string]int](t, reply)["count"])

	// 4. Track
	status, reply = h.call(t, client, http.MethodGet, "/storefront/v1/orders/"+itoa(order.ID)+"/tracking", nil)
	require.Equal(t, http.StatusOK, status, reply.Error)
	tracking := decodeData[map[string]any](t, reply)
	assert.Len(t, tracking["timeline"], 5)
}

/*
TestCatalog_PageControls exposes previous and next links for the listing.
*/
func TestCatalog_PageControls(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	for i := range 9 {
		h.fake.AddBook("Volume "+strconv.Itoa(i), "5.00", nil)
	}
	client := browser(t)

	status, reply := h.call(t, client, http.MethodPost, "/storefront/v1/catalog/load", nil)
	require.Equal(t, http.StatusOK, status, reply.Error)
	view := decodeData[map[string]any](t, reply)
	assert.Equal(t, false, view["hasPrev"])
	assert.Equal(t, true, view["hasNext"])

	status, reply = h.call(t, client, http.MethodPut, "/storefront/v1/catalog/page", map[string]int{"page": 1})
	require.Equal(t, http.StatusOK, status, reply.Error)
	view = decodeData[map[string]any](t, reply)
	assert.Equal(t, true, view["hasPrev"])
	assert.Equal(t, false, view["hasNext"])
	assert.EqualValues(t, 1, view["page"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	client := browser(t)
	h.login(t, client, customer)

	status, reply := h.call(t, client, http.MethodPost, "/storefront/v1/orders", map[string]any{
		"shippingAddress": map[string]string{"line1": "1 Main St", "city": "Springfield", "postcode": "12345", "country": "US"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cart is empty", reply.Error)
	assert.Equal(t, 0, h.fake.OrderCount())
}

func TestLogout_ClearsBadge(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	client := browser(t)
	h.login(t, client, customer)

	status, _ := h.call(t, client, http.MethodPost, "/storefront/v1/cart/items", map[string]any{"bookId": h.book.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, status)

	status, _ = h.call(t, client, http.MethodPost, "/storefront/v1/session/logout", nil)
	require.Equal(t, http.StatusNoContent, status)

	_, reply := h.call(t, client, http.MethodGet, "/storefront/v1/cart/count", nil)
	assert.Equal(t, 0, decodeData[map[string]int](t, reply)["count"])
}

func TestTheme_Toggle(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	client := browser(t)

	_, reply := h.call(t, client, http.MethodPost, "/storefront/v1/theme/toggle", nil)
	assert.Equal(t, true, decodeData[map[string]bool](t, reply)["darkMode"])

	_, reply = h.call(t, client, http.MethodGet, "/storefront/v1/theme", nil)
	assert.Equal(t, true, decodeData[map[string]bool](t, reply)["darkMode"])
}

func TestAdmin_CreateBook(t *testing.T) {
	h := newHarness(t, api.HealthDependencies{})
	client := browser(t)
	h.login(t, client, operator)

	status, reply := h.call(t, client, http.MethodPost, "/storefront/v1/admin/books", map[string]any{
		"title": "Emma", "author": "Jane Austen", "price": "9.99", "stockQuantity": 3, "categoryId": h.book.Category.ID,
	})
	require.Equal(t, http.StatusCreated, status, reply.Error)
	assert.Equal(t, "Emma", decodeData[backend.Book](t, reply).Title)

	status, reply = h.call(t, client, http.MethodPost, "/storefront/v1/admin/books", map[string]any{"title": "No author"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", reply.Code)
}
