// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire storefront.

It defines default timeouts, rate limits, persisted keys and cross-cutting header
names that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Storefront: Catalog page size, persisted key names, cookie names.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "bookstore-storefront"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 25 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds dependency checks performed before serving.
	StartupTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// WorkspaceSweepInterval is how often idle visitor workspaces are evicted.
	WorkspaceSweepInterval = 1 * time.Minute
)

// # Catalog

const (
	// CatalogPageSize is the fixed number of books per catalog page.
	CatalogPageSize = 8

	// ExcerptWords is the word budget for book descriptions on detail pages.
	ExcerptWords = 100

	// DefaultPaymentProvider is sent when the visitor does not pick one.
	DefaultPaymentProvider = "simulated"
)

// # Persisted Keys

const (
	// PrefKeyToken stores the bearer token issued by the backend.
	PrefKeyToken = "token"

	// PrefKeyDarkMode stores the theme flag as "true" or "false".
	PrefKeyDarkMode = "darkMode"

	// RedisPrefixPrefs namespaces persisted storefront keys in Redis.
	RedisPrefixPrefs = "storefront:prefs:"
)

// # HTTP Headers

const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderOrigin         = "Origin"
	HeaderAuthorization  = "Authorization"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// # Visitor Cookie

const (
	// VisitorCookieName carries the signed visitor id that selects a workspace.
	VisitorCookieName = "storefront_visitor"

	// VisitorCookieMaxAge is the browser lifetime of the visitor cookie.
	VisitorCookieMaxAge = 30 * 24 * time.Hour
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)
