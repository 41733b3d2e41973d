// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backend is the storefront's client for the bookstore REST API.

It is the only package that speaks HTTP to the backend. Every call:

  - waits on a shared token bucket so one busy storefront cannot flood the API,
  - attaches the visitor's bearer token when a [TokenSource] is configured,
  - forwards the storefront request id as X-Request-ID,
  - turns any failure into an [*apperr.AppError].

Nothing is retried. A failed call is terminal for the operation that issued it.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/ctxutil"
)

// maxResponseBytes caps how much of a backend reply is read into memory.
const maxResponseBytes = 4 << 20

// TokenSource yields the bearer token of the current visitor, or "" when the
// visitor is anonymous.
type TokenSource interface {
	Token() string
}

// Options configures a [Client].
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8081/api.
	BaseURL string

	// Timeout bounds a single call. Zero keeps the transport default.
	Timeout time.Duration

	// RateLimitRPS and RateLimitBurst shape outgoing traffic. A non-positive
	// RPS disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// Client issues typed calls against the bookstore API.
//
// # Concurrency
//
// A Client is safe for concurrent use. [Client.WithTokenSource] returns a view
// sharing the transport and limiter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	tokens     TokenSource
}

// New creates an anonymous client.
func New(options Options, logger *slog.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(options.BaseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend: invalid base URL %q", options.BaseURL)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if options.RateLimitRPS > 0 {
		burst := options.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RateLimitRPS), burst)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// WithTokenSource returns a client that authenticates with tokens.
func (client *Client) WithTokenSource(tokens TokenSource) *Client {
	view := *client
	view.tokens = tokens
	return &view
}

// # Request Plumbing

// call describes one backend round trip.
type call struct {
	method   string
	path     string
	query    url.Values
	body     any
	out      any
	fallback string
	headers  map[string]string
}

// do performs c and decodes a 2xx body into c.out when both are present.
func (client *Client) do(ctx context.Context, c call) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return apperr.Transport(fmt.Errorf("backend: rate limiter: %w", err))
	}

	request, err := client.newRequest(ctx, c)
	if err != nil {
		return apperr.Internal(err)
	}

	startTime := time.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.log(ctx).WarnContext(ctx, "backend_unreachable",
			slog.String("method", c.method),
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
		return apperr.Transport(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return apperr.Transport(fmt.Errorf("backend: read body: %w", err))
	}

	client.log(ctx).DebugContext(ctx, "backend_call",
		slog.String("method", c.method),
		slog.String("path", c.path),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return apperr.FromResponse(response.StatusCode, body, c.fallback)
	}

	if c.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, c.out); err != nil {
		return apperr.Upstream(fmt.Errorf("backend: decode %s %s: %w", c.method, c.path, err))
	}
	return nil
}

func (client *Client) newRequest(ctx context.Context, c call) (*http.Request, error) {
	endpoint := client.baseURL + c.path
	if len(c.query) > 0 {
		endpoint += "?" + c.query.Encode()
	}

	var reader io.Reader
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s %s: %w", c.method, c.path, err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, c.method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s %s: %w", c.method, c.path, err)
	}

	request.Header.Set("Accept", "application/json")
	if c.body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.tokens != nil {
		if token := client.tokens.Token(); token != "" {
			request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		}
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		request.Header.Set(constants.HeaderXRequestID, requestID)
	}
	for name, value := range c.headers {
		request.Header.Set(name, value)
	}
	return request, nil
}

// log returns the client logger tagged with the request id, if any.
func (client *Client) log(ctx context.Context) *slog.Logger {
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		return client.logger.With(slog.String("request_id", requestID))
	}
	return client.logger
}

// pathf formats a path whose segments are numeric identifiers.
func pathf(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}

// # Health

// Ping checks that the API root answers. Any 2xx to 4xx reply proves the
// backend is up; transport failures and 5xx replies do not.
func (client *Client) Ping(ctx context.Context) error {
	err := client.do(ctx, call{method: http.MethodGet, path: "", fallback: "Backend unavailable"})
	if err == nil {
		return nil
	}

	var appError *apperr.AppError
	if errors.As(err, &appError) && appError.Code != apperr.CodeBackendUnavailable && appError.Code != apperr.CodeUpstream {
		return nil
	}
	return err
}
