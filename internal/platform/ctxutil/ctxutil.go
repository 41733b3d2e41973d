// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/bookstore/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Visitor Identity

// WithVisitorID returns a new context carrying the signed visitor id.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyVisitor, visitorID)
}

// GetVisitorID retrieves the visitor id, or an empty string for requests that
// did not pass through the visitor middleware.
func GetVisitorID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyVisitor).(string)
	return id
}

// Detach returns a background context that keeps the tracing values of ctx
// (request id, logger, visitor) but not its deadline or cancellation.
//
// Shared catalog loads outlive the request that started them.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
