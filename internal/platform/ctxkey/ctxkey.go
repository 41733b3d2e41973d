// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// Keys use a private, unexported type so they cannot collide with values stored
// by third-party packages under the same string.
package ctxkey

type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeyVisitor is the context key for the signed visitor id.
	KeyVisitor key = "visitor"

	// KeyWorkspace is the context key for the visitor's storefront workspace.
	KeyWorkspace key = "workspace"
)
