// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/ctxkey"
	"github.com/taibuivan/bookstore/internal/platform/ctxutil"
	"github.com/taibuivan/bookstore/internal/platform/respond"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/storefront"
	"github.com/taibuivan/bookstore/pkg/uuid"
)

// # Visitor Identity

// Visitors binds browsers to workspaces through a signed cookie.
//
// # Security
//
// The cookie only carries an opaque visitor id. It is HMAC-signed (and
// encrypted when a block key is configured) so ids cannot be forged to reach
// another visitor's workspace.
type Visitors struct {
	codec    *securecookie.SecureCookie
	registry *storefront.Registry
	secure   bool
}

// NewVisitors creates the cookie codec. blockKey may be empty to sign without
// encrypting. secure marks the cookie HTTPS-only.
func NewVisitors(hashKey, blockKey []byte, registry *storefront.Registry, secure bool) *Visitors {
	if len(blockKey) == 0 {
		blockKey = nil
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(constants.VisitorCookieMaxAge.Seconds()))

	return &Visitors{codec: codec, registry: registry, secure: secure}
}

// Middleware resolves the visitor's workspace, issuing a cookie to new
// visitors, and stores it in the request context.
//
// # Flow
//  1. Decode the cookie; unreadable or missing cookies start a new visitor.
//  2. Fetch (or create and open) the workspace from the registry.
//  3. Tag the request logger with the visitor id.
func (visitors *Visitors) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		// 1. Identify
		visitorID, ok := visitors.read(request)
		if !ok {
			visitorID = uuid.New()
			if err := visitors.write(writer, visitorID); err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
		}

		// 2. Resolve the workspace
		workspace, err := visitors.registry.Get(ctx, visitorID)
		if err != nil {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}

		// 3. Enrich the context
		logger := ctxutil.GetLogger(ctx).With(slog.String("visitor_id", visitorID))
		ctx = ctxutil.WithLogger(ctx, logger)
		ctx = ctxutil.WithVisitorID(ctx, visitorID)
		ctx = context.WithValue(ctx, ctxkey.KeyWorkspace, workspace)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (visitors *Visitors) read(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(constants.VisitorCookieName)
	if err != nil {
		return "", false
	}

	var visitorID string
	if err := visitors.codec.Decode(constants.VisitorCookieName, cookie.Value, &visitorID); err != nil {
		return "", false
	}
	return visitorID, uuid.Valid(visitorID)
}

func (visitors *Visitors) write(writer http.ResponseWriter, visitorID string) error {
	encoded, err := visitors.codec.Encode(constants.VisitorCookieName, visitorID)
	if err != nil {
		return err
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.VisitorCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(constants.VisitorCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   visitors.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// workspaceFrom returns the workspace stored by [Visitors.Middleware].
func workspaceFrom(request *http.Request) *storefront.Workspace {
	workspace, _ := request.Context().Value(ctxkey.KeyWorkspace).(*storefront.Workspace)
	return workspace
}

// resolveSession adapts the workspace session for the authorization middleware.
func resolveSession(request *http.Request) (sec.Session, bool) {
	workspace := workspaceFrom(request)
	if workspace == nil {
		return sec.Session{}, false
	}
	return workspace.Session(request.Context())
}
