// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/respond"
	"github.com/taibuivan/bookstore/internal/platform/sec"
)

// SessionResolver returns the decoded session of the visitor behind request.
//
// The storefront holds no authority of its own: the session is the unverified
// token decode of the visitor's workspace, so these guards only gate the UI
// surface. The backend enforces every call again.
type SessionResolver func(request *http.Request) (sec.Session, bool)

// RequireSession blocks requests from visitors that are not signed in.
//
// # Flow
//  1. Resolve the visitor session (implicitly logging out an expired one).
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireSession(resolve SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if _, ok := resolve(request); !ok {
				respond.Error(writer, request, apperr.Unauthorized("Please sign in to continue"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole blocks requests if the visitor's session lacks role.
//
// It implies [RequireSession] so you don't need to mount both.
func RequireRole(resolve SessionResolver, role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			session, ok := resolve(request)

			// ── 1. Authentication Check ───────────────────────────────────────
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Please sign in to continue"))
				return
			}

			// ── 2. Role Check ─────────────────────────────────────────────────
			if !session.Roles.Has(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
