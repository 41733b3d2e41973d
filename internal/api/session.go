// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookstore/internal/auth"
	requestutil "github.com/taibuivan/bookstore/internal/platform/request"
	"github.com/taibuivan/bookstore/internal/platform/respond"
)

// sessionView is the public shape of the visitor's session.
type sessionView struct {
	SignedIn  bool       `json:"signedIn"`
	Email     string     `json:"email,omitempty"`
	Roles     []string   `json:"roles"`
	IsAdmin   bool       `json:"isAdmin"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CartCount int        `json:"cartCount"`
}

// sessionHandler serves login, logout and registration.
type sessionHandler struct{}

// Routes mounts the session endpoints.
func (handler *sessionHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.current)
	router.Get("/captcha", handler.captcha)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/register", handler.register)

	return router
}

func currentSession(request *http.Request) sessionView {
	workspace := workspaceFrom(request)
	session, signedIn := workspace.Session(request.Context())

	view := sessionView{SignedIn: signedIn, Roles: []string{}, CartCount: workspace.Cart.Count()}
	if signedIn {
		expiresAt := session.ExpiresAt
		view.Email = session.Subject
		view.Roles = session.Roles.List()
		view.IsAdmin = session.IsAdmin()
		view.ExpiresAt = &expiresAt
	}
	return view
}

/*
GET /storefront/v1/session.

Description: Reports whether the visitor is signed in. An expired session is
logged out on the way.

Response:
  - 200: sessionView
*/
func (handler *sessionHandler) current(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, currentSession(request))
}

/*
GET /storefront/v1/session/captcha.

Response:
  - 200: backend.Captcha
*/
func (handler *sessionHandler) captcha(writer http.ResponseWriter, request *http.Request) {
	captcha, err := workspaceFrom(request).Auth.Captcha(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, captcha)
}

/*
POST /storefront/v1/session/login.

Request:
  - body: auth.Credentials

Response:
  - 200: sessionView
  - 400: VALIDATION_ERROR
  - 401: AUTH_FAILED with the backend's message
*/
func (handler *sessionHandler) login(writer http.ResponseWriter, request *http.Request) {
	var credentials auth.Credentials
	if err := requestutil.DecodeJSON(writer, request, &credentials); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := workspaceFrom(request).Auth.Login(request.Context(), credentials); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, currentSession(request))
}

/*
POST /storefront/v1/session/logout.

Response:
  - 204: always, the in-memory session is cleared even if the store fails
*/
func (handler *sessionHandler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := workspaceFrom(request).Auth.Logout(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /storefront/v1/session/register.

Request:
  - body: auth.Registration

Response:
  - 201: {message}
*/
func (handler *sessionHandler) register(writer http.ResponseWriter, request *http.Request) {
	var registration auth.Registration
	if err := requestutil.DecodeJSON(writer, request, &registration); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Auth.Register(request.Context(), registration); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, map[string]string{"message": "Registration successful! Please login."})
}

// # Theme

// themeHandler persists the dark-mode flag.
type themeHandler struct{}

func (handler *themeHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.get)
	router.Put("/", handler.set)
	router.Post("/toggle", handler.toggle)
	return router
}

type themeView struct {
	DarkMode bool `json:"darkMode"`
}

func (handler *themeHandler) get(writer http.ResponseWriter, request *http.Request) {
	dark, err := workspaceFrom(request).Theme.IsDark(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, themeView{DarkMode: dark})
}

func (handler *themeHandler) set(writer http.ResponseWriter, request *http.Request) {
	var body themeView
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Theme.Set(request.Context(), body.DarkMode); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, body)
}

func (handler *themeHandler) toggle(writer http.ResponseWriter, request *http.Request) {
	dark, err := workspaceFrom(request).Theme.Toggle(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, themeView{DarkMode: dark})
}
