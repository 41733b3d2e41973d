// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth holds the visitor's authentication state.

The storefront never issues or verifies credentials itself. It exchanges them
with the backend for a bearer token, persists that token, and derives a
[sec.Session] by decoding it.

Lifecycle:

  - Init: restore a persisted token at workspace start.
  - Login / Logout: explicit transitions, each announced to subscribers.
  - Current: lazy expiry check; an expired session is logged out implicitly.

The derived session gates UI only. The backend re-authorizes every call.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/platform/validate"
)

// # Contracts & Types

// Gateway is the part of the backend API the auth state needs.
type Gateway interface {
	Login(ctx context.Context, request backend.LoginRequest) (string, error)
	Register(ctx context.Context, request backend.RegisterRequest) error
	Captcha(ctx context.Context) (backend.Captcha, error)
}

// Listener is told about every login and logout. signedIn is false on logout.
type Listener func(context context.Context, session sec.Session, signedIn bool)

// Credentials are the fields of the login form.
type Credentials struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CaptchaID     string `json:"captchaId"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

// State is one visitor's authentication state.
//
// # Concurrency
//
// State is safe for concurrent use. Listeners run outside the lock, in the
// goroutine that caused the transition.
type State struct {
	gateway Gateway
	store   prefs.Store
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	token     string
	session   sec.Session
	signedIn  bool
	listeners []Listener
}

// New constructs an anonymous state. gateway must not authenticate with this
// state's own token (login happens before a token exists).
func New(gateway Gateway, store prefs.Store, logger *slog.Logger) *State {
	return &State{
		gateway: gateway,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the time source (tests).
func (state *State) SetClock(now func() time.Time) {
	state.now = now
}

// Subscribe registers listener for future transitions.
func (state *State) Subscribe(listener Listener) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.listeners = append(state.listeners, listener)
}

// # Session Restore

/*
Init restores the session from the persisted token.

Description: A missing token leaves the visitor anonymous. A malformed or
expired token is treated as a logout and removed from the store.

Parameters:
  - context: context.Context

Returns:
  - err: store failures only; token problems are not errors
*/
func (state *State) Init(context context.Context) error {
	token, found, err := state.store.Get(context, constants.PrefKeyToken)
	if err != nil {
		return fmt.Errorf("auth_state_restore_failed: %w", err)
	}
	if !found || token == "" {
		return nil
	}

	session, err := sec.Decode(token, state.now())
	if err != nil {
		state.logger.InfoContext(context, "persisted token discarded", slog.String("reason", err.Error()))
		return state.Logout(context)
	}

	state.mu.Lock()
	state.token = token
	state.session = session
	state.signedIn = true
	state.mu.Unlock()

	return nil
}

// # Authentication Flow

/*
Login exchanges credentials for a token and signs the visitor in.

Description: Required fields are checked locally first. On any failure the
state is left untouched. A token the storefront cannot decode counts as a
failed login and is never persisted.

Parameters:
  - context: context.Context
  - credentials: Credentials

Returns:
  - sec.Session: The derived session
  - err: VALIDATION_ERROR, AUTH_FAILED (with the server message) or transport errors
*/
func (state *State) Login(context context.Context, credentials Credentials) (sec.Session, error) {
	validator := &validate.Validator{}
	validator.
		Required("email", credentials.Email).
		Required("password", credentials.Password).
		Required("captchaId", credentials.CaptchaID).
		Required("captchaAnswer", credentials.CaptchaAnswer)
	if err := validator.Err(); err != nil {
		return sec.Session{}, err
	}

	// 1. Credential exchange
	token, err := state.gateway.Login(context, backend.LoginRequest{
		Email:         credentials.Email,
		Password:      credentials.Password,
		CaptchaID:     credentials.CaptchaID,
		CaptchaAnswer: credentials.CaptchaAnswer,
	})
	if err != nil {
		return sec.Session{}, authFailure(err)
	}

	// 2. Derive the session before anything is persisted
	session, err := sec.Decode(token, state.now())
	if err != nil {
		return sec.Session{}, apperr.AuthFailed("Login failed", err)
	}

	// 3. Persist, then publish
	if err := state.store.Set(context, constants.PrefKeyToken, token); err != nil {
		return sec.Session{}, apperr.Internal(fmt.Errorf("auth_state_persist_failed: %w", err))
	}

	state.mu.Lock()
	state.token = token
	state.session = session
	state.signedIn = true
	listeners := append([]Listener(nil), state.listeners...)
	state.mu.Unlock()

	state.logger.InfoContext(context, "visitor signed in", slog.String("subject", session.Subject))
	for _, listener := range listeners {
		listener(context, session, true)
	}
	return session, nil
}

// authFailure marks credential and CAPTCHA rejections as AUTH_FAILED while
// keeping transport and upstream failures as they are.
func authFailure(err error) error {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		return err
	}
	switch appError.Code {
	case apperr.CodeValidation, apperr.CodeUnauthorized, apperr.CodeForbidden, apperr.CodeUnprocessable:
		return apperr.AuthFailed(appError.Message, appError)
	}
	return err
}

/*
Logout clears the persisted token and the in-memory session.

Description: Memory is cleared and subscribers are notified even when the
store cannot delete the token; the store error is still returned.
*/
func (state *State) Logout(context context.Context) error {
	storeErr := state.store.Delete(context, constants.PrefKeyToken)

	state.mu.Lock()
	state.token = ""
	state.session = sec.Session{}
	state.signedIn = false
	listeners := append([]Listener(nil), state.listeners...)
	state.mu.Unlock()

	for _, listener := range listeners {
		listener(context, sec.Session{}, false)
	}

	if storeErr != nil {
		return fmt.Errorf("auth_state_logout_failed: %w", storeErr)
	}
	return nil
}

// Registration holds the fields of the sign-up form.
type Registration struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	CaptchaID       string `json:"captchaId"`
	CaptchaAnswer   string `json:"captchaAnswer"`
}

/*
Register creates an account. It does not sign the visitor in.

Parameters:
  - context: context.Context
  - registration: Registration

Returns:
  - err: VALIDATION_ERROR locally, or the backend's message (fallback "Registration failed")
*/
func (state *State) Register(context context.Context, registration Registration) error {
	validator := &validate.Validator{}
	validator.
		Required("firstName", registration.FirstName).
		Required("lastName", registration.LastName).
		Email("email", registration.Email).
		MinLen("password", registration.Password, minPasswordLength).
		Match("confirmPassword", registration.ConfirmPassword, registration.Password, "Passwords do not match").
		Required("captchaId", registration.CaptchaID).
		Required("captchaAnswer", registration.CaptchaAnswer)
	if err := validator.Err(); err != nil {
		return err
	}

	return state.gateway.Register(context, backend.RegisterRequest{
		FirstName:       registration.FirstName,
		LastName:        registration.LastName,
		Email:           registration.Email,
		Password:        registration.Password,
		ConfirmPassword: registration.ConfirmPassword,
		CaptchaID:       registration.CaptchaID,
		CaptchaAnswer:   registration.CaptchaAnswer,
	})
}

// Captcha fetches a fresh challenge for the login or sign-up form.
func (state *State) Captcha(context context.Context) (backend.Captcha, error) {
	return state.gateway.Captcha(context)
}

// # Session Access

// Current returns the session, logging out implicitly when it has expired.
func (state *State) Current(context context.Context) (sec.Session, bool) {
	state.mu.RLock()
	session, signedIn := state.session, state.signedIn
	state.mu.RUnlock()

	if !signedIn {
		return sec.Session{}, false
	}
	if session.Expired(state.now()) {
		state.logger.InfoContext(context, "session expired", slog.String("subject", session.Subject))
		if err := state.Logout(context); err != nil {
			state.logger.WarnContext(context, "implicit logout incomplete", slog.String("error", err.Error()))
		}
		return sec.Session{}, false
	}
	return session, true
}

// Token implements [backend.TokenSource]. It returns "" for anonymous visitors.
func (state *State) Token() string {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.token
}
