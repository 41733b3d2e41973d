// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec decodes the bearer tokens issued by the bookstore backend.
//
// # Trust Boundary
//
// The storefront never holds the signing key. Tokens are decoded WITHOUT
// signature verification and the resulting [Session] is a capability hint for
// UI gating only. The backend re-checks every request it receives.
package sec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token cannot be decoded at all.
	ErrMalformedToken = errors.New("sec: malformed token")

	// ErrTokenExpired is returned when the embedded expiry is in the past.
	ErrTokenExpired = errors.New("sec: token expired")
)

// Session is the identity derived from a decoded bearer token.
type Session struct {
	Subject   string    `json:"email"`
	Roles     RoleSet   `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsAdmin reports whether the session carries the administrator role.
func (session Session) IsAdmin() bool {
	return session.Roles.Has(RoleAdmin)
}

// Expired reports whether the session expiry is before now.
func (session Session) Expired(now time.Time) bool {
	return !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(now)
}

// tokenClaims mirrors the claims the backend embeds.
//
// roles arrives either as an array or as a single string depending on the
// issuer, so it is kept raw and normalized in [Decode].
type tokenClaims struct {
	jwt.RegisteredClaims
	Roles json.RawMessage `json:"roles,omitempty"`
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode reads a bearer token into a [Session] without verifying its signature.
//
// A token without a subject or expiry is malformed. A token whose expiry is
// before now yields [ErrTokenExpired] together with the decoded session.
func Decode(raw string, now time.Time) (Session, error) {
	if raw == "" {
		return Session{}, ErrMalformedToken
	}

	claims := &tokenClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Session{}, ErrMalformedToken
	}

	roles, err := decodeRoles(claims.Roles)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	session := Session{
		Subject:   claims.Subject,
		Roles:     roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if session.Expired(now) {
		return session, ErrTokenExpired
	}
	return session, nil
}

func decodeRoles(raw json.RawMessage) (RoleSet, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return RoleSet{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return NewRoleSet(list...), nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("roles claim: %w", err)
	}
	return NewRoleSet(single), nil
}
