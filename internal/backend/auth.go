// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
)

// Login exchanges credentials for a bearer token.
func (client *Client) Login(ctx context.Context, request LoginRequest) (string, error) {
	var response tokenResponse
	err := client.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     request,
		out:      &response,
		fallback: "Login failed",
	})
	if err != nil {
		return "", err
	}
	if response.Token == "" {
		return "", apperr.Upstream(errEmptyToken)
	}
	return response.Token, nil
}

// Register creates an account. It does not sign the visitor in.
func (client *Client) Register(ctx context.Context, request RegisterRequest) error {
	return client.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     request,
		fallback: "Registration failed",
	})
}

// Captcha fetches a fresh challenge.
func (client *Client) Captcha(ctx context.Context) (Captcha, error) {
	var captcha Captcha
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/auth/captcha",
		out:      &captcha,
		fallback: "Failed to load CAPTCHA",
	})
	return captcha, err
}
