// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
)

// Me fetches the signed-in account.
func (client *Client) Me(ctx context.Context) (UserProfile, error) {
	var profile UserProfile
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/users/me",
		out:      &profile,
		fallback: "Failed to load profile",
	})
	return profile, err
}

// UpdateMe renames the signed-in account holder.
func (client *Client) UpdateMe(ctx context.Context, request UpdateProfileRequest) (UserProfile, error) {
	var profile UserProfile
	err := client.do(ctx, call{
		method:   http.MethodPut,
		path:     "/users/me",
		body:     request,
		out:      &profile,
		fallback: "Failed to update profile",
	})
	return profile, err
}

// ChangePassword replaces the account password. The backend answers with a
// plain-text confirmation that is discarded.
func (client *Client) ChangePassword(ctx context.Context, request ChangePasswordRequest) error {
	return client.do(ctx, call{
		method:   http.MethodPut,
		path:     "/users/me/password",
		body:     request,
		fallback: "Failed to change password",
	})
}

// DeleteMe closes the signed-in account.
func (client *Client) DeleteMe(ctx context.Context) error {
	return client.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/users/me",
		fallback: "Failed to delete account",
	})
}
