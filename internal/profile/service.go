// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package profile manages the signed-in visitor's account.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/validate"
)

// minPasswordLength matches the registration rule.
const minPasswordLength = 6

// Gateway is the part of the backend API the profile needs.
type Gateway interface {
	Me(ctx context.Context) (backend.UserProfile, error)
	UpdateMe(ctx context.Context, request backend.UpdateProfileRequest) (backend.UserProfile, error)
	ChangePassword(ctx context.Context, request backend.ChangePasswordRequest) error
	DeleteMe(ctx context.Context) error
}

// Session ends the visitor's session once the account is gone.
type Session interface {
	Logout(ctx context.Context) error
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// Service edits the account of one visitor.
type Service struct {
	gateway Gateway
	session Session
	logger  *slog.Logger
}

// NewService constructs a profile service.
func NewService(gateway Gateway, session Session, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, session: session, logger: logger}
}

// Get loads the account.
func (service *Service) Get(context context.Context) (backend.UserProfile, error) {
	return service.gateway.Me(context)
}

// Update renames the account holder. Both names are required.
func (service *Service) Update(context context.Context, firstName, lastName string) (backend.UserProfile, error) {
	request := backend.UpdateProfileRequest{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}

	validator := &validate.Validator{}
	validator.
		Required("firstName", request.FirstName).
		MaxLen("firstName", request.FirstName, 100).
		Required("lastName", request.LastName).
		MaxLen("lastName", request.LastName, 100)
	if err := validator.Err(); err != nil {
		return backend.UserProfile{}, err
	}

	return service.gateway.UpdateMe(context, request)
}

// ChangePassword replaces the password. The form is checked locally before
// any request: the confirmation must match and the new password be long enough.
func (service *Service) ChangePassword(context context.Context, change PasswordChange) error {
	validator := &validate.Validator{}
	validator.
		Match("confirmNewPassword", change.ConfirmNewPassword, change.NewPassword, "New passwords do not match").
		Required("oldPassword", change.OldPassword).
		MinLen("newPassword", change.NewPassword, minPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	return service.gateway.ChangePassword(context, backend.ChangePasswordRequest{
		OldPassword: change.OldPassword,
		NewPassword: change.NewPassword,
	})
}

// DeleteConfirmation is the phrase a visitor must type to delete account.
func DeleteConfirmation(account backend.UserProfile) string {
	return fmt.Sprintf("Delete %s Account", account.FirstName)
}

/*
Delete removes the account and signs the visitor out.

Description: confirmation must equal [DeleteConfirmation] of the current
account. A failed logout after a successful delete is logged only: the
account no longer exists either way.
*/
func (service *Service) Delete(context context.Context, confirmation string) error {
	account, err := service.gateway.Me(context)
	if err != nil {
		return err
	}

	expected := DeleteConfirmation(account)
	if confirmation != expected {
		return validate.RequiredError("confirmation", fmt.Sprintf("Please type %q to confirm", expected))
	}

	if err := service.gateway.DeleteMe(context); err != nil {
		return err
	}

	if err := service.session.Logout(context); err != nil {
		service.logger.WarnContext(context, "logout after account deletion failed", slog.String("error", err.Error()))
	}
	return nil
}

