// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookstore/internal/platform/request"
	"github.com/taibuivan/bookstore/internal/platform/respond"
	"github.com/taibuivan/bookstore/internal/profile"
)

// profileHandler manages the signed-in visitor's account.
type profileHandler struct{}

func (handler *profileHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireSession(resolveSession))

	router.Get("/", handler.get)
	router.Put("/", handler.update)
	router.Put("/password", handler.changePassword)
	router.Delete("/", handler.delete)

	return router
}

type profileView struct {
	backend.UserProfile
	DeleteConfirmation string `json:"deleteConfirmation"`
}

func (handler *profileHandler) get(writer http.ResponseWriter, request *http.Request) {
	account, err := workspaceFrom(request).Profile.Get(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profileView{UserProfile: account, DeleteConfirmation: profile.DeleteConfirmation(account)})
}

func (handler *profileHandler) update(writer http.ResponseWriter, request *http.Request) {
	var body backend.UpdateProfileRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := workspaceFrom(request).Profile.Update(request.Context(), body.FirstName, body.LastName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

/*
PUT /storefront/v1/profile/password.

Request:
  - body: profile.PasswordChange

Response:
  - 200: {message}
  - 400: "New passwords do not match", length rule, or the backend's refusal
*/
func (handler *profileHandler) changePassword(writer http.ResponseWriter, request *http.Request) {
	var body profile.PasswordChange
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Profile.ChangePassword(request.Context(), body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"message": "Password changed successfully"})
}

/*
DELETE /storefront/v1/profile.

Request:
  - body: {confirmation: "Delete <FirstName> Account"}

Response:
  - 204: account deleted and visitor signed out
*/
func (handler *profileHandler) delete(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Confirmation string `json:"confirmation"`
	}
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Profile.Delete(request.Context(), body.Confirmation); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
