// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package request_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/request"
)

func withParam(r *http.Request, name, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeContext))
}

func TestID(t *testing.T) {
	r := withParam(httptest.NewRequest(http.MethodGet, "/books/42", nil), "bookID", "42")
	id, err := request.ID(r, "bookID")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	r = withParam(httptest.NewRequest(http.MethodGet, "/books/abc", nil), "bookID", "abc")
	_, err = request.ID(r, "bookID")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestOptionalID(t *testing.T) {
	id, err := request.OptionalID(httptest.NewRequest(http.MethodGet, "/?categoryId=all", nil), "categoryId")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = request.OptionalID(httptest.NewRequest(http.MethodGet, "/?categoryId=7", nil), "categoryId")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(7), *id)

	_, err = request.OptionalID(httptest.NewRequest(http.MethodGet, "/?categoryId=-2", nil), "categoryId")
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, request.DecodeJSON(httptest.NewRecorder(), r, &target))
	assert.Equal(t, "a@b.c", target.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	assert.Error(t, request.DecodeJSON(httptest.NewRecorder(), r, &target))
}
