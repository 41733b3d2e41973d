// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package request

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/validate"
	"github.com/taibuivan/bookstore/pkg/query"
)

// maxBodyBytes caps storefront form payloads.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to cap the body size)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ID retrieves a named numeric URL parameter.

Returns:
  - int64: The positive identifier
  - error: apperr.ValidationError if the segment is not a positive number
*/
func ID(request *http.Request, name string) (int64, error) {
	id, ok := query.ID(chi.URLParam(request, name))
	if !ok {
		return 0, validate.RequiredError(name, "Must be a positive number")
	}
	return id, nil
}

/*
OptionalID reads a numeric query parameter that may be absent or "all".
*/
func OptionalID(request *http.Request, name string) (*int64, error) {
	id, ok := query.OptionalID(request.URL.Query().Get(name))
	if !ok {
		return nil, apperr.ValidationError("Invalid "+name, apperr.FieldError{Field: name, Message: "Must be a positive number"})
	}
	return id, nil
}
