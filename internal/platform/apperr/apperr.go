// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the storefront.

It provides a rich error type that bridges backend responses, transport failures
and local validation with the storefront's own HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Translation: [FromResponse] turns a backend reply into an AppError, pulling the
    human message out of whatever payload shape the backend used.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves a client package is an [AppError] so that handlers and
callers can branch on Code instead of parsing strings.
*/
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Machine-readable error codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUnprocessable      = "UNPROCESSABLE"
	CodeAuthFailed         = "AUTH_FAILED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// maxMessageLen caps plain-text backend messages (stack traces, HTML error pages).
const maxMessageLen = 300

// AppError is the canonical error type for the storefront.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// AuthFailed creates a 401 [AppError] for a rejected login (bad credentials or CAPTCHA).
func AuthFailed(msg string, cause error) *AppError {
	return &AppError{
		Code:       CodeAuthFailed,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError].
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Transport creates a 502 [AppError] for a backend call that never produced a
// response (DNS, refused connection, reset, deadline).
func Transport(cause error) *AppError {
	return &AppError{
		Code:       CodeBackendUnavailable,
		Message:    "The bookstore service is unreachable. Please try again.",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Upstream creates a 502 [AppError] for a backend reply the storefront could
// not read (unexpected payload shape, truncated body).
func Upstream(cause error) *AppError {
	return &AppError{
		Code:       CodeUpstream,
		Message:    "The bookstore service sent an unexpected response",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Backend Translation

// FromResponse converts a non-2xx backend reply into an [AppError].
//
// The message is taken, in order, from a JSON string body, the "message" or
// "error" field of a JSON object body, or a short plain-text body. When none is
// present, fallback is used.
func FromResponse(status int, body []byte, fallback string) *AppError {
	message := extractMessage(body)
	if message == "" {
		message = fallback
	}

	var appError *AppError
	switch {
	case status == http.StatusUnauthorized:
		appError = Unauthorized(message)
	case status == http.StatusForbidden:
		appError = Forbidden(message)
	case status == http.StatusNotFound:
		appError = &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
	case status == http.StatusConflict:
		appError = Conflict(message)
	case status == http.StatusUnprocessableEntity:
		appError = Unprocessable(message)
	case status == http.StatusTooManyRequests:
		appError = &AppError{Code: CodeRateLimited, Message: message, HTTPStatus: http.StatusTooManyRequests}
	case status >= 500:
		appError = &AppError{Code: CodeUpstream, Message: message, HTTPStatus: http.StatusBadGateway}
	default:
		// 400 and any other 4xx the backend invents.
		appError = ValidationError(message)
	}

	appError.Cause = fmt.Errorf("backend responded %d", status)
	return appError
}

// extractMessage returns the human message embedded in a backend error body.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal([]byte(trimmed), &text); err == nil {
			return strings.TrimSpace(text)
		}
		return ""

	case '{':
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
			return ""
		}
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error

	case '[', '<':
		// Arrays and HTML error pages carry nothing a user should read.
		return ""
	}

	if utf8.RuneCountInString(trimmed) > maxMessageLen {
		return ""
	}
	return trimmed
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	if ae := As(err); ae != nil {
		return ae.Code == code
	}
	return false
}

// MessageOr returns the client-safe message of err, or fallback when err is not
// an [*AppError] or carries no message.
func MessageOr(err error, fallback string) string {
	if ae := As(err); ae != nil && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
