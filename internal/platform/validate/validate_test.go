// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Dune", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("firstName", "Ada").
		MinLen("password", "secret", 6).
		MaxLen("firstName", "Ada", 50).
		Email("email", "ada@bookstore.test").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("firstName", "").      // Fails
		MinLen("password", "abc", 6).   // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestValidator_Match covers the password confirmation rule.
*/
func TestValidator_Match(t *testing.T) {
	v := &validate.Validator{}
	err := v.Match("confirmPassword", "secret1", "secret2", "Passwords do not match").Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Passwords do not match", ae.Message)
	assert.Equal(t, "confirmPassword", ae.Details[0].Field)

	assert.NoError(t, (&validate.Validator{}).Match("confirmPassword", "same", "same", "x").Err())
}

/*
TestValidator_Numbers checks identifier and money rules.
*/
func TestValidator_Numbers(t *testing.T) {
	v := &validate.Validator{}
	v.Positive("bookId", 0).
		Positive("categoryId", 3).
		NonNegativeMoney("price", decimal.RequireFromString("-0.01")).
		NonNegativeMoney("price", decimal.Zero).
		Range("rating", 6, 1, 5)

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 3)
	assert.Equal(t, "bookId", ae.Details[0].Field)
	assert.Equal(t, "price", ae.Details[1].Field)
	assert.Equal(t, "rating", ae.Details[2].Field)
}

func TestValidator_Slug(t *testing.T) {
	assert.False(t, (&validate.Validator{}).Slug("slug", "science-fiction").HasErrors())
	assert.True(t, (&validate.Validator{}).Slug("slug", "Science Fiction").HasErrors())
	assert.True(t, (&validate.Validator{}).Slug("slug", "-fiction").HasErrors())
}
