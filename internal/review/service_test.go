// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/backend/backendtest"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/review"
)

type visitor struct {
	email string
	token string
}

func (v *visitor) Token() string { return v.token }

func (v *visitor) Current(context.Context) (sec.Session, bool) {
	return sec.Session{Subject: v.email}, v.token != ""
}

func newService(t *testing.T, fake *backendtest.Server, email string) *review.Service {
	t.Helper()

	v := &visitor{email: email}
	if email != "" {
		fake.AddUser(email)
		v.token = fake.IssueToken(email, []string{"ROLE_CUSTOMER"}, time.Hour)
	}
	client := fake.Client(t).WithTokenSource(v)
	return review.NewService(client, v, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestReviewLifecycle posts, edits and deletes a review, marking ownership.
*/
func TestReviewLifecycle(t *testing.T) {
	fake := backendtest.New(t)
	book := fake.AddBook("Dune", "10.00", nil)
	ctx := context.Background()

	author := newService(t, fake, "author@example.com")
	other := newService(t, fake, "other@example.com")

	posted, err := author.Create(ctx, book.ID, backend.ReviewRequest{Rating: 5, Comment: "  Spice!  "})
	require.NoError(t, err)
	assert.Equal(t, "Spice!", posted.Comment)

	listing, err := author.List(ctx, book.ID, 0)
	require.NoError(t, err)
	require.Len(t, listing.Reviews, 1)
	assert.True(t, listing.Reviews[0].Mine)
	assert.True(t, listing.CanReview)

	listing, err = other.List(ctx, book.ID, 0)
	require.NoError(t, err)
	assert.False(t, listing.Reviews[0].Mine)

	_, err = other.Update(ctx, book.ID, posted.ID, backend.ReviewRequest{Rating: 1, Comment: "meh"})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	updated, err := author.Update(ctx, book.ID, posted.ID, backend.ReviewRequest{Rating: 4, Comment: "Still good"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	require.NoError(t, author.Delete(ctx, book.ID, posted.ID))
	listing, err = author.List(ctx, book.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, listing.Reviews)
}

/*
TestCreate_Rejected validates locally and requires a session.
*/
func TestCreate_Rejected(t *testing.T) {
	fake := backendtest.New(t)
	book := fake.AddBook("Dune", "10.00", nil)
	ctx := context.Background()
	signedIn := newService(t, fake, "author@example.com")

	tests := []struct {
		name    string
		request backend.ReviewRequest
		field   string
	}{
		{"rating too low", backend.ReviewRequest{Rating: 0, Comment: "ok"}, "rating"},
		{"rating too high", backend.ReviewRequest{Rating: 6, Comment: "ok"}, "rating"},
		{"blank comment", backend.ReviewRequest{Rating: 3, Comment: "   "}, "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signedIn.Create(ctx, book.ID, tt.request)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			assert.Equal(t, tt.field, appError.Details[0].Field)
		})
	}
	assert.Zero(t, fake.Calls("POST /books/{bookID}/reviews"))

	anonymous := newService(t, fake, "")
	_, err := anonymous.Create(ctx, book.ID, backend.ReviewRequest{Rating: 5, Comment: "hi"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	listing, err := anonymous.List(ctx, book.ID, 0)
	require.NoError(t, err)
	assert.False(t, listing.CanReview)
}
