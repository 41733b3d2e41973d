// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package review lists and edits book reviews.
package review

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/sec"
	"github.com/taibuivan/bookstore/internal/platform/validate"
)

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 2000
)

// Gateway is the part of the backend API reviews need.
type Gateway interface {
	Reviews(ctx context.Context, bookID int64, page int) (backend.Page[backend.Review], error)
	CreateReview(ctx context.Context, bookID int64, request backend.ReviewRequest) (backend.Review, error)
	UpdateReview(ctx context.Context, bookID, reviewID int64, request backend.ReviewRequest) (backend.Review, error)
	DeleteReview(ctx context.Context, bookID, reviewID int64) error
}

// SessionSource reports whether a visitor is signed in.
type SessionSource interface {
	Current(ctx context.Context) (sec.Session, bool)
}

// Entry is a review as shown to the current visitor.
type Entry struct {
	backend.Review
	// Mine marks reviews the visitor may edit or delete.
	Mine bool `json:"mine"`
}

// Listing is one page of a book's reviews.
type Listing struct {
	Reviews    []Entry `json:"reviews"`
	TotalPages int     `json:"totalPages"`
	Page       int     `json:"page"`
	// CanReview is true for any signed-in visitor.
	CanReview bool `json:"canReview"`
}

// Service handles reviews for one visitor.
type Service struct {
	gateway  Gateway
	sessions SessionSource
	logger   *slog.Logger
}

// NewService constructs a review service.
func NewService(gateway Gateway, sessions SessionSource, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, sessions: sessions, logger: logger}
}

// List returns one page of reviews for bookID.
func (service *Service) List(context context.Context, bookID int64, page int) (Listing, error) {
	reviews, err := service.gateway.Reviews(context, bookID, max(page, 0))
	if err != nil {
		return Listing{}, err
	}

	session, signedIn := service.sessions.Current(context)
	entries := make([]Entry, len(reviews.Items))
	for index, item := range reviews.Items {
		entries[index] = Entry{Review: item, Mine: signedIn && item.AuthoredBy(session.Subject)}
	}

	return Listing{
		Reviews:    entries,
		TotalPages: reviews.TotalPages,
		Page:       reviews.Number,
		CanReview:  signedIn,
	}, nil
}

// Create posts a review.
func (service *Service) Create(context context.Context, bookID int64, request backend.ReviewRequest) (backend.Review, error) {
	request, err := service.prepare(context, request)
	if err != nil {
		return backend.Review{}, err
	}
	return service.gateway.CreateReview(context, bookID, request)
}

// Update edits one of the visitor's reviews.
func (service *Service) Update(context context.Context, bookID, reviewID int64, request backend.ReviewRequest) (backend.Review, error) {
	request, err := service.prepare(context, request)
	if err != nil {
		return backend.Review{}, err
	}
	return service.gateway.UpdateReview(context, bookID, reviewID, request)
}

// Delete removes one of the visitor's reviews.
func (service *Service) Delete(context context.Context, bookID, reviewID int64) error {
	if _, ok := service.sessions.Current(context); !ok {
		return apperr.Unauthorized("Please login to manage reviews")
	}
	return service.gateway.DeleteReview(context, bookID, reviewID)
}

// prepare checks the session and the form.
func (service *Service) prepare(context context.Context, request backend.ReviewRequest) (backend.ReviewRequest, error) {
	if _, ok := service.sessions.Current(context); !ok {
		return request, apperr.Unauthorized("Please login to write a review")
	}

	request.Comment = strings.TrimSpace(request.Comment)

	validator := &validate.Validator{}
	validator.
		Range("rating", request.Rating, minRating, maxRating).
		Required("comment", request.Comment).
		MaxLen("comment", request.Comment, maxCommentLength)
	return request, validator.Err()
}
