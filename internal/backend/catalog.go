// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Books lists the catalog filtered by filter.
func (client *Client) Books(ctx context.Context, filter BookFilter) (Page[Book], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	if filter.Size > 0 {
		query.Set("size", strconv.Itoa(filter.Size))
	}
	query.Set("search", filter.Search)
	if filter.CategoryID != nil {
		query.Set("categoryId", strconv.FormatInt(*filter.CategoryID, 10))
	}
	if filter.MinPrice != nil {
		query.Set("minPrice", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		query.Set("maxPrice", filter.MaxPrice.String())
	}

	var page Page[Book]
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/books",
		query:    query,
		out:      &page,
		fallback: "Failed to load books",
	})
	return page, err
}

// Book fetches one catalog entry.
func (client *Client) Book(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     pathf("/books/%d", id),
		out:      &book,
		fallback: "Failed to load book details",
	})
	return book, err
}

// Categories lists every category.
func (client *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     "/categories",
		out:      &categories,
		fallback: "Failed to load categories",
	})
	if categories == nil {
		categories = []Category{}
	}
	return categories, err
}

// # Reviews

// Reviews lists the reviews of a book.
func (client *Client) Reviews(ctx context.Context, bookID int64, page int) (Page[Review], error) {
	var reviews Page[Review]
	err := client.do(ctx, call{
		method:   http.MethodGet,
		path:     pathf("/books/%d/reviews", bookID),
		query:    url.Values{"page": {strconv.Itoa(page)}},
		out:      &reviews,
		fallback: "Failed to load reviews",
	})
	return reviews, err
}

// CreateReview posts a review on behalf of the signed-in visitor.
func (client *Client) CreateReview(ctx context.Context, bookID int64, request ReviewRequest) (Review, error) {
	var review Review
	err := client.do(ctx, call{
		method:   http.MethodPost,
		path:     pathf("/books/%d/reviews", bookID),
		body:     request,
		out:      &review,
		fallback: "Failed to post review",
	})
	return review, err
}

// UpdateReview edits one of the visitor's reviews.
func (client *Client) UpdateReview(ctx context.Context, bookID, reviewID int64, request ReviewRequest) (Review, error) {
	var review Review
	err := client.do(ctx, call{
		method:   http.MethodPut,
		path:     pathf("/books/%d/reviews/%d", bookID, reviewID),
		body:     request,
		out:      &review,
		fallback: "Failed to update review",
	})
	return review, err
}

// DeleteReview removes one of the visitor's reviews.
func (client *Client) DeleteReview(ctx context.Context, bookID, reviewID int64) error {
	return client.do(ctx, call{
		method:   http.MethodDelete,
		path:     pathf("/books/%d/reviews/%d", bookID, reviewID),
		fallback: "Failed to delete review",
	})
}
