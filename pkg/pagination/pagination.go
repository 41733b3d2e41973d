// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for paged listings.
//
// # Overview
//
// The bookstore backend numbers pages from 0 and reports the total page count.
// This package carries those numbers into the storefront's response envelope and
// computes the compact page strip shown under the catalog.
package pagination

import (
	"net/http"

	"github.com/taibuivan/bookstore/pkg/query"
)

const (
	// DefaultPage is the starting page (0-indexed).
	DefaultPage = 0
)

// Meta is the pagination metadata included in list responses.
type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
func NewMeta(page, size int, total int64, totalPages int) Meta {
	return Meta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PageFromRequest parses the "page" query parameter.
//
// # Clamping
//
// Invalid or negative values fall back to [DefaultPage].
func PageFromRequest(r *http.Request) int {
	n := query.IntD(r.URL.Query().Get("page"), DefaultPage)
	if n < 0 {
		return DefaultPage
	}
	return n
}

// # Page Strip

// Item is one control in the page strip: either a page number or a gap marker.
type Item struct {
	// Page is the 0-indexed page; meaningless when Ellipsis is set.
	Page     int  `json:"page"`
	Label    int  `json:"label"`
	Current  bool `json:"current"`
	Ellipsis bool `json:"ellipsis"`
}

// Window returns the page strip for the current page.
//
// It always shows the first page, the last page, and the pages adjacent to
// current. A gap after the first page is marked when current > 2, and a gap
// before the last page when current < totalPages-3.
func Window(current, totalPages int) []Item {
	items := make([]Item, 0, 7)
	for i := 0; i < totalPages; i++ {
		showPage := i == 0 || i == totalPages-1 || abs(i-current) <= 1
		showGap := (i == 1 && current > 2) || (i == totalPages-2 && current < totalPages-3)

		switch {
		case showPage:
			items = append(items, Item{Page: i, Label: i + 1, Current: i == current})
		case showGap:
			items = append(items, Item{Page: i, Ellipsis: true})
		}
	}
	return items
}

// HasPrev reports whether a previous page exists.
func HasPrev(current int) bool { return current > 0 }

// HasNext reports whether a next page exists.
func HasNext(current, totalPages int) bool { return current < totalPages-1 }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
