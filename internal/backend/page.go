// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the normalized form of every list the backend returns.
//
// The API answers some list calls with a bare JSON array and others with a
// paginated wrapper ({"content": [...], "totalPages": n, ...}). Both decode
// into Page so callers never inspect the payload shape.
type Page[T any] struct {
	Items         []T   `json:"items"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// wrapper mirrors the paginated shape.
type wrapper[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// UnmarshalJSON accepts either a bare array or a paginated wrapper.
//
// A bare array is one page: TotalPages is 1, or 0 when the array is empty.
func (page *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*page = Page[T]{Items: []T{}}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("page: decode array: %w", err)
		}
		*page = FromItems(items)
		return nil

	case '{':
		var w wrapper[T]
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return fmt.Errorf("page: decode wrapper: %w", err)
		}
		if w.Content == nil {
			w.Content = []T{}
		}
		*page = Page[T]{
			Items:         w.Content,
			TotalPages:    w.TotalPages,
			TotalElements: w.TotalElements,
			Number:        w.Number,
			Size:          w.Size,
		}
		return nil
	}

	return fmt.Errorf("page: unexpected payload starting with %q", trimmed[0])
}

// FromItems wraps an unpaginated list as a single page.
func FromItems[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if len(items) > 0 {
		totalPages = 1
	}
	return Page[T]{
		Items:         items,
		TotalPages:    totalPages,
		TotalElements: int64(len(items)),
		Size:          len(items),
	}
}

// Empty reports whether the page has no items.
func (page Page[T]) Empty() bool {
	return len(page.Items) == 0
}
