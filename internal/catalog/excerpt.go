// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"strings"

	"github.com/taibuivan/bookstore/internal/platform/constants"
)

// ExcerptWords is the length of a book description teaser.
const ExcerptWords = constants.ExcerptWords

// Excerpt shortens description to its first words space-separated words,
// marking the cut with "...". Shorter descriptions are returned unchanged.
func Excerpt(description string, words int) string {
	parts := strings.Split(description, " ")
	if words <= 0 || len(parts) <= words {
		return description
	}
	return strings.Join(parts[:words], " ") + "..."
}
