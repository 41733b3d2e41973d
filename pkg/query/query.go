// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses loosely-typed string input (query parameters, path
// segments, env lists) into typed values.
package query

import (
	"strconv"
	"strings"
)

// StringSlice parses a single comma-separated string into a trimmed slice of
// strings. Empty entries are dropped.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// ID parses a positive numeric identifier. It reports false for empty,
// malformed, zero or negative input.
func ID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// OptionalID parses an identifier that may be absent. Empty input (or the
// literal "all") yields nil without error.
func OptionalID(raw string) (*int64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return nil, true
	}
	id, ok := ID(trimmed)
	if !ok {
		return nil, false
	}
	return &id, true
}

// IntD parses an integer, returning def when the input is empty or malformed.
func IntD(raw string, def int) int {
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return def
}
