// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package theme persists the visitor's light/dark preference.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
)

// Theme reads and writes the dark-mode flag.
type Theme struct {
	store  prefs.Store
	logger *slog.Logger
}

// New returns a theme backed by store.
func New(store prefs.Store, logger *slog.Logger) *Theme {
	return &Theme{store: store, logger: logger}
}

// IsDark reports the saved preference. Light is the default, and an
// unreadable value counts as light.
func (theme *Theme) IsDark(ctx context.Context) (bool, error) {
	raw, found, err := theme.store.Get(ctx, constants.PrefKeyDarkMode)
	if err != nil {
		return false, fmt.Errorf("theme_read_failed: %w", err)
	}
	if !found {
		return false, nil
	}

	dark, err := strconv.ParseBool(raw)
	if err != nil {
		theme.logger.WarnContext(ctx, "ignoring malformed theme preference", slog.String("value", raw))
		return false, nil
	}
	return dark, nil
}

// Set saves the preference.
func (theme *Theme) Set(ctx context.Context, dark bool) error {
	if err := theme.store.Set(ctx, constants.PrefKeyDarkMode, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("theme_write_failed: %w", err)
	}
	return nil
}

// Toggle flips the preference and returns the new value.
func (theme *Theme) Toggle(ctx context.Context) (bool, error) {
	dark, err := theme.IsDark(ctx)
	if err != nil {
		return false, err
	}
	if err := theme.Set(ctx, !dark); err != nil {
		return dark, err
	}
	return !dark, nil
}
