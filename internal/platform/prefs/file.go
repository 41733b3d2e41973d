// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps all values in memory and mirrors them to a YAML file.
//
// # Durability
//
// Every write replaces the file through a temporary sibling and a rename, so a
// crash leaves either the previous or the new document, never a torn one.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
	logger *slog.Logger
}

// document is the on-disk layout.
type document struct {
	Values map[string]string `yaml:"values"`
}

// OpenFile loads path (creating its directory when missing) and returns a store.
// A missing file is treated as an empty store.
func OpenFile(path string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("prefs: create directory: %w", err)
	}

	store := &FileStore{
		path:   path,
		values: make(map[string]string),
		logger: logger,
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return store, nil
	case err != nil:
		return nil, fmt.Errorf("prefs: read %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("prefs: decode %s: %w", path, err)
	}
	if doc.Values != nil {
		store.values = doc.Values
	}

	logger.Info("prefs file loaded",
		slog.String("path", path),
		slog.Int("keys", len(store.values)),
	)
	return store, nil
}

// Get implements [Store].
func (store *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	value, found := store.values[key]
	return value, found, nil
}

// Set implements [Store].
func (store *FileStore) Set(_ context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	previous, existed := store.values[key]
	store.values[key] = value

	if err := store.flushLocked(); err != nil {
		// Keep memory and disk in agreement.
		if existed {
			store.values[key] = previous
		} else {
			delete(store.values, key)
		}
		return err
	}
	return nil
}

// Delete implements [Store]. Deleting an absent key is not an error.
func (store *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	previous, existed := store.values[key]
	if !existed {
		return nil
	}
	delete(store.values, key)

	if err := store.flushLocked(); err != nil {
		store.values[key] = previous
		return err
	}
	return nil
}

// flushLocked writes the document atomically. Callers hold mu.
func (store *FileStore) flushLocked() error {
	raw, err := yaml.Marshal(document{Values: store.values})
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(store.path), ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("prefs: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("prefs: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("prefs: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, store.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("prefs: replace %s: %w", store.path, err)
	}
	return nil
}
