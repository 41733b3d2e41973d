// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package prefs is the storefront's small persisted key-value store.

It holds the only durable client state: the visitor's bearer token and the
dark-mode flag. Two backends exist:

  - [FileStore]: a YAML document on local disk, for single-replica deployments.
  - [RedisStore]: a Redis keyspace, for replicas sharing visitors.

[Scoped] narrows any store to one visitor so that keys such as "token" do not
collide between visitors served by the same process.
*/
package prefs

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidKey is returned for empty keys.
var ErrInvalidKey = errors.New("prefs: key must not be empty")

// Store reads and writes persisted string values.
//
// Get reports found=false without error when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// scopedStore prefixes every key with a visitor namespace.
type scopedStore struct {
	inner  Store
	prefix string
}

// Scoped returns a view of store whose keys live under scope.
func Scoped(store Store, scope string) Store {
	return &scopedStore{inner: store, prefix: scope + ":"}
}

func (store *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	return store.inner.Get(ctx, store.prefix+key)
}

func (store *scopedStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return store.inner.Set(ctx, store.prefix+key, value)
}

func (store *scopedStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return store.inner.Delete(ctx, store.prefix+key)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
