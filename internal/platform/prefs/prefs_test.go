// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package prefs_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/platform/prefs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedisStore(t *testing.T, ttl time.Duration) (*prefs.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return prefs.NewRedisStore(client, "storefront:prefs:", ttl), server
}

/*
TestStores_Contract runs the same scenario against both backends.
*/
func TestStores_Contract(t *testing.T) {
	fileStore, err := prefs.OpenFile(filepath.Join(t.TempDir(), "prefs.yaml"), discardLogger())
	require.NoError(t, err)
	redisStore, _ := newRedisStore(t, 0)

	stores := map[string]prefs.Store{
		"file":  fileStore,
		"redis": redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// 1. Absent key
			_, found, err := store.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, found)

			// 2. Write then read
			require.NoError(t, store.Set(ctx, "token", "abc"))
			value, found, err := store.Get(ctx, "token")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "abc", value)

			// 3. Delete is idempotent
			require.NoError(t, store.Delete(ctx, "token"))
			require.NoError(t, store.Delete(ctx, "token"))
			_, found, err = store.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, found)

			// 4. Empty keys are rejected
			assert.ErrorIs(t, store.Set(ctx, " ", "x"), prefs.ErrInvalidKey)
		})
	}
}

/*
TestFileStore_Reopen verifies values survive a restart.
*/
func TestFileStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	store, err := prefs.OpenFile(path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "v1:darkMode", "true"))

	reopened, err := prefs.OpenFile(path, discardLogger())
	require.NoError(t, err)

	value, found, err := reopened.Get(ctx, "v1:darkMode")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", value)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("values: [unclosed"), 0o600))

	_, err := prefs.OpenFile(path, discardLogger())
	assert.Error(t, err)
}

/*
TestScoped_Isolation keeps two visitors' tokens apart in one backend.
*/
func TestScoped_Isolation(t *testing.T) {
	ctx := context.Background()
	redisStore, server := newRedisStore(t, 0)

	alice := prefs.Scoped(redisStore, "visitor-a")
	bob := prefs.Scoped(redisStore, "visitor-b")

	require.NoError(t, alice.Set(ctx, "token", "alice-token"))

	_, found, err := bob.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found)

	raw, err := server.Get("storefront:prefs:visitor-a:token")
	require.NoError(t, err)
	assert.Equal(t, "alice-token", raw)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t, time.Hour)

	require.NoError(t, store.Set(ctx, "token", "abc"))
	assert.Equal(t, time.Hour, server.TTL("storefront:prefs:token"))

	server.FastForward(2 * time.Hour)
	_, found, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found)
}
