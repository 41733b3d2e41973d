// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the storefront to the Redis instance that backs the
shared preferences store.

With PREFS_BACKEND=redis every storefront replica reads the same visitor
tokens and theme flags, so a visitor keeps their session when a load balancer
moves them between replicas.

Core Responsibilities:

  - Startup: [Connect] waits briefly for Redis to come up before giving up.
  - Readiness: [Checker] backs the /ready probe.
*/
package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Timeouts for Redis operations. The store issues a handful of tiny
// GET/SET calls per visitor, so the pool stays small.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second

	poolSize     = 4
	minIdleConns = 1

	connectAttempts = 3
	connectBackoff  = 500 * time.Millisecond
)

// Connect parses a Redis URL and returns a client whose connectivity has been
// verified.
//
// # Parameters
//   - context: bounds the whole connect loop, including backoff sleeps.
//   - redisURL: e.g. redis://:password@localhost:6379/0
//   - logger: receives one warning per failed attempt.
func Connect(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if lastErr = Ping(context, client); lastErr == nil {
			logger.Info("redis_connected", slog.String("addr", options.Addr), slog.Int("db", options.DB))
			return client, nil
		}

		logger.Warn("redis_connect_retry",
			slog.Int("attempt", attempt),
			slog.String("addr", options.Addr),
			slog.Any("error", lastErr),
		)

		if attempt == connectAttempts {
			break
		}
		select {
		case <-context.Done():
			_ = client.Close()
			return nil, errors.Join(lastErr, context.Err())
		case <-time.After(connectBackoff * time.Duration(attempt)):
		}
	}

	_ = client.Close()
	return nil, lastErr
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}

// Checker adapts [Ping] to the readiness probe signature.
func Checker(client *redis.Client) func(stdctx.Context) error {
	return func(ctx stdctx.Context) error {
		return Ping(ctx, client)
	}
}
