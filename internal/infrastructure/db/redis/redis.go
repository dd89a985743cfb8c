// Package redis hosts the Redis-backed collaborators of the auth core: the
// one-time-code store and the deletion-event sink.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config captures the settings required to reach the challenge store.
type Config struct {
	Addr string
	DB   int
	// Timeout bounds the connectivity check. Zero means the package default.
	Timeout time.Duration
}

// Connect builds a Redis client and proves connectivity with a ping before
// handing it out, so wiring fails fast on a bad address.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
