// Package cache stores price values by key with a TTL.
package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}
