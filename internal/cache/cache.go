// Package cache provides a small key-value cache port with in-process,
// Redis and tiered implementations.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value cache. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
