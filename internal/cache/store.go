package cache

import (
	"context"
	"time"
)

// Store is the key/value contract shared by rate limiting and session
// revocation. Redis and the SQL cache table both satisfy it.
type Store interface {
	// IncrementWithTTL bumps key and starts its window on first use.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports ok=false for missing or expired keys.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Delete(ctx context.Context, keys ...string) error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*DatabaseStore)(nil)
)
