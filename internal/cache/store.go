package cache

import (
	"context"
	"time"
)

// Store is the shared key-value surface behind the forecast and threshold
// caches and the API rate limiter. Implementations treat a nonpositive TTL
// on Set as "never expires".
type Store interface {
	// IncrementWithTTL bumps a counter, starting a fresh window when the key
	// is absent or expired, and returns the new count plus the time left in
	// the window.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
