// Package cache defines the string key/value store used to remember
// summaries, together with its Redis and in-process backends. The SQLite
// backend lives in internal/database.
package cache

import (
	"context"
	"time"
)

// Cache is a string-keyed store with optional per-key expiry. A zero ttl
// keeps the entry until it is overwritten or the cache is cleared.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// Purger is implemented by backends that do not expire entries on their own.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
