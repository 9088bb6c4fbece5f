// Package store provides the shared key-value storage behind rate limiting
// and response caching. Redis backs production deployments; an in-process
// store with the same contract serves development and tests.
package store

import (
	"context"
	"time"
)

// Store is a minimal TTL'd key-value contract. Implementations must treat
// a missing key as (value "", ok false, err nil), never as an error.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key with the given TTL. A zero TTL means
	// the key does not expire.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment atomically adds one to the counter at key and returns
	// the new value. The TTL is applied only when the counter is
	// created, so a fixed window starts at the first increment.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
