package cache

import (
	"context"
	"time"
)

// Client is the port the cache-aside layers consume. Implementations map
// these operations onto a key-value store with hash-map support; a miss is
// reported through the boolean return, never as an error.
//
// Every method takes a context because the production backend is a network
// store; cancellation and timeout behavior is inherited from the backend
// client unmodified.
type Client interface {
	// Get returns the string value stored at key. The boolean is false when
	// the key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value at key with the given TTL. A zero TTL stores the key
	// without expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes the given keys. Deleting an absent key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// Scan returns one page of keys matching pattern, starting at cursor.
	// The returned cursor is 0 when the iteration is exhausted; count is a
	// per-page size hint. The iteration is finite and not restartable and
	// callers drive it to exhaustion.
	Scan(ctx context.Context, cursor uint64, pattern string, count int64) ([]string, uint64, error)

	// HGet returns the value of one hash field. The boolean is false when
	// the key or the field does not exist.
	HGet(ctx context.Context, key, field string) (string, bool, error)

	// HSet stores one field of the hash at key, creating the hash if needed.
	HSet(ctx context.Context, key, field, value string) error

	// HGetAll returns all fields of the hash at key. An absent key yields an
	// empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HDel removes the given fields from the hash at key.
	HDel(ctx context.Context, key string, fields ...string) error

	// Expire sets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Close releases the underlying connection resources.
	Close() error
}
