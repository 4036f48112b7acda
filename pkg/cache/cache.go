// Package cache provides the lookup cache used by registry clients.
//
// stackaudit never persists registry responses between runs. The cache only
// lives for one scan so that a package declared in many manifests is looked
// up once. Two implementations exist:
//
//   - [MemoryCache]: in-process map with optional TTL, used by the CLI
//   - [NullCache]: stores nothing, used with --no-cache and in tests
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}
