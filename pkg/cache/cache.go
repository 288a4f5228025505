// Package cache stores small, expiring blobs between runs.
//
// The exporter uses it for one thing: the repository listing of a
// deployment, which changes rarely but costs one request per page to
// rebuild. Caching is opt-in; by default every run lists projects again.
// Backends:
//
//   - [NullCache]: caching disabled (default)
//   - [FileCache]: JSON files, selected with a file:// URL
//   - [RedisCache]: a shared Redis instance, selected with a redis:// URL
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys so that all callers agree on the layout.
type Keyer interface {
	// RepositoriesKey is the key for the repository listing of a deployment.
	RepositoriesKey(baseURL, slug string) string
}

// DefaultKeyer namespaces keys by kind and hashes the variable parts.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RepositoriesKey implements Keyer.
func (DefaultKeyer) RepositoriesKey(baseURL, slug string) string {
	return hashKey("repositories", baseURL, slug)
}
