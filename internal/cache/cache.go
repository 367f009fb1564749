// Package cache defines the small byte cache used for short-lived auth
// results. Implementations are constructed once during wiring and injected
// into services; there are no package-level singletons.
package cache

import "time"

// Cache is a TTL byte cache.
type Cache interface {
	// Get returns the value for key, or false if absent or expired.
	Get(key string) ([]byte, bool)

	// Set stores value under key for ttl. A ttl of 0 uses the
	// implementation default.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key.
	Delete(key string)
}
