package common

import "time"

// CacheInterface defines the contract for cache implementations.
// The Redis backend round-trips values through JSON, so cached values
// must marshal cleanly.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get loads the cached value for key into dest, which must be a
	// non-nil pointer to the type that was passed to Set. Returns false
	// on a miss or when dest cannot hold the cached value.
	Get(key string, dest interface{}) bool

	// Delete removes a value from cache by key
	Delete(key string)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
