package cache

// Cache is the memory-tier contract the dashboard store builds on.
type Cache[T any] interface {
	// Get retrieves a live value; expired entries are evicted and missed.
	Get(key string) (T, bool)

	// Peek retrieves a value ignoring expiry.
	Peek(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Purge removes every entry.
	Purge()

	// Size returns the current number of items in the cache
	Size() int

	// Keys returns the cached keys in no particular order.
	Keys() []string
}

// Cleaner interface for caches that support periodic cleanup
type Cleaner interface {
	CleanExpired() int
}
