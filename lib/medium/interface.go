package medium

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates a new medium used by a store.
// This is used to abstract the creation of the medium from the store
// implementation.
type Factory func() (IMedium, error)

// IMedium is the capability contract for a synchronous string key-value
// medium. It has no notion of expiration - liveness is layered on top by the
// store packages. Implementations must be safe for concurrent use.
type IMedium interface {
	// Name returns the medium identifier. It becomes part of the store
	// identity and of the GC watermark key, so it must be stable across
	// process restarts for persistent mediums.
	Name() string

	// Get returns the raw text stored under key. The boolean return value
	// indicates whether a value for the key was found.
	Get(key string) (value string, found bool, err error)

	// Set inserts or updates the raw text stored under key.
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys enumerates every key currently held by the medium, in the
	// medium's native order. Callers must not rely on any ordering.
	Keys() ([]string, error)

	// Close releases any resources held by the medium.
	Close() error
}
