package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache closed")

	// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)
