package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend string
	Dir     string
	Redis   RedisOptions
}

// Open creates the configured backend. An empty backend means "file".
func Open(ctx context.Context, opts OpenOptions) (Cache, error) {
	switch opts.Backend {
	case BackendFile, "":
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("%w: %q (must be one of: file, redis, none)", ErrUnknownBackend, opts.Backend)
}
