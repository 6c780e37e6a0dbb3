// Package cache provides the byte caches used by the render pipeline.
//
// Two kinds of data are cached: downloaded player assets (photos and club
// emblems, keyed by URL) and rendered artifacts (SVG/PNG/JSON/PDF, keyed by
// lineup content and render options). Lineups themselves are never cached:
// every request asks the lineup service for a fresh selection.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// A [Keyer] derives cache keys from domain values so that every backend
// sees the same key space. [NewScopedKeyer] prefixes keys to separate
// tenants sharing one backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// TTLAsset keeps player photos and emblems for a week; clubs rarely
	// change crests and photo URLs are versioned.
	TTLAsset = 7 * 24 * time.Hour

	// TTLArtifact keeps rendered outputs for a day.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with hit=false and a nil error. A non-nil error means
// the backend itself failed; callers in the pipeline treat that as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
