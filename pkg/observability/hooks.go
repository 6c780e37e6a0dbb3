// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: libraries emit events through the hooks
// registered here, and the defaults do nothing. The CLI registers
// log-backed hooks in verbose mode; a server deployment can register
// hooks that feed any metrics backend without the core packages importing it.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.SetPipelineHooks(observability.NewLogPipelineHooks(logger))
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnFetchStart(ctx, len(players), concurrency)
//	// ... download assets ...
//	observability.Pipeline().OnFetchComplete(ctx, len(players), degraded, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the render pipeline stages.
type PipelineHooks interface {
	OnLineupStart(ctx context.Context, game string)
	OnLineupComplete(ctx context.Context, game string, players int, duration time.Duration, err error)

	OnLayoutComplete(ctx context.Context, placements, captains int, duration time.Duration, err error)

	OnFetchStart(ctx context.Context, players, concurrency int)
	OnFetchComplete(ctx context.Context, players, degraded int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// AssetHooks receives per-asset events from the asset fetcher.
// kind is "photo" or "emblem".
type AssetHooks interface {
	OnAssetFetched(ctx context.Context, kind string, size int, duration time.Duration)
	OnAssetFailed(ctx context.Context, kind, url string, err error)
	// OnAssetDecodeFailed records a photo that downloaded but could not be
	// decoded and was replaced by the emblem-only fallback.
	OnAssetDecodeFailed(ctx context.Context, playerID int)
}

// CacheHooks receives events from cache lookups. keyType is "asset" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLineupStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLineupComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnFetchStart(context.Context, int, int)                              {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, int, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

// NoopAssetHooks is a no-op implementation of AssetHooks.
type NoopAssetHooks struct{}

func (NoopAssetHooks) OnAssetFetched(context.Context, string, int, time.Duration) {}
func (NoopAssetHooks) OnAssetFailed(context.Context, string, string, error)       {}
func (NoopAssetHooks) OnAssetDecodeFailed(context.Context, int)                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	assetHooks    AssetHooks    = NoopAssetHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetAssetHooks registers custom asset hooks. Nil is ignored.
func SetAssetHooks(h AssetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		assetHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Asset returns the registered asset hooks.
func Asset() AssetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return assetHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	assetHooks = NoopAssetHooks{}
	cacheHooks = NoopCacheHooks{}
}
