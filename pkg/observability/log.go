package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

// Register installs h as the pipeline, asset and cache hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetAssetHooks(h)
	SetCacheHooks(h)
}

func (h *LogHooks) OnLineupStart(_ context.Context, game string) {
	h.logger.Debug("lineup request", "game", game)
}

func (h *LogHooks) OnLineupComplete(_ context.Context, game string, players int, d time.Duration, err error) {
	h.logger.Debug("lineup response", "game", game, "players", players, "duration", d, "err", err)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, placements, captains int, d time.Duration, err error) {
	h.logger.Debug("layout", "placements", placements, "captains", captains, "duration", d, "err", err)
}

func (h *LogHooks) OnFetchStart(_ context.Context, players, concurrency int) {
	h.logger.Debug("fetch start", "players", players, "concurrency", concurrency)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, players, degraded int, d time.Duration, err error) {
	h.logger.Debug("fetch done", "players", players, "degraded", degraded, "duration", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnAssetFetched(_ context.Context, kind string, size int, d time.Duration) {
	h.logger.Debug("asset", "kind", kind, "bytes", size, "duration", d)
}

func (h *LogHooks) OnAssetFailed(_ context.Context, kind, url string, err error) {
	h.logger.Debug("asset failed", "kind", kind, "url", url, "err", err)
}

func (h *LogHooks) OnAssetDecodeFailed(_ context.Context, playerID int) {
	h.logger.Debug("photo undecodable, using emblem", "player", playerID)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ AssetHooks    = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
