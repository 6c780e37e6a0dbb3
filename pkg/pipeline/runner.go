package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/observability"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP server use this to avoid duplicating stage wiring.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Lineups   LineupSource
	Fetcher   *assets.Fetcher
	Positions *formation.PositionMap
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
}

// NewRunner creates a runner.
// If fetcher is nil, an HTTP fetcher sharing c is used.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(lineups LineupSource, fetcher *assets.Fetcher, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if fetcher == nil {
		fetcher = assets.NewFetcher(nil, logger)
		fetcher.Cache = c
		fetcher.Keyer = keyer
	}
	return &Runner{
		Lineups:   lineups,
		Fetcher:   fetcher,
		Positions: formation.DefaultPositionMap(),
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
	}
}

// Execute runs the complete lineup → layout → fetch → compose → render
// pipeline. On error the result is nil.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Lineup
	l, lineupTime, err := r.FetchLineup(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("lineup: %w", err)
	}
	r.Logger.Info("received lineup",
		"game", opts.Game,
		"players", len(l),
		"duration", lineupTime)

	result, err := r.RenderLineup(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LineupTime = lineupTime
	return result, nil
}

// FetchLineup requests a lineup from the runner's source.
func (r *Runner) FetchLineup(ctx context.Context, opts Options) (lineup.Lineup, time.Duration, error) {
	if r.Lineups == nil {
		return nil, 0, errors.New(errors.ErrCodeConfig, "no lineup source configured")
	}
	req, err := BuildRequest(opts)
	if err != nil {
		return nil, 0, err
	}
	if err := CheckScheme(req.Scheme, r.positions()); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	observability.Pipeline().OnLineupStart(ctx, req.Game)
	l, err := r.Lineups.FetchLineup(ctx, req)
	d := time.Since(start)
	observability.Pipeline().OnLineupComplete(ctx, req.Game, len(l), d, err)
	if err != nil {
		return nil, d, err
	}
	return l, d, nil
}

// RenderLineup runs layout → fetch → compose → render for a lineup supplied
// by the caller. On error the result is nil.
func (r *Runner) RenderLineup(ctx context.Context, l lineup.Lineup, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Lineup:    l.Sorted(),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Players = len(l)
	result.Stats.Starters = l.Count(lineup.Starters)
	result.Stats.Bench = l.Count(lineup.Bench)

	// Stage 2: Layout
	layoutStart := time.Now()
	laid, err := ComputeLayout(l, r.positions(), opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	if laid != nil {
		observability.Pipeline().OnLayoutComplete(ctx, len(laid.Placements), len(laid.Captains), result.Stats.LayoutTime, err)
	} else {
		observability.Pipeline().OnLayoutComplete(ctx, 0, 0, result.Stats.LayoutTime, err)
	}
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = laid
	result.Stats.Captains = len(laid.Captains)

	data, err := canonicalLineup(l)
	if err != nil {
		return nil, fmt.Errorf("encode lineup: %w", err)
	}
	result.LineupHash = cache.Hash(data)

	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, result.LineupHash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Info("rendered outputs from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 3: Fetch
	fetchStart := time.Now()
	byPlayer, err := r.fetcher(opts).FetchAll(ctx, result.Lineup, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("fetch assets: %w", err)
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	for _, a := range byPlayer {
		if a.Degraded() {
			result.Stats.Degraded++
		}
	}
	r.Logger.Info("fetched assets",
		"players", len(byPlayer),
		"degraded", result.Stats.Degraded,
		"duration", result.Stats.FetchTime)

	// Stage 4: Compose
	composeStart := time.Now()
	bg, err := LoadBackground(opts)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	s := scene.Compose(bg, laid, byPlayer,
		scene.WithSize(opts.Width, opts.Height),
		scene.WithLogger(opts.Logger),
		scene.WithContext(ctx))
	result.Stats.ComposeTime = time.Since(composeStart)

	// Stage 5: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(ctx, s, laid, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Scene = s
	result.Artifacts = artifacts

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	// Degraded renders depend on transient failures and are not reused.
	if result.Stats.Degraded == 0 {
		for format, data := range artifacts {
			key := r.artifactKey(result.LineupHash, format, opts)
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	return result, nil
}

// cachedArtifacts returns every requested format from the cache, or false if
// any is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, lineupHash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.artifactKey(lineupHash, format, opts)
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) positions() *formation.PositionMap {
	if r.Positions == nil {
		return formation.DefaultPositionMap()
	}
	return r.Positions
}

func (r *Runner) artifactKey(lineupHash, format string, opts Options) string {
	return r.Keyer.ArtifactKey(lineupHash, opts.ArtifactKeyOpts(format, r.positions().Fingerprint()))
}

// fetcher returns the runner's fetcher with the run's failure policy.
func (r *Runner) fetcher(opts Options) *assets.Fetcher {
	f := *r.Fetcher
	f.Policy = opts.failure
	return &f
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
