package assets

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/httputil"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/observability"
)

const (
	// DefaultConcurrency is the default number of players fetched at once.
	DefaultConcurrency = 5

	// DefaultTimeout bounds one download attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultRetries is the number of attempts per download.
	DefaultRetries = 2

	// DefaultRetryDelay is the wait before the first retry; it doubles after.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Fetcher downloads player assets on a bounded pool.
//
// The zero value is not usable; create one with [NewFetcher]. A Fetcher
// holds no per-call state and may serve concurrent FetchAll calls.
type Fetcher struct {
	// NewSource yields the session of one fetch task.
	NewSource SourceFactory

	// Cache stores downloaded bytes by URL. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer

	// Limiter throttles downloads across all tasks. Nil means unlimited.
	Limiter *rate.Limiter

	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Policy     FailurePolicy

	Logger *log.Logger
}

// NewFetcher creates a fetcher with default hardening. A nil factory means
// plain HTTP sources; a nil logger discards output.
func NewFetcher(newSource SourceFactory, logger *log.Logger) *Fetcher {
	if newSource == nil {
		newSource = HTTPSourceFactory(DefaultTimeout)
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Fetcher{
		NewSource:  newSource,
		Keyer:      cache.NewDefaultKeyer(),
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		Policy:     Degrade,
		Logger:     logger,
	}
}

// NewLimiter returns a limiter admitting rps downloads per second, or nil
// when rps is not positive.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// FetchAll downloads the photo and emblem of every player and returns them
// keyed by player id. concurrency below 1 means [DefaultConcurrency].
//
// FetchAll returns only after every task has finished. Under FailFast the
// first ASSET_DOWNLOAD error cancels the remaining tasks and is returned
// with a nil map.
func (f *Fetcher) FetchAll(ctx context.Context, players []lineup.Player, concurrency int) (map[int]Assets, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	start := time.Now()
	observability.Pipeline().OnFetchStart(ctx, len(players), concurrency)

	results := make([]Assets, len(players))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range players {
		g.Go(func() error {
			a, err := f.fetchPlayer(gctx, f.NewSource(), p)
			if err != nil {
				return err
			}
			results[i] = a
			return nil
		})
	}
	err := g.Wait()

	degraded := 0
	out := make(map[int]Assets, len(results))
	for _, a := range results {
		if a.Degraded() {
			degraded++
		}
		out[a.PlayerID] = a
	}
	observability.Pipeline().OnFetchComplete(ctx, len(players), degraded, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Fetcher) fetchPlayer(ctx context.Context, src Source, p lineup.Player) (Assets, error) {
	a := Assets{PlayerID: p.ID}

	photo, photoErr := f.download(ctx, src, KindPhoto, p.Photo)
	if photoErr != nil && f.abort(ctx) {
		return a, f.failure(ctx, photoErr)
	}
	emblem, emblemErr := f.download(ctx, src, KindEmblem, p.Emblem)
	if emblemErr != nil && f.abort(ctx) {
		return a, f.failure(ctx, emblemErr)
	}

	a.Photo, a.PhotoErr = photo, photoErr
	a.Emblem, a.EmblemErr = emblem, emblemErr
	if photoErr != nil {
		f.Logger.Warn("photo unavailable, rendering emblem only", "player", p.ID, "err", photoErr)
	}
	if emblemErr != nil {
		f.Logger.Warn("emblem unavailable, using placeholder", "player", p.ID, "err", emblemErr)
		a.Emblem = Placeholder(p.Emblem)
		a.PlaceholderEmblem = true
	}
	return a, nil
}

// abort reports whether a failed download ends the task: always under
// FailFast, and under Degrade only when the fetch itself was cancelled.
func (f *Fetcher) abort(ctx context.Context) bool {
	return f.Policy == FailFast || ctx.Err() != nil
}

// failure prefers the cancellation cause so that tasks stopped by a sibling's
// failure do not report a download error of their own.
func (f *Fetcher) failure(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// download returns the bytes behind url, consulting the cache first.
// Every failure is an ASSET_DOWNLOAD error.
func (f *Fetcher) download(ctx context.Context, src Source, kind Kind, url string) ([]byte, error) {
	if err := errors.ValidateAssetURL(url); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetDownload, err, "%s", kind)
	}

	var key string
	if f.Cache != nil {
		key = f.Keyer.AssetKey(url)
		if data, hit, err := f.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "asset")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "asset")
	}

	start := time.Now()
	var data []byte
	err := httputil.Retry(ctx, f.Retries, f.RetryDelay, func() error {
		if f.Limiter != nil {
			if err := f.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout())
		defer cancel()

		body, err := src.Fetch(attemptCtx, url)
		if err != nil {
			if attemptCtx.Err() != nil && ctx.Err() == nil {
				return httputil.Retryable(fmt.Errorf("timed out after %s: %w", f.timeout(), err))
			}
			return err
		}
		if len(body) == 0 {
			return fmt.Errorf("empty body")
		}
		data = body
		return nil
	})
	if err != nil {
		observability.Asset().OnAssetFailed(ctx, string(kind), url, err)
		return nil, errors.Wrap(errors.ErrCodeAssetDownload, err, "download %s %s", kind, url)
	}
	observability.Asset().OnAssetFetched(ctx, string(kind), len(data), time.Since(start))

	if f.Cache != nil {
		if err := f.Cache.Set(ctx, key, data, cache.TTLAsset); err == nil {
			observability.Cache().OnCacheSet(ctx, "asset", len(data))
		}
	}
	return data, nil
}

func (f *Fetcher) timeout() time.Duration {
	if f.Timeout <= 0 {
		return DefaultTimeout
	}
	return f.Timeout
}
