package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
)

type stubLineups struct {
	mu       sync.Mutex
	lineup   lineup.Lineup
	err      error
	requests []mode.Request
}

func (s *stubLineups) FetchLineup(_ context.Context, req mode.Request) (lineup.Lineup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.lineup, nil
}

// imageSource serves a tiny PNG for every URL except those in missing.
type imageSource struct {
	mu      sync.Mutex
	body    []byte
	missing map[string]bool
	calls   int
}

func (s *imageSource) Fetch(_ context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.missing[url] {
		return nil, fmt.Errorf("404 for %s", url)
	}
	return s.body, nil
}

func (s *imageSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func player(id int, pos lineup.Position, points float64) lineup.Player {
	return lineup.Player{
		ID:       id,
		Name:     fmt.Sprintf("Player %d", id),
		Position: pos,
		Roster:   lineup.Starters,
		Price:    float64(id) / 10,
		Points:   points,
		Photo:    fmt.Sprintf("https://img.test/photo/%d.png", id),
		Emblem:   fmt.Sprintf("https://img.test/emblem/%d.png", id),
	}
}

func newTestRunner(t *testing.T, l lineup.Lineup, src *imageSource, c cache.Cache) (*Runner, *stubLineups) {
	t.Helper()
	lineups := &stubLineups{lineup: l}
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	fetcher := assets.NewFetcher(func() assets.Source { return src }, logger)
	fetcher.RetryDelay = time.Millisecond
	fetcher.Cache = c
	return NewRunner(lineups, fetcher, c, nil, logger), lineups
}

func TestExecute_MidfieldRanksAndCaptain(t *testing.T) {
	l := lineup.Lineup{
		player(103, lineup.Midfielder, 5),
		player(101, lineup.Midfielder, 5),
		player(102, lineup.Midfielder, 9),
	}
	src := &imageSource{body: tinyPNG(t)}
	r, lineups := newTestRunner(t, l, src, nil)

	result, err := r.Execute(context.Background(), Options{Game: "cartola", Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := map[int]struct {
		rank int
		key  string
	}{
		101: {1, "starters-midfielder-1"},
		102: {2, "starters-midfielder-2"},
		103: {3, "starters-midfielder-3"},
	}
	for id, w := range want {
		p, ok := result.Layout.Placement(id)
		if !ok {
			t.Fatalf("no placement for %d", id)
		}
		if p.Rank != w.rank || p.PlotKey != w.key {
			t.Errorf("%d: rank=%d key=%q, want %d %q", id, p.Rank, p.PlotKey, w.rank, w.key)
		}
	}
	if len(result.Layout.Captains) != 1 || result.Layout.Captains[0] != 102 {
		t.Errorf("captains = %v, want [102]", result.Layout.Captains)
	}

	if len(lineups.requests) != 1 || lineups.requests[0].Game != mode.GameStandard {
		t.Errorf("unexpected lineup requests: %+v", lineups.requests)
	}
	if result.Stats.Players != 3 || result.Stats.Captains != 1 || result.Stats.Degraded != 0 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Scene == nil || len(result.Scene.HitTargets) != 3 || len(result.Scene.Overlays) != 6 {
		t.Fatalf("unexpected scene: %+v", result.Scene)
	}
	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, "(C) Player 102") {
		t.Error("SVG should label the captain")
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("missing JSON artifact")
	}
}

func TestExecute_LineupFailure(t *testing.T) {
	src := &imageSource{body: tinyPNG(t)}
	r, lineups := newTestRunner(t, nil, src, nil)
	lineups.err = errors.New(errors.ErrCodeRemoteService, "status FAILED")

	result, err := r.Execute(context.Background(), Options{})
	if result != nil {
		t.Error("result must be nil on failure")
	}
	if !errors.Is(err, errors.ErrCodeRemoteService) {
		t.Fatalf("expected REMOTE_SERVICE, got %v", err)
	}
	if errors.PublicMessage(err) != errors.GenericMessage {
		t.Errorf("PublicMessage = %q", errors.PublicMessage(err))
	}
	if src.callCount() != 0 {
		t.Error("no asset should be fetched after a lineup failure")
	}
}

func TestExecute_SchemeExceedsMap(t *testing.T) {
	src := &imageSource{body: tinyPNG(t)}
	r, lineups := newTestRunner(t, nil, src, nil)
	slots := r.Positions.MaxRank(lineup.Starters, lineup.Defender)

	_, err := r.Execute(context.Background(), Options{Scheme: fmt.Sprintf("defender=%d", slots+1)})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	lineups.mu.Lock()
	defer lineups.mu.Unlock()
	if len(lineups.requests) != 0 {
		t.Errorf("lineup service called %d time(s) for an unplaceable scheme", len(lineups.requests))
	}
}

func TestExecute_NoSource(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	if _, err := r.Execute(context.Background(), Options{}); !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("expected CONFIG, got %v", err)
	}
}

func TestRenderLineup_MissingSlot(t *testing.T) {
	l := lineup.Lineup{
		player(1, lineup.Goalkeeper, 1),
		player(2, lineup.Goalkeeper, 2),
	}
	src := &imageSource{body: tinyPNG(t)}
	r, _ := newTestRunner(t, l, src, nil)

	result, err := r.RenderLineup(context.Background(), l, Options{})
	if result != nil {
		t.Error("result must be nil on failure")
	}
	if !errors.Is(err, errors.ErrCodeConfig) || !strings.Contains(err.Error(), "starters-goalkeeper-2") {
		t.Fatalf("expected CONFIG naming the key, got %v", err)
	}
	if src.callCount() != 0 {
		t.Error("layout failure should stop before fetching")
	}
}

func TestRenderLineup_Degrade(t *testing.T) {
	l := lineup.Lineup{player(7, lineup.Forward, 3)}
	src := &imageSource{body: tinyPNG(t), missing: map[string]bool{"https://img.test/photo/7.png": true}}
	r, _ := newTestRunner(t, l, src, nil)

	result, err := r.RenderLineup(context.Background(), l, Options{})
	if err != nil {
		t.Fatalf("RenderLineup failed: %v", err)
	}
	if result.Stats.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", result.Stats.Degraded)
	}
	overlays := result.Scene.OverlaysFor(7)
	if len(overlays) != 1 || overlays[0].Kind != string(assets.KindEmblem) || overlays[0].W != 0.15 {
		t.Errorf("expected emblem-only fallback, got %+v", overlays)
	}
}

func TestRenderLineup_FailFast(t *testing.T) {
	l := lineup.Lineup{player(7, lineup.Forward, 3)}
	src := &imageSource{body: tinyPNG(t), missing: map[string]bool{"https://img.test/photo/7.png": true}}
	r, _ := newTestRunner(t, l, src, nil)

	result, err := r.RenderLineup(context.Background(), l, Options{FailurePolicy: "fail-fast"})
	if result != nil || !errors.Is(err, errors.ErrCodeAssetDownload) {
		t.Fatalf("expected ASSET_DOWNLOAD and nil result, got %v", err)
	}
	if r.Fetcher.Policy != assets.Degrade {
		t.Error("per-run policy must not change the shared fetcher")
	}
}

func TestRenderLineup_ArtifactCache(t *testing.T) {
	l := lineup.Lineup{player(1, lineup.Goalkeeper, 1), player(2, lineup.Forward, 2)}
	src := &imageSource{body: tinyPNG(t)}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, _ := newTestRunner(t, l, src, c)
	opts := Options{Formats: []string{"svg"}}

	first, err := r.RenderLineup(context.Background(), l, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first render should miss")
	}
	calls := src.callCount()

	// Same players in a different order hit the same entry.
	reordered := lineup.Lineup{l[1], l[0]}
	second, err := r.RenderLineup(context.Background(), reordered, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit || second.Scene != nil {
		t.Error("second render should come from cache")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}
	if src.callCount() != calls {
		t.Error("cache hit should not download assets")
	}

	third, err := r.RenderLineup(context.Background(), l, Options{Formats: []string{"svg"}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRenderLineup_ArtifactCacheKeyedByMapAndGame(t *testing.T) {
	l := lineup.Lineup{player(1, lineup.Goalkeeper, 1)}
	src := &imageSource{body: tinyPNG(t)}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, _ := newTestRunner(t, l, src, c)
	ctx := context.Background()

	if _, err := r.RenderLineup(ctx, l, Options{Formats: []string{"json"}}); err != nil {
		t.Fatal(err)
	}

	moved, err := formation.LoadPositionMap(strings.NewReader(`{"starters-goalkeeper-1": {"x": 0.11, "y": 0.22}}`))
	if err != nil {
		t.Fatal(err)
	}
	r.Positions = moved
	res, err := r.RenderLineup(ctx, l, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("a different position map must not reuse cached artifacts")
	}
	if !strings.Contains(string(res.Artifacts["json"]), "0.11") {
		t.Errorf("artifact does not reflect the new map: %s", res.Artifacts["json"])
	}

	again, err := r.RenderLineup(ctx, l, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("same map and options should hit")
	}

	express, err := r.RenderLineup(ctx, l, Options{Game: mode.GameExpress, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if express.CacheInfo.RenderHit {
		t.Error("a different game must not reuse cached artifacts")
	}
}
