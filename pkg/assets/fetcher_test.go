package assets

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/httputil"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
)

// stubSource serves fixed bodies and counts calls. Safe for concurrent use.
type stubSource struct {
	mu     sync.Mutex
	bodies map[string][]byte
	fail   map[string]int // remaining retryable failures per URL
	calls  map[string]int
	delay  time.Duration
}

func newStub() *stubSource {
	return &stubSource{
		bodies: make(map[string][]byte),
		fail:   make(map[string]int),
		calls:  make(map[string]int),
	}
}

func (s *stubSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[url]++
	if s.fail[url] > 0 {
		s.fail[url]--
		return nil, httputil.Retryable(fmt.Errorf("503 for %s", url))
	}
	body, ok := s.bodies[url]
	if !ok {
		return nil, fmt.Errorf("404 for %s", url)
	}
	return body, nil
}

func (s *stubSource) callCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

func testPlayers(n int) []lineup.Player {
	players := make([]lineup.Player, n)
	for i := range players {
		id := 100 + i
		players[i] = lineup.Player{
			ID:       id,
			Position: lineup.Midfielder,
			Roster:   lineup.Starters,
			Photo:    fmt.Sprintf("https://img.test/photo/%d.png", id),
			Emblem:   fmt.Sprintf("https://img.test/club/%d.png", id%3),
		}
	}
	return players
}

func stubFor(players []lineup.Player) *stubSource {
	s := newStub()
	for _, p := range players {
		s.bodies[p.Photo] = []byte("photo-" + p.Photo)
		s.bodies[p.Emblem] = []byte("emblem-" + p.Emblem)
	}
	return s
}

func newTestFetcher(src Source) *Fetcher {
	f := NewFetcher(func() Source { return src }, nil)
	f.RetryDelay = time.Millisecond
	return f
}

func TestFetchAll(t *testing.T) {
	players := testPlayers(4)
	f := newTestFetcher(stubFor(players))

	got, err := f.FetchAll(context.Background(), players, 2)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(got) != len(players) {
		t.Fatalf("got %d results, want %d", len(got), len(players))
	}
	for _, p := range players {
		a := got[p.ID]
		if a.PlayerID != p.ID || string(a.Photo) != "photo-"+p.Photo || string(a.Emblem) != "emblem-"+p.Emblem {
			t.Errorf("player %d: wrong assets %+v", p.ID, a)
		}
		if a.Degraded() {
			t.Errorf("player %d unexpectedly degraded", p.ID)
		}
	}
}

func TestFetchAll_PoolSizeDoesNotChangeResults(t *testing.T) {
	players := testPlayers(12)

	src := stubFor(players)
	src.delay = time.Millisecond
	serial, err := newTestFetcher(src).FetchAll(context.Background(), players, 1)
	if err != nil {
		t.Fatalf("FetchAll(1) failed: %v", err)
	}
	parallel, err := newTestFetcher(src).FetchAll(context.Background(), players, 5)
	if err != nil {
		t.Fatalf("FetchAll(5) failed: %v", err)
	}
	if !reflect.DeepEqual(serial, parallel) {
		t.Error("pool size 1 and 5 produced different results")
	}
}

func TestFetchAll_SourcePerTask(t *testing.T) {
	players := testPlayers(7)
	shared := stubFor(players)

	var created atomic.Int32
	f := NewFetcher(func() Source {
		created.Add(1)
		return shared
	}, nil)

	if _, err := f.FetchAll(context.Background(), players, 3); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if got := created.Load(); got != int32(len(players)) {
		t.Errorf("created %d sources, want one per player (%d)", got, len(players))
	}
}

func TestFetchAll_Degrade(t *testing.T) {
	players := testPlayers(2)
	src := stubFor(players)
	delete(src.bodies, players[0].Photo)
	delete(src.bodies, players[1].Emblem)

	got, err := newTestFetcher(src).FetchAll(context.Background(), players, 2)
	if err != nil {
		t.Fatalf("FetchAll failed under Degrade: %v", err)
	}

	a := got[players[0].ID]
	if a.Photo != nil || !errors.Is(a.PhotoErr, errors.ErrCodeAssetDownload) {
		t.Errorf("missing photo: Photo=%q PhotoErr=%v", a.Photo, a.PhotoErr)
	}
	if a.Emblem == nil || a.PlaceholderEmblem {
		t.Error("emblem should still be downloaded")
	}

	b := got[players[1].ID]
	if !b.PlaceholderEmblem || !errors.Is(b.EmblemErr, errors.ErrCodeAssetDownload) {
		t.Errorf("missing emblem not replaced: %+v", b)
	}
	if _, err := png.Decode(bytes.NewReader(b.Emblem)); err != nil {
		t.Errorf("placeholder is not a PNG: %v", err)
	}
}

func TestFetchAll_FailFast(t *testing.T) {
	players := testPlayers(3)
	src := stubFor(players)
	delete(src.bodies, players[1].Photo)

	f := newTestFetcher(src)
	f.Policy = FailFast
	got, err := f.FetchAll(context.Background(), players, 1)
	if !errors.Is(err, errors.ErrCodeAssetDownload) {
		t.Fatalf("expected ASSET_DOWNLOAD, got %v", err)
	}
	if got != nil {
		t.Error("partial results returned under FailFast")
	}
}

func TestFetchAll_InvalidURL(t *testing.T) {
	players := testPlayers(1)
	players[0].Photo = ""
	src := stubFor(players)

	got, err := newTestFetcher(src).FetchAll(context.Background(), players, 1)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if got[players[0].ID].PhotoErr == nil {
		t.Error("empty photo URL should be recorded as a failure")
	}
	if src.callCount("") != 0 {
		t.Error("invalid URL must not reach the source")
	}
}

func TestFetchAll_RetriesTransientFailures(t *testing.T) {
	players := testPlayers(1)
	src := stubFor(players)
	src.fail[players[0].Photo] = 1

	got, err := newTestFetcher(src).FetchAll(context.Background(), players, 1)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if got[players[0].ID].PhotoErr != nil {
		t.Errorf("transient failure not retried: %v", got[players[0].ID].PhotoErr)
	}
	if n := src.callCount(players[0].Photo); n != 2 {
		t.Errorf("photo fetched %d times, want 2", n)
	}
}

func TestFetchAll_Timeout(t *testing.T) {
	players := testPlayers(1)
	src := stubFor(players)
	src.delay = time.Second

	f := newTestFetcher(src)
	f.Timeout = 5 * time.Millisecond
	f.Retries = 1

	start := time.Now()
	got, err := f.FetchAll(context.Background(), players, 1)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("per-download timeout not enforced")
	}
	if got[players[0].ID].PhotoErr == nil || !got[players[0].ID].PlaceholderEmblem {
		t.Errorf("timed out downloads should degrade: %+v", got[players[0].ID])
	}
}

func TestFetchAll_Cache(t *testing.T) {
	players := testPlayers(2)
	src := stubFor(players)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	f := newTestFetcher(src)
	f.Cache = c

	first, err := f.FetchAll(context.Background(), players, 2)
	if err != nil {
		t.Fatalf("first FetchAll failed: %v", err)
	}
	second, err := f.FetchAll(context.Background(), players, 2)
	if err != nil {
		t.Fatalf("second FetchAll failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached results differ from downloaded ones")
	}
	for _, p := range players {
		if n := src.callCount(p.Photo); n != 1 {
			t.Errorf("photo %s fetched %d times, want 1", p.Photo, n)
		}
	}
}

func TestFetchAll_Cancelled(t *testing.T) {
	players := testPlayers(3)
	src := stubFor(players)
	src.delay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestFetcher(src).FetchAll(ctx, players, 2); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestFetchAll_Empty(t *testing.T) {
	got, err := newTestFetcher(newStub()).FetchAll(context.Background(), nil, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("FetchAll(nil) = %v, %v", got, err)
	}
}

func TestPlaceholder(t *testing.T) {
	a := Placeholder("https://img.test/club/1.png")
	if !bytes.Equal(a, Placeholder("https://img.test/club/1.png")) {
		t.Error("placeholder not deterministic")
	}
	img, err := png.Decode(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	if b := img.Bounds(); b.Dx() != PlaceholderSize || b.Dy() != PlaceholderSize {
		t.Errorf("placeholder size = %v", b)
	}
	if crestColor("a") == crestColor("b") {
		t.Error("different clubs should get different colors")
	}
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{"degrade", Degrade, false},
		{"", Degrade, false},
		{"fail-fast", FailFast, false},
		{"FailFast", FailFast, false},
		{"panic", Degrade, true},
	}
	for _, tt := range tests {
		got, err := ParseFailurePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFailurePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
