package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
	"github.com/palpiteiro/palpiteiro/pkg/pipeline"
	"github.com/palpiteiro/palpiteiro/pkg/storage"
)

type fakeRenderer struct {
	mu   sync.Mutex
	err  error
	last pipeline.Options
}

func (f *fakeRenderer) Execute(_ context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	f.mu.Lock()
	f.last = opts
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		artifacts[format] = []byte("artifact:" + format)
	}
	return &pipeline.Result{
		Lineup:     lineup.Lineup{{ID: 1}, {ID: 2}},
		LineupHash: "abc",
		Layout:     &formation.Result{Captains: []int{2}},
		Artifacts:  artifacts,
	}, nil
}

func (f *fakeRenderer) lastOptions() pipeline.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func newTestServer(t *testing.T, r Renderer) (*httptest.Server, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	h := New(r, store, pipeline.Options{}, log.New(io.Discard))
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, store
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRenderer{})
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
}

func TestLineup_Budget(t *testing.T) {
	tests := []struct {
		query string
		want  float64
	}{
		{"", 100},
		{"&budget=0", 0},
		{"&budget=87.5", 87.5},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := &fakeRenderer{}
			srv, _ := newTestServer(t, r)
			resp, body := get(t, srv.URL+"/lineup?game=cartola"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			m, ok := r.lastOptions().Mode.(mode.Standard)
			if !ok || m.Budget != tt.want {
				t.Errorf("mode = %#v, want budget %g", r.lastOptions().Mode, tt.want)
			}
		})
	}
}

func TestLineup(t *testing.T) {
	r := &fakeRenderer{}
	srv, store := newTestServer(t, r)

	resp, body := get(t, srv.URL+"/lineup?game=express&dropout=0.3&date=2024-05-01&format=png")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if string(body) != "artifact:png" {
		t.Errorf("body = %q", body)
	}
	opts := r.lastOptions()
	if opts.Game != "cartola-express" || opts.Dropout != 0.3 || opts.Date != "2024-05-01" || !opts.Tooltips {
		t.Errorf("unexpected options: %+v", opts)
	}

	id := resp.Header.Get("X-Render-ID")
	rec, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("render %q not stored: %v", id, err)
	}
	if rec.Game != "cartola-express" || rec.Players != 2 || rec.LineupHash != "abc" || len(rec.Captains) != 1 {
		t.Errorf("unexpected stored render: %+v", rec)
	}

	resp, body = get(t, srv.URL+"/renders/"+id)
	if resp.StatusCode != http.StatusOK || string(body) != "artifact:png" {
		t.Errorf("GET /renders/%s = %d %q", id, resp.StatusCode, body)
	}
}

func TestLineup_BadInput(t *testing.T) {
	tests := []struct {
		query string
		code  errors.Code
	}{
		{"game=poker", errors.ErrCodeInvalidMode},
		{"format=gif", errors.ErrCodeInvalidFormat},
		{"budget=lots", errors.ErrCodeInvalidInput},
		{"game=express&dropout=2", errors.ErrCodeInvalidInput},
		{"tooltips=maybe", errors.ErrCodeInvalidInput},
	}

	r := &fakeRenderer{}
	srv, _ := newTestServer(t, r)
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/lineup?"+tt.query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var er ErrorResponse
			if err := json.Unmarshal(body, &er); err != nil {
				t.Fatal(err)
			}
			if er.Error.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", er.Error.Code, tt.code)
			}
		})
	}
}

func TestLineup_FailureIsGeneric(t *testing.T) {
	r := &fakeRenderer{err: errors.New(errors.ErrCodeRemoteService, "upstream said 503 with secret details")}
	srv, store := newTestServer(t, r)

	resp, body := get(t, srv.URL+"/lineup")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatal(err)
	}
	if er.Error.Message != errors.GenericMessage {
		t.Errorf("message = %q", er.Error.Message)
	}
	if strings.Contains(string(body), "secret") {
		t.Error("error details leaked to the client")
	}

	list, _ := store.List(context.Background(), 0)
	if len(list) != 0 {
		t.Errorf("failed render was stored: %+v", list)
	}
}

func TestRenders(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRenderer{})
	for range 3 {
		get(t, srv.URL+"/lineup")
	}

	resp, body := get(t, srv.URL+"/renders/?limit=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Renders []storage.Render `json:"renders"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Renders) != 2 {
		t.Errorf("got %d renders, want 2", len(out.Renders))
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/renders/not-a-uuid", http.StatusNotFound},
		{"/renders/6f1c2a0e-3b7d-4c1e-9a55-0d2b8f7e4c11", http.StatusNotFound},
		{"/renders/" + out.Renders[0].ID + "?format=pdf", http.StatusNotFound},
		{"/renders/" + out.Renders[0].ID, http.StatusOK},
		{"/renders/?limit=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if resp, _ := get(t, srv.URL+tt.path); resp.StatusCode != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}
}
