package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/storage"
)

func TestExportRender(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := storage.NewMemoryStore()

	both := storage.NewRender(lineup.Lineup{{ID: 1}}, "cartola", nil, map[string][]byte{"svg": []byte("<svg/>"), "png": []byte("png")})
	onlyPNG := storage.NewRender(nil, "cartola", nil, map[string][]byte{"png": []byte("png")})
	for _, r := range []*storage.Render{both, onlyPNG} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		id      string
		format  string
		want    string
		wantErr bool
	}{
		{"svg preferred", both.ID, "", "<svg/>", false},
		{"explicit format", both.ID, "png", "png", false},
		{"single artifact", onlyPNG.ID, "", "png", false},
		{"missing format", onlyPNG.ID, "pdf", "", true},
		{"unknown id", "6f1c2a0e-3b7d-4c1e-9a55-0d2b8f7e4c11", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name)
			path, err := exportRender(ctx, store, tt.id, tt.format, out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exportRender error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			data, _ := os.ReadFile(path)
			if string(data) != tt.want {
				t.Errorf("exported %q, want %q", data, tt.want)
			}
		})
	}
}

func TestRunHistoryList(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := runHistoryList(ctx, store, 10, time.Now()); err != nil {
		t.Fatalf("empty list failed: %v", err)
	}
	if err := store.Save(ctx, storage.NewRender(nil, "cartola", []int{7}, nil)); err != nil {
		t.Fatal(err)
	}
	if err := runHistoryList(ctx, store, 10, time.Now()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "Apr 10, 2024"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestJoinInts(t *testing.T) {
	if got := joinInts([]int{3, 10}); got != "3, 10" {
		t.Errorf("joinInts = %q", got)
	}
	if got := joinInts(nil); got != "—" {
		t.Errorf("joinInts(nil) = %q", got)
	}
}
