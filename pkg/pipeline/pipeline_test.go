package pipeline

import (
	"strings"
	"testing"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Empty options should pass: %v", err)
	}

	if opts.Game != mode.GameStandard {
		t.Errorf("Game should be %s, got %s", mode.GameStandard, opts.Game)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size should be %dx%d, got %dx%d", DefaultWidth, DefaultHeight, opts.Width, opts.Height)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Concurrency != assets.DefaultConcurrency {
		t.Errorf("Concurrency should be %d, got %d", assets.DefaultConcurrency, opts.Concurrency)
	}
	if opts.CaptainPolicy() != formation.CaptainAllTies || opts.Captain != "ties" {
		t.Errorf("captain = %s (%q)", opts.CaptainPolicy(), opts.Captain)
	}
	if opts.FailurePolicy != "degrade" {
		t.Errorf("FailurePolicy should be degrade, got %q", opts.FailurePolicy)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsExpress(t *testing.T) {
	opts := Options{Game: "express", Dropout: 0.3, Date: "2024-05-01"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}
	m, ok := opts.Mode.(mode.Express)
	if !ok {
		t.Fatalf("Mode = %T, want mode.Express", opts.Mode)
	}
	if m.Dropout != 0.3 || m.Date != "2024-05-01" {
		t.Errorf("express settings not applied: %+v", m)
	}
	if opts.CaptainPolicy() != formation.CaptainNone {
		t.Errorf("express default captain = %s, want none", opts.CaptainPolicy())
	}
}

func TestOptionsBudget(t *testing.T) {
	tests := []struct {
		name   string
		budget *float64
		want   float64
	}{
		{"unset", nil, mode.DefaultBudget},
		{"custom", float(120), 120},
		{"zero", float(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Game: "cartola", Budget: tt.budget}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			if m := opts.Mode.(mode.Standard); m.Budget != tt.want {
				t.Errorf("Budget = %g, want %g", m.Budget, tt.want)
			}
		})
	}
}

func float(v float64) *float64 { return &v }

func TestCheckScheme(t *testing.T) {
	pm := formation.DefaultPositionMap()
	if err := CheckScheme(mode.DefaultScheme(), pm); err != nil {
		t.Errorf("default scheme should fit the default map: %v", err)
	}
	s := mode.DefaultScheme().With(lineup.Defender, pm.MaxRank(lineup.Starters, lineup.Defender)+1)
	err := CheckScheme(s, pm)
	if !errors.Is(err, errors.ErrCodeInvalidInput) || !strings.Contains(err.Error(), "defender") {
		t.Errorf("expected INVALID_INPUT naming defender, got %v", err)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"game", Options{Game: "fantasy"}, errors.ErrCodeInvalidMode},
		{"budget", Options{Budget: float(-1)}, errors.ErrCodeInvalidInput},
		{"dropout", Options{Game: "express", Dropout: 2}, errors.ErrCodeInvalidInput},
		{"date", Options{Game: "express", Date: "01/05/2024"}, errors.ErrCodeInvalidInput},
		{"scheme", Options{Scheme: "striker=2"}, errors.ErrCodeInvalidInput},
		{"captain", Options{Captain: "everyone"}, errors.ErrCodeInvalidInput},
		{"policy", Options{FailurePolicy: "ignore"}, errors.ErrCodeInvalidInput},
		{"concurrency", Options{Concurrency: -1}, errors.ErrCodeInvalidInput},
		{"size", Options{Width: -5}, errors.ErrCodeInvalidInput},
		{"format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Game: "cartola", Captain: "single", Formats: []string{"svg", "json"}}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Captain != first.Captain || opts.Width != first.Width || strings.Join(opts.Formats, ",") != "svg,json" {
		t.Error("options changed on second call")
	}
}

func TestBuildRequest(t *testing.T) {
	req, err := BuildRequest(Options{Game: "cartola-express", Scheme: "midfielder=4,forward=2"})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Game != mode.GameExpress || req.Price != mode.ExpressBudget || req.Bench {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Scheme.Midfielder != 4 || req.Scheme.Forward != 2 || req.Scheme.Coach != 0 {
		t.Errorf("scheme = %s", req.Scheme)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Game: "cartola", Width: 1024, Height: 768, Captain: "single", Tooltips: true}
	k := opts.ArtifactKeyOpts("png", "abc")
	if k.Format != "png" || k.Width != 1024 || k.Height != 768 || k.Captain != "single" || !k.Tooltips {
		t.Errorf("ArtifactKeyOpts = %+v", k)
	}
	if k.Game != "cartola" || k.Positions != "abc" {
		t.Errorf("ArtifactKeyOpts = %+v", k)
	}
}

func TestReadLineup(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"output", `{"starters": [{"id": 1, "position": "forward"}], "bench": [{"id": 2, "position": "goalkeeper"}]}`, 2},
		{"legacy", `{"players": [{"id": 1, "position": "forward"}]}`, 1},
		{"array", `[{"id": 1, "position": "forward", "type": "starters"}]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ReadLineup(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("ReadLineup failed: %v", err)
			}
			if len(l) != tt.want {
				t.Errorf("got %d players, want %d", len(l), tt.want)
			}
		})
	}

	for _, bad := range []string{`{`, `[{"id": 1, "position": "striker", "type": "starters"}]`} {
		if _, err := ReadLineup(strings.NewReader(bad)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ReadLineup(%q) = %v, want INVALID_INPUT", bad, err)
		}
	}
}
