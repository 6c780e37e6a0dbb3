// Package pipeline provides the render pipeline for palpiteiro.
//
// This package implements the complete lineup → layout → fetch → compose →
// render pipeline used by the CLI and the HTTP server. Centralizing it keeps
// both entry points consistent.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Lineup: Request a lineup for a game mode from the lineup service
//  2. Layout: Rank players and resolve their field coordinates
//  3. Fetch: Download photos and emblems on a bounded pool
//  4. Compose: Build the scene (overlays and hit targets)
//  5. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Any fatal failure aborts the run: no partial scene is ever returned.
//
// # Usage
//
//	runner := pipeline.NewRunner(lineupapi.NewClient(url, key), nil, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Game:    "cartola",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(errors.PublicMessage(err))
//	}
//	svg := result.Artifacts["svg"]
//
// A lineup obtained elsewhere (a file, a test) skips the first stage:
//
//	result, err := runner.RenderLineup(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/lineup"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = scene.DefaultWidth
	DefaultHeight = scene.DefaultHeight
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for HTTP requests.
type Options struct {
	// Lineup options. Mode takes precedence over Game and its settings.
	Mode mode.Mode `json:"-"`
	Game string    `json:"game,omitempty"`
	// Budget nil uses the mode's default; zero is a valid budget.
	Budget  *float64 `json:"budget,omitempty"`
	Dropout float64  `json:"dropout,omitempty"`
	Date    string   `json:"date,omitempty"`
	// Scheme overrides the default formation, e.g. "defender=3,forward=2".
	Scheme string `json:"scheme,omitempty"`

	// Layout options. An empty Captain uses the mode's default.
	Captain string `json:"captain,omitempty"`

	// Fetch options
	Concurrency   int    `json:"concurrency,omitempty"`
	FailurePolicy string `json:"failure_policy,omitempty"`

	// Render options
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"` // image path; empty draws a pitch
	Tooltips   bool     `json:"tooltips,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	captain   formation.CaptainPolicy
	failure   assets.FailurePolicy
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Lineup is the rendered lineup, ordered by player id.
	Lineup lineup.Lineup

	// LineupHash is the content hash of the lineup.
	LineupHash string

	// Layout holds the placements and captains.
	Layout *formation.Result

	// Scene is the composed scene. It is nil when every artifact came from
	// the cache.
	Scene *scene.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Players  int
	Starters int
	Bench    int
	Captains int
	// Degraded counts players with at least one failed download.
	Degraded int

	LineupTime  time.Duration
	LayoutTime  time.Duration
	FetchTime   time.Duration
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks every option and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLineup(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLineup resolves the game mode and checks its settings.
func (o *Options) ValidateForLineup() error {
	if o.Mode == nil {
		m, err := mode.Parse(o.Game)
		if err != nil {
			return err
		}
		switch m := m.(type) {
		case mode.Standard:
			if o.Budget != nil {
				m.Budget = *o.Budget
			}
			o.Mode = m
		case mode.Express:
			m.Dropout = o.Dropout
			m.Date = o.Date
			o.Mode = m
		}
	}
	o.Game = o.Mode.Game()
	if err := o.Mode.Validate(); err != nil {
		return err
	}
	_, err := o.SchemeFor()
	return err
}

// ValidateForRender validates and sets defaults for layout, fetch and
// rendering. It does not need a game mode unless Captain is empty.
func (o *Options) ValidateForRender() error {
	if o.Captain == "" {
		o.captain = formation.CaptainAllTies
		if o.Mode != nil {
			o.captain = o.Mode.Captain()
		}
		o.Captain = o.captain.String()
	} else {
		p, err := formation.ParseCaptainPolicy(o.Captain)
		if err != nil {
			return err
		}
		o.captain = p
	}

	policy, err := assets.ParseFailurePolicy(o.FailurePolicy)
	if err != nil {
		return err
	}
	o.failure = policy
	o.FailurePolicy = policy.String()

	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must be positive, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = assets.DefaultConcurrency
	}

	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid canvas size %dx%d", o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SchemeFor returns the formation requested from the lineup service: the
// default scheme with Scheme's overrides applied.
func (o *Options) SchemeFor() (mode.Scheme, error) {
	return mode.ParseOverrides(mode.DefaultScheme(), o.Scheme)
}

// CaptainPolicy returns the resolved captain policy. Call after validation.
func (o *Options) CaptainPolicy() formation.CaptainPolicy { return o.captain }

// ArtifactKeyOpts returns cache key options for artifact rendering with the
// position map identified by positions.
func (o *Options) ArtifactKeyOpts(format, positions string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Game:       o.Game,
		Positions:  positions,
		Width:      o.Width,
		Height:     o.Height,
		Captain:    o.Captain,
		Background: o.Background,
		Tooltips:   o.Tooltips,
	}
}
