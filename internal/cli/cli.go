package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/pkg/assets"
	"github.com/palpiteiro/palpiteiro/pkg/buildinfo"
	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/config"
	"github.com/palpiteiro/palpiteiro/pkg/integrations/lineupapi"
	"github.com/palpiteiro/palpiteiro/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "palpiteiro"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag; empty uses the default location.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Palpiteiro renders fantasy football lineups on a pitch",
		Long:         `Palpiteiro requests a lineup from the lineup service and renders it as an annotated field diagram with player photos, club emblems, captain marks and price tooltips.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/palpiteiro/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the configuration named by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRunner wires a pipeline runner from cfg. Without an API URL the runner
// can only render lineups supplied by the caller.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}

	policy, err := assets.ParseFailurePolicy(cfg.Assets.FailurePolicy)
	if err != nil {
		cc.Close()
		return nil, err
	}
	fetcher := assets.NewFetcher(assets.HTTPSourceFactory(cfg.Assets.Timeout), c.Logger)
	fetcher.Cache = cc
	fetcher.Timeout = cfg.Assets.Timeout
	fetcher.Retries = cfg.Assets.Retries
	fetcher.Limiter = assets.NewLimiter(cfg.Assets.RPS)
	fetcher.Policy = policy

	var source pipeline.LineupSource
	if cfg.API.URL != "" {
		source = lineupapi.NewClientWithTimeout(cfg.API.URL, cfg.API.Key, cfg.API.Timeout)
	}

	runner := pipeline.NewRunner(source, fetcher, cc, nil, c.Logger)
	pm, err := cfg.PositionMap()
	if err != nil {
		runner.Close()
		return nil, err
	}
	runner.Positions = pm
	return runner, nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	c, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return c, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the configuration.
func baseOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Captain:       cfg.Render.Captain,
		Concurrency:   cfg.Assets.Concurrency,
		FailurePolicy: cfg.Assets.FailurePolicy,
		Width:         cfg.Render.Width,
		Height:        cfg.Render.Height,
		Background:    cfg.Render.Background,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.TrimSpace(f)
	}
	return formats
}
