package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/pkg/config"
	"github.com/palpiteiro/palpiteiro/pkg/errors"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
	"github.com/palpiteiro/palpiteiro/pkg/pipeline"
	"github.com/palpiteiro/palpiteiro/pkg/storage"
)

// defaultOutput is the base name of written artifacts.
const defaultOutput = "lineup"

// renderOpts holds the flags of the render command that are not pipeline
// options.
type renderOpts struct {
	output      string // output file (single format) or base path
	formats     string // comma-separated formats
	input       string // lineup file; skips the lineup service
	interactive bool   // pick the game mode in a menu
	save        bool   // store the render in the local history
	noCache     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Request a lineup and render it on the pitch",
		Long: `Request a lineup from the lineup service and render it as an annotated
field diagram.

Players are placed by position and roster, ranked by id within each group.
Photos and club emblems are downloaded concurrently; a player whose assets
cannot be downloaded is still placed and labelled.

Use --input to render a lineup file instead of calling the service.`,
		Example: `  palpiteiro render --game cartola --budget 120 -f svg,png
  palpiteiro render --game express --dropout 0.2 --date 2024-05-01
  palpiteiro render --input lineup.json -o field.svg
  palpiteiro render --interactive --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd, &opts, cfg)
			opts.Formats = parseFormats(ro.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd, cfg, opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (default: lineup)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&ro.input, "input", "i", "", "render a lineup file instead of requesting one")
	cmd.Flags().BoolVar(&ro.interactive, "interactive", false, "pick the game mode interactively")
	cmd.Flags().BoolVar(&ro.save, "save", false, "save the render to the local history")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	addRenderFlags(cmd, &opts)

	return cmd
}

// addRenderFlags registers the pipeline option flags shared by render and
// layout.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Game, "game", "g", "", "game mode: cartola (default), cartola-express")
	cmd.Flags().Float64("budget", mode.DefaultBudget, "team budget (cartola)")
	cmd.Flags().Float64Var(&opts.Dropout, "dropout", 0, "probability of discarding a candidate, 0 to 1 (cartola-express)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "game day as YYYY-MM-DD (cartola-express)")
	cmd.Flags().StringVar(&opts.Scheme, "scheme", "", "formation overrides, e.g. defender=3,forward=2")
	cmd.Flags().StringVar(&opts.Captain, "captain", "", "captain policy: none, ties, single (default: game mode's)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "parallel asset downloads")
	cmd.Flags().StringVar(&opts.FailurePolicy, "on-asset-failure", "", "asset failure policy: degrade, fail-fast")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "canvas height in pixels")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background image (default: drawn pitch)")
	cmd.Flags().BoolVar(&opts.Tooltips, "tooltips", true, "show price tooltips on hover (svg)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached artifacts")
}

// applyConfigDefaults fills options whose flags were not set from cfg. An
// explicit --budget is kept even when zero.
func applyConfigDefaults(cmd *cobra.Command, opts *pipeline.Options, cfg *config.Config) {
	base := baseOptions(cfg)
	fill := func(flag string, apply func()) {
		if !cmd.Flags().Changed(flag) {
			apply()
		}
	}
	if cmd.Flags().Changed("budget") {
		budget, _ := cmd.Flags().GetFloat64("budget")
		opts.Budget = &budget
	}
	fill("captain", func() { opts.Captain = base.Captain })
	fill("concurrency", func() { opts.Concurrency = base.Concurrency })
	fill("on-asset-failure", func() { opts.FailurePolicy = base.FailurePolicy })
	fill("width", func() { opts.Width = base.Width })
	fill("height", func() { opts.Height = base.Height })
	fill("background", func() { opts.Background = base.Background })
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts pipeline.Options, ro renderOpts) error {
	logger := logFrom(ctx)
	opts.Logger = logger

	if ro.interactive {
		m, err := pickMode()
		if err != nil {
			return err
		}
		if m == nil {
			printDetail("No game selected")
			return nil
		}
		opts.Game = m.Game()
	}

	// Resolve the game mode up front so its captain policy also applies to
	// lineup files.
	if ro.input == "" || ro.interactive || cmd.Flags().Changed("game") {
		if err := opts.ValidateForLineup(); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering lineup...")
	spinner.Start()
	var result *pipeline.Result
	if ro.input != "" {
		result, err = renderFile(ctx, runner, ro.input, opts)
	} else {
		result, err = runner.Execute(ctx, opts)
	}
	if err != nil {
		logger.Debug("render failed", "err", err)
		spinner.StopWithError(errors.PublicMessage(err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d players", result.Stats.Players))
	printStats(result.Stats, result.CacheInfo.RenderHit)

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, ro.output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}

	if ro.save {
		id, err := saveRender(ctx, result, opts)
		if err != nil {
			return fmt.Errorf("save render: %w", err)
		}
		printKeyValue("Saved", id)
		printNextStep("Export it later", "palpiteiro history export "+id)
	}
	return nil
}

// renderFile renders a lineup file.
func renderFile(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (*pipeline.Result, error) {
	l, err := pipeline.ReadLineupFile(path)
	if err != nil {
		return nil, err
	}
	return runner.RenderLineup(ctx, l, opts)
}

// writeArtifacts writes one file per format and returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	base := basePath(output)

	var paths []string
	for _, format := range formats {
		path := base + "." + format
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s artifact produced", format)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, err
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath strips a known format extension from output. An empty output
// means [defaultOutput].
func basePath(output string) string {
	if output == "" {
		return defaultOutput
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// saveRender stores result in the local render history.
func saveRender(ctx context.Context, result *pipeline.Result, opts pipeline.Options) (string, error) {
	store, err := storage.NewFileStore("")
	if err != nil {
		return "", err
	}
	defer store.Close()

	var captains []int
	if result.Layout != nil {
		captains = slices.Clone(result.Layout.Captains)
	}
	rec := storage.NewRender(result.Lineup, opts.Game, captains, result.Artifacts)
	rec.LineupHash = result.LineupHash
	if err := store.Save(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}
