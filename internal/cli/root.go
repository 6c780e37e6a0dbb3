// Package cli implements the palpiteiro command-line interface.
//
// This package provides commands for rendering lineups from the lineup
// service or from a file, inspecting the computed field layout, serving
// renders over HTTP, and managing the asset and artifact cache. The CLI is
// built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: request a lineup and write SVG, PNG, PDF or JSON artifacts
//   - layout: print the field placements of a lineup file as a table
//   - serve: run the HTTP front end
//   - history: list and export saved renders
//   - cache: manage the cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/pkg/observability"
)

// Execute builds the command tree and runs it with ctx.
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
			observability.NewLogHooks(c.Logger).Register()
		}
		c.SetLogLevel(level)
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	return root.ExecuteContext(ctx)
}
