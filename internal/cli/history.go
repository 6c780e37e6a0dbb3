package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/pkg/storage"
)

// historyCommand creates the history command for saved renders.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List renders saved with render --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewFileStore("")
			if err != nil {
				return err
			}
			defer store.Close()
			return runHistoryList(cmd.Context(), store, limit, time.Now())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "number of renders to list")

	cmd.AddCommand(c.historyExportCommand())
	return cmd
}

func (c *CLI) historyExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved render to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewFileStore("")
			if err != nil {
				return err
			}
			defer store.Close()
			path, err := exportRender(cmd.Context(), store, args[0], format, output)
			if err != nil {
				return err
			}
			printFile(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "artifact format (default: svg, or the only one stored)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <id>.<format>)")
	return cmd
}

func runHistoryList(ctx context.Context, store storage.Store, limit int, now time.Time) error {
	renders, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(renders) == 0 {
		printInfo("No saved renders")
		return nil
	}

	rows := make([][]string, 0, len(renders))
	for _, r := range renders {
		rows = append(rows, []string{
			r.ID,
			r.Game,
			strconv.Itoa(r.Players),
			joinInts(r.Captains),
			formatRelativeTime(r.CreatedAt, now),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorShade)).
		Headers("ID", "Game", "Players", "Captains", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return s.Foreground(colorLine).Bold(true)
			case col == 0:
				return s.Foreground(colorKit)
			case col == 4:
				return s.Foreground(colorShade)
			}
			return s
		})
	fmt.Println(t.Render())
	return nil
}

// exportRender writes one artifact of a stored render and returns its path.
func exportRender(ctx context.Context, store storage.Store, id, format, output string) (string, error) {
	rec, err := store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}

	if format == "" {
		formats := rec.Formats()
		switch {
		case len(formats) == 0:
			return "", fmt.Errorf("render %s has no artifacts", id)
		case len(formats) == 1:
			format = formats[0]
		default:
			format = "svg"
		}
	}
	data, ok := rec.Artifacts[format]
	if !ok {
		return "", fmt.Errorf("render %s has no %s artifact (stored: %s)", id, format, strings.Join(rec.Formats(), ", "))
	}

	if output == "" {
		output = rec.ID + "." + format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", output, err)
	}
	return output, nil
}

func joinInts(ids []int) string {
	if len(ids) == 0 {
		return "—"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
