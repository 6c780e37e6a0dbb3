package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/pipeline"
	"github.com/palpiteiro/palpiteiro/pkg/scene"
)

// layoutCommand creates the layout command for inspecting placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		positions string
		asJSON    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [lineup.json]",
		Short: "Show where each player of a lineup is placed",
		Long: `Compute the field layout of a lineup file and print it as a table.

Each player gets a rank inside its (roster, position) group by ascending id,
a plot key of the form <roster>-<position>-<rank>, and the coordinate the
position map defines for that key. Captains are marked with (C).

No assets are downloaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("game") {
				if err := opts.ValidateForLineup(); err != nil {
					return err
				}
			}
			return c.runLayout(cmd.Context(), args[0], positions, opts, asJSON)
		},
	}

	cmd.Flags().StringVarP(&opts.Game, "game", "g", "", "game mode whose captain policy applies")
	cmd.Flags().StringVar(&opts.Captain, "captain", "", "captain policy: none, ties, single")
	cmd.Flags().StringVar(&positions, "positions", "", "position map JSON (default: built-in)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, positions string, opts pipeline.Options, asJSON bool) error {
	logger := logFrom(ctx)
	done := stopwatch(logger)

	l, err := pipeline.ReadLineupFile(input)
	if err != nil {
		return err
	}

	var pm *formation.PositionMap
	if positions != "" {
		if pm, err = formation.LoadPositionMapFile(positions); err != nil {
			return err
		}
	}

	laid, err := pipeline.ComputeLayout(l, pm, opts)
	if err != nil {
		return err
	}
	logger.Debug("layout computed", "placements", len(laid.Placements), "captains", len(laid.Captains))

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(laid)
	}

	fmt.Println(layoutTable(laid))
	done("placed lineup", "players", len(laid.Placements), "captains", len(laid.Captains))
	return nil
}

// layoutTable renders placements as a bordered table, captains highlighted.
func layoutTable(laid *formation.Result) string {
	rows := make([][]string, 0, len(laid.Placements))
	for _, p := range laid.Placements {
		rows = append(rows, []string{
			strconv.Itoa(p.Player.ID),
			p.DisplayName,
			string(p.Player.Position),
			string(p.Player.Roster),
			p.PlotKey,
			fmt.Sprintf("%.3f", p.Coord.X),
			fmt.Sprintf("%.3f", p.Coord.Y),
			scene.FormatPrice(p.Player.Price),
			strconv.FormatFloat(p.Player.Points, 'f', -1, 64),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorLine).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorShade)).
		Headers("ID", "Player", "Position", "Roster", "Plot key", "X", "Y", "Price", "Points").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if row >= 0 && row < len(laid.Placements) && laid.Placements[row].Captain {
				return cell.Foreground(colorGrass).Bold(true)
			}
			if col == 4 {
				return cell.Foreground(colorKit)
			}
			return cell
		})
	return t.Render()
}
