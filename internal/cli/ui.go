package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palpiteiro/palpiteiro/pkg/pipeline"
)

// Terminal palette, ANSI 256 colors.
var (
	colorGrass = lipgloss.Color("35")  // captains, success
	colorChalk = lipgloss.Color("255") // values
	colorKit   = lipgloss.Color("36")  // accents
	colorCard  = lipgloss.Color("220") // warnings
	colorFoul  = lipgloss.Color("167") // errors
	colorLine  = lipgloss.Color("245") // headers, labels
	colorShade = lipgloss.Color("240") // borders, muted text
)

var (
	styleAccent  = lipgloss.NewStyle().Foreground(colorKit)
	styleMuted   = lipgloss.NewStyle().Foreground(colorShade)
	styleValue   = lipgloss.NewStyle().Foreground(colorChalk)
	styleWarn    = lipgloss.NewStyle().Foreground(colorCard)
	styleLabel   = lipgloss.NewStyle().Foreground(colorLine).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// stdout is where status lines go; tests swap it.
var stdout io.Writer = os.Stdout

type mark struct {
	glyph string
	color lipgloss.Color
}

var (
	markOK   = mark{"✓", colorGrass}
	markFail = mark{"✗", colorFoul}
	markWarn = mark{"!", colorCard}
	markNote = mark{"›", colorLine}
)

func status(m mark, msg string) {
	fmt.Fprintln(stdout, lipgloss.NewStyle().Foreground(m.color).Render(m.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { status(markOK, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { status(markFail, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { status(markNote, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	status(markWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+styleMuted.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key)+" "+styleValue.Render(value))
}

// printStats summarizes a render, e.g.
// "12 starters · 5 bench · 1 captain(s) · fresh".
func printStats(st pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d starters", st.Starters),
		fmt.Sprintf("%d bench", st.Bench),
	}
	if st.Captains > 0 {
		parts = append(parts, fmt.Sprintf("%d captain(s)", st.Captains))
	}
	for i := range parts {
		parts[i] = styleMuted.Render(parts[i])
	}
	if st.Degraded > 0 {
		parts = append(parts, styleWarn.Render(fmt.Sprintf("%d degraded", st.Degraded)))
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGrass).Render("cached"))
	} else {
		parts = append(parts, styleMuted.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, styleMuted.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, styleMuted.Render(description+":")+" "+styleCommand.Render(cmd))
}
