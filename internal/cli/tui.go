package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palpiteiro/palpiteiro/pkg/formation"
	"github.com/palpiteiro/palpiteiro/pkg/mode"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorKit)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorChalk)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorShade)
)

// =============================================================================
// ModeListModel - Interactive game mode selection
// =============================================================================

// ModeListModel is the bubbletea model for picking a game mode.
type ModeListModel struct {
	Modes    []mode.Mode
	Cursor   int
	Selected mode.Mode
}

// NewModeListModel creates a picker over modes.
func NewModeListModel(modes []mode.Mode) ModeListModel {
	return ModeListModel{Modes: modes}
}

func (m ModeListModel) Init() tea.Cmd {
	return nil
}

func (m ModeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Modes)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Modes) > 0 {
				m.Selected = m.Modes[m.Cursor]
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ModeListModel) View() string {
	var b strings.Builder

	b.WriteString(listSelectedStyle.Render("Select Game"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, md := range m.Modes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-18s %s", cursor, md.Label(), listDimStyle.Render(modeSummary(md)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// modeSummary describes a mode's fixed settings in one line.
func modeSummary(m mode.Mode) string {
	parts := []string{fmt.Sprintf("budget %.1f", m.Price())}
	if m.Bench() {
		parts = append(parts, "bench")
	}
	if m.Captain() != formation.CaptainNone {
		parts = append(parts, "captain")
	}
	return strings.Join(parts, " · ")
}

// pickMode runs the picker and returns the chosen mode, or nil when the user
// quit without choosing.
func pickMode() (mode.Mode, error) {
	p := tea.NewProgram(NewModeListModel(mode.All()))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(ModeListModel)
	if !ok {
		return nil, nil
	}
	return fm.Selected, nil
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
