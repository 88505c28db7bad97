// Package tui provides the terminal grid editor for timesheets.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the editor.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorWarning = lipgloss.Color("#F59E0B") // Yellow
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorActive  = lipgloss.Color("#3B82F6") // Blue
	ColorBorder  = lipgloss.Color("#4B5563") // Dark gray
)

var (
	// StyleTitle is used for the period heading.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleSubtitle is used for secondary information next to the title.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	StyleCell   = lipgloss.NewStyle().Padding(0, 1)
	StyleTotal  = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	// StyleSelected marks the cell under the cursor.
	StyleSelected = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorActive)

	// StyleReadOnly is used for cells outside a project's active window.
	StyleReadOnly = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorMuted)

	StyleNote    = lipgloss.NewStyle().Italic(true).Foreground(ColorMuted)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)

	// StylePrompt frames the hours and note inputs.
	StylePrompt = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	StyleHelp     = lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1)
	StyleHelpKey  = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	StyleHelpDesc = lipgloss.NewStyle().Foreground(ColorMuted)
)

type helpKey struct {
	key  string
	desc string
}

// helpBar renders the key bindings of the current mode.
func helpBar(keys []helpKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, StyleHelpKey.Render(k.key)+" "+StyleHelpDesc.Render(k.desc))
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
