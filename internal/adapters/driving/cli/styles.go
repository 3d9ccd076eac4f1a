package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal colours.
var (
	colorPrimary = lipgloss.Color("#1D4ED8")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#15803D")
	colorWarning = lipgloss.Color("#B45309")
	colorError   = lipgloss.Color("#B91C1C")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// title renders a heading underlined to its width.
func title(s string) string {
	return titleStyle.Render(s) + "\n" + mutedStyle.Render(strings.Repeat("=", lipgloss.Width(s)))
}
