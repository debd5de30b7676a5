// Package render formats mirror reports for the terminal.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"notegraph/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Link      = lipgloss.Color("#60A5FA") // Blue

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	Rel = lipgloss.NewStyle().
		Foreground(Link)

	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// HealthStyle returns the style for a health reading. Stale and broken get
// different colors: a stale mirror still serves reads, a broken one has nothing to serve.
func HealthStyle(h domain.Health) lipgloss.Style {
	switch h {
	case domain.HealthHealthy:
		return Success
	case domain.HealthStale:
		return WarningMsg
	case domain.HealthBroken:
		return ErrorMsg
	default:
		return MutedText
	}
}
