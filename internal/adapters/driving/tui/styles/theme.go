// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks finished entries.
	Success lipgloss.Color

	// Warning marks entries still in review.
	Warning lipgloss.Color

	// Error marks problems and flagged entries.
	Error lipgloss.Color

	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for highlighted items.
	Selected lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style

	// statuses colour the workflow stage of an entry.
	statuses map[domain.Status]lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: fg(theme.Foreground),
		Muted:  fg(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: fg(theme.Error),
		Help:  fg(theme.Muted),

		statuses: map[domain.Status]lipgloss.Style{
			domain.StatusToDo:         fg(theme.Muted),
			domain.StatusEditing:      fg(theme.Secondary),
			domain.StatusProofreading: fg(theme.Warning),
			domain.StatusProblematic:  fg(theme.Error),
			domain.StatusDone:         fg(theme.Success),
		},
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Status renders a status label in its stage colour.
func (s *Styles) Status(st domain.Status) string {
	style, ok := s.statuses[st]
	if !ok {
		return string(st)
	}
	return style.Render(string(st))
}

// Progress renders a bar of width cells filled in proportion to done/total.
func (s *Styles) Progress(done, total, width int) string {
	if width < 1 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
	}
	bar := lipgloss.NewStyle().Foreground(s.theme.Success).Render(strings.Repeat("█", filled))
	return bar + lipgloss.NewStyle().Foreground(s.theme.Border).Render(strings.Repeat("░", width-filled))
}
