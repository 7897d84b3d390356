package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/opskit/errbook/internal/playbook"
)

// Palette holds the adaptive colors shared by the browser views
type Palette struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Selected  lipgloss.AdaptiveColor
}

var defaultPalette = Palette{
	Primary:   lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#3B82F6"},
	Secondary: lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
	Success:   lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"},
	Warning:   lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"},
	Error:     lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"},
	Info:      lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"},
	Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
	Selected:  lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"},
}

// Styles contains the styled components the browser renders with
type Styles struct {
	Palette Palette

	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Selected lipgloss.Style
	Box      lipgloss.Style
}

// GetStyles builds the browser styles from the default palette
func GetStyles() *Styles {
	p := defaultPalette

	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(p.Secondary),

		Success: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(p.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(p.Info),

		Selected: lipgloss.NewStyle().
			Background(p.Selected).
			Foreground(p.Primary).
			Bold(true),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),
	}
}

// Severity returns the style for a severity level
func (s *Styles) Severity(sev playbook.Severity) lipgloss.Style {
	switch sev {
	case playbook.SeverityHigh:
		return s.Error
	case playbook.SeverityMedium:
		return s.Warning
	case playbook.SeverityLow:
		return s.Info
	default:
		return s.Muted
	}
}
