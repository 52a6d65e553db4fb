package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/clipkeep/internal/theme"
)

// Styles are the lipgloss styles for one palette.
type Styles struct {
	Palette  theme.Palette
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Badge    lipgloss.Style
	Card     lipgloss.Style
	Modal    lipgloss.Style
	Key      lipgloss.Style
}

// NewStyles derives the UI styles from p.
func NewStyles(p theme.Palette) Styles {
	return Styles{
		Palette: p,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Text:    lipgloss.NewStyle().Foreground(p.TextPrimary),
		Muted:   lipgloss.NewStyle().Foreground(p.TextSecondary),
		Selected: lipgloss.NewStyle().
			Background(p.Primary).
			Foreground(p.Card).
			Bold(true),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Error:   lipgloss.NewStyle().Foreground(p.Danger),
		Badge: lipgloss.NewStyle().
			Background(p.Success).
			Foreground(p.Card).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Danger).
			Padding(1, 2).
			Align(lipgloss.Center, lipgloss.Center),
		Key: lipgloss.NewStyle().Bold(true).Foreground(p.IconSecondary),
	}
}
