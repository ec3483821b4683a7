package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

var (
	primaryColor = lipgloss.Color("#16A34A") // Green
	accentColor  = lipgloss.Color("#3B82F6") // Blue
	errorColor   = lipgloss.Color("#DC2626") // Red
	warningColor = lipgloss.Color("#B45309") // Amber
	mutedColor   = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			PaddingBottom(1)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginBottom(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			PaddingBottom(1)

	errorCardStyle = cardStyle.
			BorderForeground(errorColor)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	tipStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(primaryColor)

	proTipStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2)

	disabledButtonStyle = buttonStyle.
				Background(lipgloss.Color("#9CA3AF"))
)

func badgeStyle(label waste.Label) lipgloss.Style {
	b := waste.BadgeFor(label)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(b.Foreground)).
		Background(lipgloss.Color(b.Background)).
		Bold(true).
		Padding(0, 2)
}
