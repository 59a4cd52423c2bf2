package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	BorderColor   = lipgloss.Color("#5A5A5A")
	AccentColor   = lipgloss.Color("#00D7FF")
	SelectedColor = lipgloss.Color("#FF6B6B")
	TextColor     = lipgloss.Color("#FFFFFF")
	SubtleColor   = lipgloss.Color("#888888")
	ErrorColor    = lipgloss.Color("#FF5555")
	TypeColor     = lipgloss.Color("#FFB86C")
	WildcardColor = lipgloss.Color("#BD93F9")
)

var (
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1).
			Margin(0, 1)

	ActivePaneStyle = PaneStyle.
			BorderForeground(AccentColor)

	SelectedItemStyle = lipgloss.NewStyle().
				Background(SelectedColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	ItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// WildcardItemStyle marks a date-sharded table family (name ending in _*).
	WildcardItemStyle = lipgloss.NewStyle().
				Foreground(WildcardColor)

	SubtleItemStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	TabActiveStyle = lipgloss.NewStyle().
			Background(AccentColor).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 2).
			Bold(true)

	TabInactiveStyle = lipgloss.NewStyle().
				Background(BorderColor).
				Foreground(TextColor).
				Padding(0, 2)

	SearchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AccentColor).
			Padding(0, 1).
			Margin(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Background(BorderColor).
			Foreground(TextColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	DataTypeStyle = lipgloss.NewStyle().
			Foreground(TypeColor).
			Bold(true)

	// UnresolvedTypeStyle is used for columns whose type has no logical mapping.
	UnresolvedTypeStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Italic(true)
)
