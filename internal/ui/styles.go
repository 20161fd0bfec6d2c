package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78"))

	textStyle = lipgloss.NewStyle().PaddingLeft(2)

	citationStyle = lipgloss.NewStyle().
			MarginLeft(2).
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("179"))

	citationLabelStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("179"))
	timestampStyle     = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
	thinkingStyle      = lipgloss.NewStyle().Faint(true).Italic(true)
	helpStyle          = lipgloss.NewStyle().Faint(true)
)
