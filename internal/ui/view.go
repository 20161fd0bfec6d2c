package ui

import (
	"strings"

	"LegalChat/internal/session"
	"LegalChat/internal/transcript"

	"github.com/charmbracelet/lipgloss"
)

// View renders the screen
func (m *Model) View() string {
	title := titleStyle.Render("LegalChat")
	help := helpStyle.Render("enter send • alt+enter newline • pgup/pgdn scroll • ctrl+l clear • esc quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		m.input.View(),
		help,
	)
}

func (m *Model) renderTranscript() string {
	width := max(m.width-4, 20)
	blocks := make([]string, 0, len(m.units))
	for _, u := range m.units {
		blocks = append(blocks, m.renderUnit(u, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderUnit(u transcript.Unit, width int) string {
	label := botLabelStyle.Render("Assistant")
	if u.Role == session.RoleUser {
		label = userLabelStyle.Render("You")
	}

	if u.Loading {
		return label + "\n" + textStyle.Render(m.spinner.View()+thinkingStyle.Render(" Thinking..."))
	}

	var b strings.Builder
	b.WriteString(label)
	if u.Main != "" {
		b.WriteString("\n")
		b.WriteString(textStyle.Width(width).Render(u.Main))
	}
	for _, c := range u.Citations {
		block := citationLabelStyle.Render(transcript.CitationLabel) + "\n" + c.Content
		b.WriteString("\n")
		b.WriteString(citationStyle.Width(width - 2).Render(block))
	}
	if u.Timestamp != "" {
		b.WriteString("\n")
		b.WriteString(timestampStyle.Render(u.Timestamp))
	}
	return b.String()
}
