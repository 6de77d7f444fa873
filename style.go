package main

import "github.com/charmbracelet/lipgloss"

var (
	keywordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	paragraphStyle = lipgloss.NewStyle().Width(78)
)

// keyword highlights a single word for help text and usage output.
func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph wraps help text to a fixed width, matching the rest of
// the command tree's long descriptions and examples.
func paragraph(s string) string {
	return paragraphStyle.Render(s)
}
