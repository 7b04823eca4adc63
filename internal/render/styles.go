package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

// TerminalCard renders a card for terminal output. The selected card is
// prefixed with a cursor.
func TerminalCard(c Card, selected bool) string {
	cursor := "  "
	title := SubtitleStyle.Render(c.Title)
	if selected {
		cursor = SelectedStyle.Render("> ")
		title = SelectedStyle.Render(c.Title)
	}

	line := cursor + title
	if c.Subtitle != "" {
		line += " " + DimStyle.Render(c.Subtitle)
	}
	return line + " " + DimStyle.Render("#"+strconv.Itoa(c.Action.ID))
}

// TerminalCards renders a card list, one card per line
func TerminalCards(cards []Card, selected int) string {
	if len(cards) == 0 {
		return DimStyle.Render("  nothing to show")
	}
	lines := make([]string, 0, len(cards))
	for i, c := range cards {
		lines = append(lines, TerminalCard(c, i == selected))
	}
	return strings.Join(lines, "\n")
}
