package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	badgeStyle = lipgloss.NewStyle().Foreground(colorMuted)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true)
	quoteStyle   = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)
)

// Terminal renders output for a terminal: a title line naming the template,
// then the body in a rounded box. Markup output is laid out block by block.
func Terminal(templateName, text string, mode Mode, width int) string {
	var body string
	if mode == ModeMarkup {
		body = terminalBlocks(Blocks(text))
	} else {
		body = strings.TrimRight(text, "\n")
	}
	box := boxStyle
	if width > 4 {
		box = box.Width(width - 2)
	}
	header := titleStyle.Render("Transformed Output")
	if templateName != "" {
		header += " " + badgeStyle.Render("Using: "+templateName)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, box.Render(body))
}

func terminalBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			parts = append(parts, headingStyle.Render(b.Text))
		case "blockquote":
			parts = append(parts, quoteStyle.Render("│ "+b.Text))
		case "li":
			parts = append(parts, "• "+b.Text)
		default:
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
