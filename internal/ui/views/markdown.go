package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/teamsync/internal/ui/styles"
)

var orderedItem = regexp.MustCompile(`^(\d+\.)\s+(.*)$`)

// renderMarkdown renders the subset of Markdown the summarizer produces:
// headings, bullet and numbered lists, and **strong** spans. Everything is
// wrapped to width.
func renderMarkdown(s *styles.Styles, text string, width int) string {
	width = max(width, 10)
	body := lipgloss.NewStyle().Width(width)

	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		switch {
		case trimmed == "":
			out = append(out, "")
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			out = append(out, s.SummaryHeading.Width(width).Render(stripStrong(heading)))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			out = append(out, listItem(s, "•", trimmed[2:], min(indent, 4), width))
		case orderedItem.MatchString(trimmed):
			m := orderedItem.FindStringSubmatch(trimmed)
			out = append(out, listItem(s, m[1], m[2], min(indent, 4), width))
		default:
			out = append(out, body.Render(strong(s, trimmed)))
		}
	}
	return strings.Join(out, "\n")
}

// listItem renders marker and text with a hanging indent
func listItem(s *styles.Styles, marker, text string, indent, width int) string {
	prefix := strings.Repeat(" ", indent) + s.SummaryBullet.Render(marker) + " "
	rest := lipgloss.NewStyle().Width(max(width-lipgloss.Width(prefix), 5)).Render(strong(s, text))
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, rest)
}

// strong renders **spans** in bold and drops the markers
func strong(s *styles.Styles, text string) string {
	parts := strings.Split(text, "**")
	if len(parts) < 3 {
		return text
	}
	var b strings.Builder
	for i, p := range parts {
		// an unmatched trailing marker is kept literally
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString(s.SummaryStrong.Render(p))
			continue
		}
		if i%2 == 1 {
			b.WriteString("**")
		}
		b.WriteString(p)
	}
	return b.String()
}

func stripStrong(text string) string {
	return strings.ReplaceAll(text, "**", "")
}
