package assessment

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

const freshSetNotice = "You have seen every question in this stream, so this attempt starts a fresh set."

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.attempt == nil {
		return layout.Center(width, theme.Dimmed.Render("\n\nPreparing your questions..."))
	}

	cw := layout.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")

	if s.notice == session.NoticeFreshSet {
		b.WriteString(layout.Center(width, theme.Notice.Width(cw).Render(freshSetNotice)))
		b.WriteString("\n\n")
	}

	p := s.attempt.Progress()
	bar := components.NewProgressBar("Progress", p.Fraction(), components.CountSuffix(p.Answered, p.Total), cw)
	b.WriteString(layout.Center(width, bar.View()))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Divider.Render(strings.Repeat("─", cw))))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, lipgloss.NewStyle().Width(cw).Render(s.choice.View(cw))))
	b.WriteString("\n")

	switch {
	case s.pausing:
		b.WriteString(layout.Center(width, theme.Dimmed.Render("Pausing...")))
	case s.pending:
		b.WriteString(layout.Center(width, theme.Dimmed.Render("Saving...")))
	case s.warning != "":
		b.WriteString(layout.Center(width, theme.ErrorText.Width(cw).Render(s.warning)))
	}

	return b.String()
}

func renderError(width int, msg string) string {
	cw := layout.ContentWidth(width)
	return "\n\n" + layout.Center(width, theme.ErrorText.Width(cw).Align(lipgloss.Center).Render(msg)) +
		"\n\n" + layout.Center(width, theme.Hint.Render("Press any key to exit."))
}
