package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/scoring"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Screen shows a completed attempt's trait profile and ranked courses.
type Screen struct {
	attempt  *session.Attempt
	catalog  *catalog.Catalog
	selected int
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
)

// New creates the screen for a completed attempt.
func New(a *session.Attempt, cat *catalog.Catalog) *Screen {
	return &Screen{attempt: a, catalog: cat}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Your Results"
}

func (s *Screen) Status() string {
	return string(s.attempt.Stream)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Browse courses"},
		{Key: "q", Description: "Exit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	n := 0
	if s.attempt.Result != nil {
		n = len(s.attempt.Result.Recommendations)
	}
	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < n-1 {
			s.selected++
		}
	case "q", "enter", "esc":
		return s, tea.Quit
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	r := s.attempt.Result
	if r == nil {
		return layout.Center(width, theme.Dimmed.Render("\n\nThis attempt has no result yet."))
	}

	cw := layout.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderProfile(r.TraitScores, r.TopTraits, width, cw))
	b.WriteString("\n")
	b.WriteString(s.renderCourses(width, cw))
	return b.String()
}

func (s *Screen) label(t catalog.Trait) string {
	if s.catalog == nil {
		return strings.ReplaceAll(string(t), "_", " ")
	}
	return s.catalog.TraitLabel(s.attempt.Stream, t)
}

func (s *Screen) renderProfile(scores scoring.Scores, top []catalog.Trait, width, cw int) string {
	var b strings.Builder
	b.WriteString(section(width, cw, "Trait profile"))

	var order []catalog.Trait
	if s.catalog != nil {
		order = s.catalog.TraitOrder(s.attempt.Stream)
	}
	ranked := scoring.TopTraits(scores, order, 0)

	var maxScore float64
	labelWidth := 0
	for _, t := range ranked {
		maxScore = max(maxScore, scores[t])
		labelWidth = max(labelWidth, lipgloss.Width(s.label(t)))
	}

	isTop := make(map[catalog.Trait]bool, len(top))
	for _, t := range top {
		isTop[t] = true
	}

	for _, t := range ranked {
		frac := 0.0
		if maxScore > 0 {
			frac = scores[t] / maxScore
		}
		bar := components.NewProgressBar(s.label(t), frac, fmt.Sprintf("%5.1f", scores[t]), cw-2)
		bar.LabelWidth = labelWidth
		marker := "  "
		if isTop[t] {
			marker = theme.Match.Render("★ ")
		}
		b.WriteString(layout.Center(width, marker+bar.View()))
		b.WriteString("\n")
	}
	if len(ranked) == 0 {
		b.WriteString(layout.Center(width, theme.Dimmed.Render("No trait scores recorded.")))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderCourses(width, cw int) string {
	recs := s.attempt.Result.Recommendations
	var b strings.Builder
	b.WriteString(section(width, cw, "Recommended courses"))

	if len(recs) == 0 {
		b.WriteString(layout.Center(width, theme.Dimmed.Render("No courses are available for this stream yet.")))
		return b.String()
	}

	for i, rc := range recs {
		line := fmt.Sprintf("%2d. %-*s %s", rc.Rank, max(cw-14, 10), truncate(rc.Name, max(cw-14, 10)),
			theme.Match.Render(fmt.Sprintf("%5.1f%%", rc.MatchPercent)))
		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(layout.Center(width, style.Width(cw).Render(line)))
		b.WriteString("\n")
	}

	sel := recs[min(s.selected, len(recs)-1)]
	details := []string{theme.Body.Render(sel.Explanation)}
	if len(sel.Careers) > 0 {
		details = append(details, theme.Dimmed.Render("Careers: "+strings.Join(sel.Careers, ", ")))
	}
	if sel.SalaryRange != "" {
		details = append(details, theme.Dimmed.Render("Typical salary: "+sel.SalaryRange))
	}
	if sel.Description != "" {
		details = append(details, theme.Dimmed.Render(sel.Description))
	}
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Card.Width(cw).Render(strings.Join(details, "\n"))))
	return b.String()
}

func section(width, cw int, title string) string {
	return layout.Center(width, theme.Title.Width(cw).Render(title)) + "\n" +
		layout.Center(width, theme.Divider.Render(strings.Repeat("─", cw))) + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
