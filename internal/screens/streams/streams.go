package streams

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Screen lets the learner choose a stream when none was given on the
// command line.
type Screen struct {
	menu components.Menu
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New lists the catalog's streams. Streams with fewer than minQuestions
// questions are shown disabled. next builds the screen that replaces this
// one once a stream is picked.
func New(cat *catalog.Catalog, minQuestions int, next func(catalog.StreamID) screen.Screen) *Screen {
	var items []components.MenuItem
	for _, st := range cat.Streams() {
		id := st.ID
		n := len(cat.Questions(id))
		items = append(items, components.MenuItem{
			Label:    st.Name,
			Detail:   fmt.Sprintf("%d questions", n),
			Disabled: n < minQuestions,
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next(id)} }
			},
		})
	}
	return &Screen{menu: components.NewMenu(items)}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Choose a stream"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Center(width, theme.Title.Render("Which stream are you exploring?")))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Subtitle.Render("Answer scenario questions and get course suggestions that fit you.")))
	b.WriteString("\n\n")
	b.WriteString(layout.Center(width, s.menu.View()))
	return b.String()
}
