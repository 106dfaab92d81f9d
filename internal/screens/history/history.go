package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Limit is how many attempts the screen loads.
const Limit = 50

// Engine is the part of the session engine the history screen uses.
type Engine interface {
	ListAttempts(ctx context.Context, identity store.Identity, limit int) ([]session.Summary, error)
	GetAttempt(ctx context.Context, attemptID string) (*session.Attempt, error)
}

// Openers build the screens pushed when an attempt is chosen.
type Openers struct {
	Result func(*session.Attempt) screen.Screen
	Resume func(attemptID string) screen.Screen
}

type historyLoadedMsg struct {
	Attempts []session.Summary
	Err      error
}

type attemptOpenedMsg struct {
	Attempt *session.Attempt
	Err     error
}

// Screen lists a learner's past attempts. Enter opens a completed
// attempt's result or continues an unfinished one.
type Screen struct {
	ctx      context.Context
	engine   Engine
	identity store.Identity
	catalog  *catalog.Catalog
	open     Openers

	attempts []session.Summary
	selected int
	loaded   bool
	opening  bool
	errMsg   string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
)

// New creates a history screen for identity.
func New(ctx context.Context, engine Engine, identity store.Identity, cat *catalog.Catalog, open Openers) *Screen {
	return &Screen{ctx: ctx, engine: engine, identity: identity, catalog: cat, open: open}
}

func (s *Screen) Init() tea.Cmd {
	return func() tea.Msg {
		list, err := s.engine.ListAttempts(s.ctx, s.identity, Limit)
		return historyLoadedMsg{Attempts: list, Err: err}
	}
}

func (s *Screen) Title() string {
	return "History"
}

func (s *Screen) Status() string {
	return s.identity.String()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "q", Description: "Exit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.attempts = msg.Attempts
		return s, nil

	case attemptOpenedMsg:
		s.opening = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: s.open.Result(msg.Attempt)} }

	case tea.KeyPressMsg:
		if s.opening {
			return s, nil
		}
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			return s, s.openSelected()
		}
	}
	return s, nil
}

func (s *Screen) openSelected() tea.Cmd {
	if s.selected >= len(s.attempts) {
		return nil
	}
	s.errMsg = ""
	sum := s.attempts[s.selected]
	if sum.Status != store.StatusCompleted {
		return func() tea.Msg { return router.PushScreenMsg{Screen: s.open.Resume(sum.ID)} }
	}
	s.opening = true
	return func() tea.Msg {
		a, err := s.engine.GetAttempt(s.ctx, sum.ID)
		return attemptOpenedMsg{Attempt: a, Err: err}
	}
}

func (s *Screen) View(width, height int) string {
	if !s.loaded {
		return "\n\n" + layout.Center(width, theme.Hint.Render("Loading history..."))
	}

	var b strings.Builder
	b.WriteString("\n")
	if s.errMsg != "" {
		b.WriteString(layout.Center(width, theme.ErrorText.Render("Error: "+s.errMsg)))
		b.WriteString("\n\n")
	}
	if len(s.attempts) == 0 {
		b.WriteString("\n" + layout.Center(width, theme.Hint.Render("No attempts yet. Run `pathwise take` to start one.")))
		return b.String()
	}

	for i, a := range s.attempts {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%s%s  %-10s  %-11s  %s",
			prefix, a.StartedAt.Local().Format("Jan 02, 2006"), s.streamName(a.Stream),
			statusLabel(a.Status), s.detail(a))
		b.WriteString(layout.Center(width, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) streamName(id catalog.StreamID) string {
	if s.catalog != nil {
		if st, ok := s.catalog.Stream(id); ok && len(st.Name) <= 10 {
			return st.Name
		}
	}
	return string(id)
}

func (s *Screen) detail(a session.Summary) string {
	if a.Status == store.StatusCompleted {
		if a.TopCourse == "" {
			return "no matching courses"
		}
		return fmt.Sprintf("%s (%.1f%%)", a.TopCourse, a.TopMatch)
	}
	return fmt.Sprintf("%d/%d answered", a.Progress.Answered, a.Progress.Total)
}

func statusLabel(st store.Status) string {
	switch st {
	case store.StatusCompleted:
		return "completed"
	case store.StatusPaused:
		return "paused"
	default:
		return "unfinished"
	}
}
