package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/assessment"
	"github.com/abhisek/pathwise/internal/screens/history"
	"github.com/abhisek/pathwise/internal/screens/result"
	"github.com/abhisek/pathwise/internal/screens/streams"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Engine is the session engine API the client drives.
type Engine interface {
	assessment.Engine
	history.Engine
}

// Options configures the terminal client.
type Options struct {
	Engine   Engine
	Catalog  *catalog.Catalog
	Identity store.Identity
	// Stream starts an attempt directly. Empty shows the stream picker.
	Stream catalog.StreamID
	// AttemptID continues an existing attempt; Identity and Stream are
	// ignored.
	AttemptID string
	// History opens the identity's attempt list instead of a new attempt.
	History bool
	// QuestionsPerAttempt disables picker entries that cannot fill an
	// attempt.
	QuestionsPerAttempt int
}

// Outcome reports how the client ended.
type Outcome struct {
	AttemptID string
	Paused    bool
	Completed bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	outcome *Outcome
	width   int
	height  int
}

func newAppModel(ctx context.Context, opts Options) AppModel {
	onComplete := func(a *session.Attempt) screen.Screen {
		return result.New(a, opts.Catalog)
	}
	start := func(stream catalog.StreamID) screen.Screen {
		return assessment.New(ctx, opts.Engine, assessment.Request{Identity: opts.Identity, Stream: stream}, onComplete)
	}

	resume := func(id string) screen.Screen {
		return assessment.New(ctx, opts.Engine, assessment.Request{AttemptID: id}, onComplete)
	}

	var initial screen.Screen
	switch {
	case opts.AttemptID != "":
		initial = resume(opts.AttemptID)
	case opts.History:
		initial = history.New(ctx, opts.Engine, opts.Identity, opts.Catalog, history.Openers{
			Result: onComplete,
			Resume: resume,
		})
	case opts.Stream != "":
		initial = start(opts.Stream)
	default:
		initial = streams.New(opts.Catalog, opts.QuestionsPerAttempt, start)
	}

	return AppModel{
		router:  router.New(initial),
		outcome: &Outcome{AttemptID: opts.AttemptID},
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			if in, ok := m.router.Active().(screen.Interrupter); ok {
				return m, in.Interrupt()
			}
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case screen.AttemptPausedMsg:
		m.outcome.AttemptID = msg.AttemptID
		m.outcome.Paused = true
		return m, tea.Quit

	case screen.AttemptCompletedMsg:
		m.outcome.AttemptID = msg.AttemptID
		m.outcome.Completed = true
		return m, nil
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	m := newAppModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return *m.outcome, fmt.Errorf("run terminal client: %w", err)
	}
	return *m.outcome, nil
}
