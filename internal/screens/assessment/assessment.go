package assessment

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Engine is the part of session.Engine the screen drives.
type Engine interface {
	StartAttempt(ctx context.Context, identity store.Identity, stream catalog.StreamID) (*session.Attempt, error)
	ResumeAttempt(ctx context.Context, attemptID string) (*session.Attempt, error)
	GetAttempt(ctx context.Context, attemptID string) (*session.Attempt, error)
	SubmitAnswer(ctx context.Context, attemptID, questionID, optionID string) (*session.SubmitResult, error)
	PauseAttempt(ctx context.Context, attemptID string) error
}

// Request says which attempt to run.
type Request struct {
	Identity store.Identity
	Stream   catalog.StreamID
	// AttemptID continues an existing attempt instead of starting one.
	AttemptID string
}

// Screen presents one question at a time and records answers through the
// engine. Nothing is kept locally that the engine has not persisted.
type Screen struct {
	ctx        context.Context
	engine     Engine
	req        Request
	onComplete func(*session.Attempt) screen.Screen

	attempt *session.Attempt
	choice  components.MultiChoice
	notice  session.Notice
	pending bool
	pausing bool
	warning string
	errMsg  string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
	_ screen.Interrupter     = (*Screen)(nil)
)

// New creates the screen. onComplete builds the screen shown once the
// attempt has a result.
func New(ctx context.Context, engine Engine, req Request, onComplete func(*session.Attempt) screen.Screen) *Screen {
	return &Screen{ctx: ctx, engine: engine, req: req, onComplete: onComplete}
}

func (s *Screen) Init() tea.Cmd {
	return s.load()
}

func (s *Screen) Title() string {
	return "Assessment"
}

func (s *Screen) Status() string {
	if s.attempt == nil {
		return ""
	}
	p := s.attempt.Progress()
	return fmt.Sprintf("%s  %d/%d", s.attempt.Stream, p.Answered, p.Total)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Exit"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
		{Key: "p", Description: "Pause & quit"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// load starts a new attempt or picks an existing one back up.
func (s *Screen) load() tea.Cmd {
	ctx, engine, req := s.ctx, s.engine, s.req
	return func() tea.Msg {
		if req.AttemptID == "" {
			a, err := engine.StartAttempt(ctx, req.Identity, req.Stream)
			return attemptReadyMsg{Attempt: a, Err: err}
		}

		a, err := engine.ResumeAttempt(ctx, req.AttemptID)
		var ise *session.InvalidStateError
		if errors.As(err, &ise) && ise.Status == store.StatusInProgress {
			// The client exited without pausing; carry on where it stopped.
			a, err = engine.GetAttempt(ctx, req.AttemptID)
		}
		return attemptReadyMsg{Attempt: a, Err: err}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case attemptReadyMsg:
		return s.handleReady(msg)
	case answerRecordedMsg:
		return s.handleAnswer(msg)
	case pauseDoneMsg:
		return s.handlePaused(msg)
	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleReady(msg attemptReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	s.attempt = msg.Attempt
	s.notice = msg.Attempt.Notice
	if s.attempt.Status == store.StatusCompleted {
		return s, s.complete()
	}
	s.resetChoice()
	return s, nil
}

func (s *Screen) handleAnswer(msg answerRecordedMsg) (screen.Screen, tea.Cmd) {
	s.pending = false
	if msg.Err != nil {
		var qm *session.QuestionMismatchError
		switch {
		case errors.As(msg.Err, &qm):
			// Another client moved the attempt on; reload it.
			s.warning = "This attempt was updated elsewhere. Reloaded the current question."
			s.req.AttemptID = s.attempt.ID
			return s, s.reload()
		case store.IsTransient(msg.Err):
			s.warning = "Could not save your answer. Press Enter to try again."
		default:
			s.warning = describe(msg.Err)
		}
		s.choice = s.choice.Reset()
		return s, nil
	}

	s.warning = ""
	s.notice = session.NoticeNone
	s.attempt = msg.Result.Attempt
	if msg.Result.Result != nil {
		return s, s.complete()
	}
	s.resetChoice()
	return s, nil
}

func (s *Screen) handlePaused(msg pauseDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.pausing = false
		s.errMsg = "Could not pause: " + describe(msg.Err)
		return s, nil
	}
	id := s.attempt.ID
	return s, func() tea.Msg { return screen.AttemptPausedMsg{AttemptID: id} }
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, tea.Quit
	}
	if s.attempt == nil || s.pending || s.pausing {
		return s, nil
	}

	if msg.String() == "p" {
		return s, s.pause()
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	if s.choice.Submitted {
		return s, tea.Batch(cmd, s.submit())
	}
	return s, cmd
}

// Interrupt pauses an in-progress attempt before the program exits.
func (s *Screen) Interrupt() tea.Cmd {
	if s.attempt == nil || s.attempt.Status != store.StatusInProgress || s.errMsg != "" {
		return tea.Quit
	}
	if s.pausing {
		return nil
	}
	return s.pause()
}

func (s *Screen) pause() tea.Cmd {
	s.pausing = true
	ctx, engine, id := s.ctx, s.engine, s.attempt.ID
	return func() tea.Msg {
		return pauseDoneMsg{Err: engine.PauseAttempt(ctx, id)}
	}
}

func (s *Screen) submit() tea.Cmd {
	q, ok := s.attempt.CurrentQuestion()
	if !ok || s.choice.ChosenIndex < 0 || s.choice.ChosenIndex >= len(q.Options) {
		return nil
	}
	s.pending = true
	ctx, engine, id := s.ctx, s.engine, s.attempt.ID
	optionID := q.Options[s.choice.ChosenIndex].ID
	return func() tea.Msg {
		res, err := engine.SubmitAnswer(ctx, id, q.ID, optionID)
		return answerRecordedMsg{Result: res, Err: err}
	}
}

func (s *Screen) reload() tea.Cmd {
	ctx, engine, id := s.ctx, s.engine, s.attempt.ID
	return func() tea.Msg {
		a, err := engine.GetAttempt(ctx, id)
		return attemptReadyMsg{Attempt: a, Err: err}
	}
}

func (s *Screen) complete() tea.Cmd {
	a := s.attempt
	next := s.onComplete(a)
	return tea.Batch(
		func() tea.Msg { return screen.AttemptCompletedMsg{AttemptID: a.ID} },
		func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} },
	)
}

func (s *Screen) resetChoice() {
	q, ok := s.attempt.CurrentQuestion()
	if !ok {
		return
	}
	texts := make([]string, len(q.Options))
	for i, o := range q.Options {
		texts[i] = o.Text
	}
	s.choice = components.NewMultiChoice(q.Scenario, texts)
}

// describe turns engine errors into learner-facing text.
func describe(err error) string {
	var (
		ice *session.InsufficientCatalogError
		ise *session.InvalidStateError
	)
	switch {
	case errors.As(err, &ice):
		return fmt.Sprintf("The %s stream has only %d questions; an assessment needs %d.", ice.Stream, ice.Available, ice.Required)
	case errors.As(err, &ise):
		return fmt.Sprintf("This attempt is %s and cannot be continued.", ise.Status)
	case errors.Is(err, store.ErrNotFound):
		return "No attempt with that id was found."
	case errors.Is(err, session.ErrStaleAttempt):
		return "This attempt uses questions that are no longer in the catalog."
	case errors.Is(err, session.ErrUnknownStream):
		return "Unknown stream."
	default:
		return err.Error()
	}
}
