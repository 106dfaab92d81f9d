package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
)

var learner = store.Identity{Kind: store.KindUser, ID: "asha"}

type fakeEngine struct {
	list    []session.Summary
	listErr error
	got     []string
}

func (f *fakeEngine) ListAttempts(_ context.Context, identity store.Identity, limit int) ([]session.Summary, error) {
	return f.list, f.listErr
}

func (f *fakeEngine) GetAttempt(_ context.Context, id string) (*session.Attempt, error) {
	f.got = append(f.got, id)
	return &session.Attempt{ID: id, Status: store.StatusCompleted}, nil
}

type openedScreen struct {
	screen.Screen
	id string
}

func newScreen(e *fakeEngine) *Screen {
	return New(context.Background(), e, learner, nil, Openers{
		Result: func(a *session.Attempt) screen.Screen { return &openedScreen{id: "result:" + a.ID} },
		Resume: func(id string) screen.Screen { return &openedScreen{id: "resume:" + id} },
	})
}

func load(t *testing.T, s *Screen) {
	t.Helper()
	s.Update(s.Init()())
}

// press sends a key and runs follow-up commands until a message leaves the
// screen.
func press(s *Screen, code rune) tea.Msg {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(attemptOpenedMsg); !ok {
			return msg
		}
		_, cmd = s.Update(msg)
	}
	return nil
}

func sampleAttempts() []session.Summary {
	started := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	return []session.Summary{
		{ID: "a2", Stream: "pcm", Status: store.StatusPaused, StartedAt: started,
			Progress: session.Progress{Answered: 4, Total: 20}},
		{ID: "a1", Stream: "pcm", Status: store.StatusCompleted, StartedAt: started.Add(-time.Hour),
			Progress: session.Progress{Answered: 20, Total: 20}, TopCourse: "Mathematics", TopMatch: 92.5},
	}
}

func TestHistory_ListsAttempts(t *testing.T) {
	s := newScreen(&fakeEngine{list: sampleAttempts()})
	assert.Contains(t, s.View(100, 30), "Loading")

	load(t, s)
	view := s.View(120, 30)
	assert.Contains(t, view, "4/20 answered")
	assert.Contains(t, view, "Mathematics (92.5%)")
	assert.Contains(t, view, "paused")
	assert.Equal(t, "user:asha", s.Status())
}

func TestHistory_EnterOpensResumeOrResult(t *testing.T) {
	e := &fakeEngine{list: sampleAttempts()}
	s := newScreen(e)
	load(t, s)

	msg, ok := press(s, tea.KeyEnter).(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "resume:a2", msg.Screen.(*openedScreen).id)

	press(s, tea.KeyDown)
	msg, ok = press(s, tea.KeyEnter).(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "result:a1", msg.Screen.(*openedScreen).id)
	assert.Equal(t, []string{"a1"}, e.got)
}

func TestHistory_Empty(t *testing.T) {
	s := newScreen(&fakeEngine{})
	load(t, s)
	assert.Contains(t, s.View(100, 30), "No attempts yet")
	assert.Nil(t, press(s, tea.KeyEnter))
}

func TestHistory_LoadError(t *testing.T) {
	s := newScreen(&fakeEngine{listErr: errors.New("store offline")})
	load(t, s)
	assert.True(t, strings.Contains(s.View(100, 30), "store offline"))
}
