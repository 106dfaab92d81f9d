package result

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/recommend"
	"github.com/abhisek/pathwise/internal/scoring"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
)

func testAttempt() *session.Attempt {
	return &session.Attempt{
		ID:     "a-1",
		Stream: "pcm",
		Status: store.StatusCompleted,
		Result: &store.Result{
			TraitScores: scoring.Scores{"analytical": 40, "hands_on": 6},
			TopTraits:   []catalog.Trait{"analytical", "hands_on"},
			Recommendations: []recommend.RankedCourse{
				{Rank: 1, CourseID: "math", Name: "B.Sc Mathematics", MatchPercent: 100,
					Explanation: "Builds on your analytical strength", Careers: []string{"Actuary", "Data scientist"}},
				{Rank: 2, CourseID: "mech", Name: "B.Tech Mechanical", MatchPercent: 62.5,
					Explanation: "Builds on your hands on strength", SalaryRange: "4-9 LPA"},
			},
		},
	}
}

func TestResultScreen_Title(t *testing.T) {
	s := New(testAttempt(), nil)
	if s.Title() != "Your Results" {
		t.Errorf("Title = %q", s.Title())
	}
	if s.Status() != "pcm" {
		t.Errorf("Status = %q", s.Status())
	}
}

func TestResultScreen_Display(t *testing.T) {
	s := New(testAttempt(), nil)
	view := s.View(100, 40)
	for _, want := range []string{
		"Trait profile",
		"analytical",
		"hands on",
		"40.0",
		"B.Sc Mathematics",
		"100.0%",
		"62.5%",
		"Builds on your analytical strength",
		"Actuary, Data scientist",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResultScreen_BrowseCourses(t *testing.T) {
	s := New(testAttempt(), nil)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Fatalf("selected = %d, want 1 (clamped)", s.selected)
	}
	view := s.View(100, 40)
	if !strings.Contains(view, "4-9 LPA") {
		t.Error("details of the selected course should be shown")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.selected != 0 {
		t.Errorf("selected = %d, want 0", s.selected)
	}
}

func TestResultScreen_Quit(t *testing.T) {
	s := New(testAttempt(), nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestResultScreen_NoRecommendations(t *testing.T) {
	a := testAttempt()
	a.Result.Recommendations = []recommend.RankedCourse{}
	view := New(a, nil).View(100, 40)
	if !strings.Contains(view, "No courses are available") {
		t.Error("expected empty-state message")
	}
}
