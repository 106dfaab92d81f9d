package store

import (
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/recommend"
	"github.com/abhisek/pathwise/internal/scoring"
)

// IdentityKind distinguishes authenticated learners from anonymous devices.
type IdentityKind string

const (
	KindUser   IdentityKind = "user"
	KindDevice IdentityKind = "device"
)

// Identity names whoever owns a seen-question registry and attempts.
type Identity struct {
	Kind IdentityKind `json:"kind"`
	ID   string       `json:"id"`
}

// Validate checks that the identity has a known kind and a non-empty id.
func (i Identity) Validate() error {
	if i.Kind != KindUser && i.Kind != KindDevice {
		return fmt.Errorf("unknown identity kind %q", i.Kind)
	}
	if i.ID == "" {
		return fmt.Errorf("empty %s identity", i.Kind)
	}
	return nil
}

func (i Identity) String() string {
	return string(i.Kind) + ":" + i.ID
}

// Status is the lifecycle state of an attempt.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Answer records the option chosen for one question.
type Answer struct {
	QuestionID string    `json:"question_id"`
	OptionID   string    `json:"option_id"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Result is computed once when an attempt completes and never changes.
type Result struct {
	TraitScores     scoring.Scores           `json:"trait_scores"`
	TopTraits       []catalog.Trait          `json:"top_traits"`
	Recommendations []recommend.RankedCourse `json:"recommendations"`
}

// Attempt is the persisted record of one assessment run. Questions are
// referenced by id in presentation order, never copied.
type Attempt struct {
	ID             string           `json:"id"`
	Identity       Identity         `json:"identity"`
	Stream         catalog.StreamID `json:"stream"`
	CatalogVersion string           `json:"catalog_version"`
	TotalQuestions int              `json:"total_questions"`
	QuestionIDs    []string         `json:"question_ids"`
	Answers        []Answer         `json:"answers"`
	CurrentIndex   int              `json:"current_index"`
	Status         Status           `json:"status"`
	StartedAt      time.Time        `json:"started_at"`
	PausedAt       *time.Time       `json:"paused_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	Result         *Result          `json:"result,omitempty"`
}

// Clone returns a deep copy of a.
func (a *Attempt) Clone() *Attempt {
	out := *a
	out.QuestionIDs = slices.Clone(a.QuestionIDs)
	out.Answers = slices.Clone(a.Answers)
	if a.PausedAt != nil {
		t := *a.PausedAt
		out.PausedAt = &t
	}
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		out.CompletedAt = &t
	}
	if a.Result != nil {
		r := *a.Result
		r.TraitScores = a.Result.TraitScores.Clone()
		r.TopTraits = slices.Clone(a.Result.TopTraits)
		r.Recommendations = slices.Clone(a.Result.Recommendations)
		out.Result = &r
	}
	return &out
}

// AttemptUpdate is a compare-and-set write. It applies only while the stored
// attempt still has ExpectedStatus and ExpectedIndex. Status, CurrentIndex
// and Answers are always written; nil pointers leave fields unchanged.
type AttemptUpdate struct {
	// Key identifies the logical write. Replaying a write whose key matches
	// the last applied one succeeds without changing anything.
	Key string

	ExpectedStatus Status
	ExpectedIndex  int

	Status       Status
	CurrentIndex int
	Answers      []Answer
	PausedAt     *time.Time
	CompletedAt  *time.Time
	Result       *Result
}

// matches reports whether the guard holds for a.
func (u AttemptUpdate) matches(a *Attempt) bool {
	return a.Status == u.ExpectedStatus && a.CurrentIndex == u.ExpectedIndex
}

// apply writes the update's fields into a.
func (u AttemptUpdate) apply(a *Attempt) {
	a.Status = u.Status
	a.CurrentIndex = u.CurrentIndex
	a.Answers = slices.Clone(u.Answers)
	if u.PausedAt != nil {
		t := *u.PausedAt
		a.PausedAt = &t
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		a.CompletedAt = &t
	}
	if u.Result != nil {
		a.Result = (&Attempt{Result: u.Result}).Clone().Result
	}
}

// checkUpdate decides the outcome of an update against the stored record:
// apply it, treat it as an already-applied replay, or reject it.
func checkUpdate(stored *Attempt, lastKey string, u AttemptUpdate) (apply bool, err error) {
	if u.Key != "" && u.Key == lastKey {
		return false, nil
	}
	if !u.matches(stored) {
		return false, fmt.Errorf("attempt %s is %s at index %d: %w",
			stored.ID, stored.Status, stored.CurrentIndex, ErrConflict)
	}
	return true, nil
}
