package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/store"
)

// Notice is a one-time informational message for the learner.
type Notice string

const (
	NoticeNone Notice = ""
	// NoticeFreshSet is shown when the learner has seen every question in
	// the stream and the registry was reset.
	NoticeFreshSet Notice = "fresh_set"
)

// Attempt is an attempt with its questions resolved from the catalog.
type Attempt struct {
	ID             string             `json:"id"`
	Identity       store.Identity     `json:"identity"`
	Stream         catalog.StreamID   `json:"stream"`
	CatalogVersion string             `json:"catalog_version"`
	TotalQuestions int                `json:"total_questions"`
	Questions      []catalog.Question `json:"questions"`
	Answers        []store.Answer     `json:"answers"`
	CurrentIndex   int                `json:"current_index"`
	Status         store.Status       `json:"status"`
	StartedAt      time.Time          `json:"started_at"`
	PausedAt       *time.Time         `json:"paused_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	Result         *store.Result      `json:"result,omitempty"`

	// Notice is set only on the Attempt returned by StartAttempt.
	Notice Notice `json:"notice,omitempty"`
}

// CurrentQuestion returns the question awaiting an answer.
func (a *Attempt) CurrentQuestion() (catalog.Question, bool) {
	if a.Status == store.StatusCompleted || a.CurrentIndex >= len(a.Questions) {
		return catalog.Question{}, false
	}
	return a.Questions[a.CurrentIndex], true
}

// Progress reports how far the learner has got.
func (a *Attempt) Progress() Progress {
	return Progress{Answered: len(a.Answers), Total: a.TotalQuestions}
}

// AnswerMap returns answers keyed by question id.
func (a *Attempt) AnswerMap() map[string]string {
	m := make(map[string]string, len(a.Answers))
	for _, ans := range a.Answers {
		m[ans.QuestionID] = ans.OptionID
	}
	return m
}

// Progress counts answered questions.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Fraction returns progress in [0,1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Answered) / float64(p.Total)
}

// SubmitResult is returned by SubmitAnswer. Exactly one of NextQuestion and
// Result is set.
type SubmitResult struct {
	NextQuestion *catalog.Question `json:"next_question,omitempty"`
	Result       *store.Result     `json:"result,omitempty"`
	Progress     Progress          `json:"progress"`
	Attempt      *Attempt          `json:"-"`
}

// resolve joins a stored attempt with catalog content.
func resolve(cat *catalog.Catalog, rec *store.Attempt) (*Attempt, error) {
	questions := make([]catalog.Question, 0, len(rec.QuestionIDs))
	for _, id := range rec.QuestionIDs {
		q, err := cat.Question(id)
		if err != nil || q.Stream != rec.Stream {
			return nil, fmt.Errorf("attempt %s question %s: %w", rec.ID, id, ErrStaleAttempt)
		}
		questions = append(questions, q)
	}

	return &Attempt{
		ID:             rec.ID,
		Identity:       rec.Identity,
		Stream:         rec.Stream,
		CatalogVersion: rec.CatalogVersion,
		TotalQuestions: rec.TotalQuestions,
		Questions:      questions,
		Answers:        slices.Clone(rec.Answers),
		CurrentIndex:   rec.CurrentIndex,
		Status:         rec.Status,
		StartedAt:      rec.StartedAt,
		PausedAt:       rec.PausedAt,
		CompletedAt:    rec.CompletedAt,
		Result:         rec.Result,
	}, nil
}

// Summary is a catalog-independent view of an attempt for history
// listings. It never fails on stale content.
type Summary struct {
	ID          string           `json:"id"`
	Stream      catalog.StreamID `json:"stream"`
	Status      store.Status     `json:"status"`
	Progress    Progress         `json:"progress"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	TopTraits   []catalog.Trait  `json:"top_traits,omitempty"`
	TopCourse   string           `json:"top_course,omitempty"`
	TopMatch    float64          `json:"top_match,omitempty"`
}

func summarize(rec *store.Attempt) Summary {
	s := Summary{
		ID:          rec.ID,
		Stream:      rec.Stream,
		Status:      rec.Status,
		Progress:    Progress{Answered: len(rec.Answers), Total: rec.TotalQuestions},
		StartedAt:   rec.StartedAt,
		CompletedAt: rec.CompletedAt,
	}
	if rec.Result != nil {
		s.TopTraits = slices.Clone(rec.Result.TopTraits)
		if len(rec.Result.Recommendations) > 0 {
			s.TopCourse = rec.Result.Recommendations[0].Name
			s.TopMatch = rec.Result.Recommendations[0].MatchPercent
		}
	}
	return s
}
