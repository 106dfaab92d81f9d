package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/recommend"
	"github.com/abhisek/pathwise/internal/scoring"
	"github.com/abhisek/pathwise/internal/store"
)

const (
	// DefaultQuestionsPerAttempt is the fixed attempt length.
	DefaultQuestionsPerAttempt = 20

	// DefaultTopTraits is how many ranked traits a result carries.
	DefaultTopTraits = 3
)

const tracerName = "github.com/abhisek/pathwise/internal/session"

// Config holds engine settings and collaborators.
type Config struct {
	QuestionsPerAttempt int
	TopTraits           int
	Ranking             recommend.Options

	// Rand drives question sampling. Nil uses a secure random source.
	Rand rand.Source
	// Clock returns the current time. Nil uses time.Now.
	Clock func() time.Time

	Logger  *zap.Logger
	Metrics Metrics
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		QuestionsPerAttempt: DefaultQuestionsPerAttempt,
		TopTraits:           DefaultTopTraits,
		Ranking:             recommend.DefaultOptions(),
	}
}

// Engine runs assessment attempts: it selects questions, records answers,
// pauses and resumes, and seals each attempt with a scored result.
type Engine struct {
	catalog  *catalog.Catalog
	store    store.Persistence
	selector *Selector
	cfg      Config
	logger   *zap.Logger
	metrics  Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

// NewEngine creates an Engine over a catalog and a persistence backend.
func NewEngine(cat *catalog.Catalog, p store.Persistence, cfg Config) *Engine {
	if cfg.QuestionsPerAttempt <= 0 {
		cfg.QuestionsPerAttempt = DefaultQuestionsPerAttempt
	}
	if cfg.TopTraits <= 0 {
		cfg.TopTraits = DefaultTopTraits
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var m Metrics = nopMetrics{}
	if cfg.Metrics != nil {
		m = cfg.Metrics
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Engine{
		catalog:  cat,
		store:    withRetry(p, logger, m),
		selector: NewSelector(cfg.Rand),
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer(tracerName),
		now:      now,
	}
}

// timestamp returns the current UTC time at the precision backends store.
func (e *Engine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "session."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// StartAttempt selects a fresh question set for identity in stream and
// creates an in-progress attempt. Selected questions are marked seen
// immediately so an abandoned attempt does not offer them again.
func (e *Engine) StartAttempt(ctx context.Context, identity store.Identity, stream catalog.StreamID) (_ *Attempt, err error) {
	ctx, span := e.startSpan(ctx, "StartAttempt", attribute.String("stream", string(stream)))
	defer func() { endSpan(span, err) }()

	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("start attempt: %w", err)
	}
	if _, ok := e.catalog.Stream(stream); !ok {
		return nil, fmt.Errorf("start attempt: %w: %q", ErrUnknownStream, stream)
	}

	n := e.cfg.QuestionsPerAttempt
	questions := e.catalog.Questions(stream)
	if len(questions) < n {
		err := &InsufficientCatalogError{Stream: stream, Available: len(questions), Required: n}
		e.logger.Error("stream cannot fill an attempt", zap.String("stream", string(stream)),
			zap.Int("available", len(questions)), zap.Int("required", n))
		return nil, err
	}

	seen, err := e.store.LoadSeen(ctx, identity, stream)
	if err != nil {
		return nil, fmt.Errorf("load seen questions: %w", err)
	}

	sel, err := e.selector.Select(questions, seen, stream, n)
	if err != nil {
		return nil, err
	}

	if sel.WasReset {
		if err := e.store.ResetSeen(ctx, identity, stream); err != nil {
			return nil, fmt.Errorf("reset seen questions: %w", err)
		}
	}

	ids := make([]string, len(sel.Questions))
	for i, q := range sel.Questions {
		ids[i] = q.ID
	}
	if err := e.store.MarkSeen(ctx, identity, stream, ids); err != nil {
		return nil, fmt.Errorf("mark questions seen: %w", err)
	}

	rec := &store.Attempt{
		ID:             uuid.NewString(),
		Identity:       identity,
		Stream:         stream,
		CatalogVersion: e.catalog.Version(),
		TotalQuestions: n,
		QuestionIDs:    ids,
		Answers:        []store.Answer{},
		Status:         store.StatusInProgress,
		StartedAt:      e.timestamp(),
	}
	if _, err := e.store.CreateAttempt(ctx, rec); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	e.metrics.AttemptStarted(stream, sel.WasReset)
	e.logger.Info("attempt started",
		zap.String("attempt_id", rec.ID),
		zap.String("stream", string(stream)),
		zap.Bool("reset", sel.WasReset))
	span.SetAttributes(attribute.String("attempt_id", rec.ID), attribute.Bool("reset", sel.WasReset))

	a := &Attempt{
		ID:             rec.ID,
		Identity:       identity,
		Stream:         stream,
		CatalogVersion: rec.CatalogVersion,
		TotalQuestions: n,
		Questions:      sel.Questions,
		Answers:        []store.Answer{},
		Status:         store.StatusInProgress,
		StartedAt:      rec.StartedAt,
	}
	if sel.WasReset {
		a.Notice = NoticeFreshSet
	}
	return a, nil
}

// SubmitAnswer records optionID for the question the attempt is waiting on.
// The final answer completes the attempt and computes its result in the
// same write.
func (e *Engine) SubmitAnswer(ctx context.Context, attemptID, questionID, optionID string) (_ *SubmitResult, err error) {
	ctx, span := e.startSpan(ctx, "SubmitAnswer", attribute.String("attempt_id", attemptID))
	defer func() { endSpan(span, err) }()

	a, err := e.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if a.Status != store.StatusInProgress {
		return nil, e.reject(RejectInvalidState, &InvalidStateError{AttemptID: a.ID, Op: "answer", Status: a.Status})
	}
	expected, ok := a.CurrentQuestion()
	if !ok {
		return nil, e.reject(RejectInvalidState, &InvalidStateError{AttemptID: a.ID, Op: "answer", Status: a.Status})
	}
	if questionID != expected.ID {
		return nil, e.reject(RejectQuestionMismatch, &QuestionMismatchError{AttemptID: a.ID, Expected: expected.ID, Got: questionID})
	}
	if _, ok := expected.Option(optionID); !ok {
		return nil, e.reject(RejectUnknownOption, &UnknownOptionError{QuestionID: questionID, OptionID: optionID})
	}

	now := e.timestamp()
	idx := a.CurrentIndex
	answers := append(append([]store.Answer{}, a.Answers...), store.Answer{
		QuestionID: questionID,
		OptionID:   optionID,
		AnsweredAt: now,
	})

	u := store.AttemptUpdate{
		Key:            fmt.Sprintf("%s:answer:%d:%s", a.ID, idx, optionID),
		ExpectedStatus: store.StatusInProgress,
		ExpectedIndex:  idx,
		Status:         store.StatusInProgress,
		CurrentIndex:   idx + 1,
		Answers:        answers,
	}

	completing := idx+1 == a.TotalQuestions
	if completing {
		answered := &Attempt{Answers: answers}
		u.Status = store.StatusCompleted
		u.CompletedAt = &now
		u.Result = e.score(a.Stream, a.Questions, answered.AnswerMap())
	}

	if err := e.store.UpdateAttempt(ctx, a.ID, u); err != nil {
		if isConflict(err) {
			return nil, e.lostRace(ctx, a.ID, questionID)
		}
		return nil, fmt.Errorf("record answer: %w", err)
	}

	a.Answers = answers
	a.CurrentIndex = idx + 1
	res := &SubmitResult{Attempt: a}

	if completing {
		a.Status = store.StatusCompleted
		a.CompletedAt = &now
		a.Result = u.Result
		res.Result = u.Result
		e.metrics.AttemptCompleted(a.Stream)
		var top catalog.Trait
		if len(u.Result.TopTraits) > 0 {
			top = u.Result.TopTraits[0]
		}
		e.logger.Info("attempt completed",
			zap.String("attempt_id", a.ID),
			zap.String("top_trait", string(top)),
			zap.Int("recommendations", len(u.Result.Recommendations)))
	} else {
		next := a.Questions[a.CurrentIndex]
		res.NextQuestion = &next
	}
	res.Progress = a.Progress()
	return res, nil
}

// score computes the immutable result of a completed attempt.
func (e *Engine) score(stream catalog.StreamID, questions []catalog.Question, answers map[string]string) *store.Result {
	scores := scoring.Score(questions, answers)
	order := e.catalog.TraitOrder(stream)

	opts := e.cfg.Ranking
	opts.TraitOrder = order
	opts.Label = func(t catalog.Trait) string { return e.catalog.TraitLabel(stream, t) }

	profiles := e.catalog.CourseProfiles(stream)
	if len(profiles) == 0 {
		e.logger.Error("stream has no course profiles", zap.String("stream", string(stream)))
	}

	return &store.Result{
		TraitScores:     scores,
		TopTraits:       scoring.TopTraits(scores, order, e.cfg.TopTraits),
		Recommendations: recommend.Rank(scores, profiles, opts),
	}
}

// lostRace turns a failed compare-and-set into the error the caller would
// have seen had its write arrived second.
func (e *Engine) lostRace(ctx context.Context, attemptID, questionID string) error {
	a, err := e.load(ctx, attemptID)
	if err != nil {
		return err
	}
	if q, ok := a.CurrentQuestion(); ok && a.Status == store.StatusInProgress {
		return e.reject(RejectQuestionMismatch, &QuestionMismatchError{AttemptID: a.ID, Expected: q.ID, Got: questionID})
	}
	return e.reject(RejectInvalidState, &InvalidStateError{AttemptID: a.ID, Op: "answer", Status: a.Status})
}

func (e *Engine) reject(reason string, err error) error {
	e.metrics.AnswerRejected(reason)
	e.logger.Debug("answer rejected", zap.String("reason", reason), zap.Error(err))
	return err
}

// PauseAttempt parks an in-progress attempt. Pausing a paused attempt does
// nothing.
func (e *Engine) PauseAttempt(ctx context.Context, attemptID string) (err error) {
	ctx, span := e.startSpan(ctx, "PauseAttempt", attribute.String("attempt_id", attemptID))
	defer func() { endSpan(span, err) }()

	a, err := e.load(ctx, attemptID)
	if err != nil {
		return err
	}
	switch a.Status {
	case store.StatusPaused:
		return nil
	case store.StatusInProgress:
	default:
		return &InvalidStateError{AttemptID: a.ID, Op: "pause", Status: a.Status}
	}

	now := e.timestamp()
	err = e.store.UpdateAttempt(ctx, a.ID, store.AttemptUpdate{
		Key:            fmt.Sprintf("%s:pause:%d", a.ID, a.CurrentIndex),
		ExpectedStatus: store.StatusInProgress,
		ExpectedIndex:  a.CurrentIndex,
		Status:         store.StatusPaused,
		CurrentIndex:   a.CurrentIndex,
		Answers:        a.Answers,
		PausedAt:       &now,
	})
	if isConflict(err) {
		return e.retryTransition(ctx, a.ID, "pause", store.StatusPaused)
	}
	if err != nil {
		return fmt.Errorf("pause attempt: %w", err)
	}

	e.metrics.AttemptPaused()
	e.logger.Info("attempt paused", zap.String("attempt_id", a.ID), zap.Int("answered", len(a.Answers)))
	return nil
}

// ResumeAttempt returns a paused attempt to progress with exactly the
// questions and answers it had when paused.
func (e *Engine) ResumeAttempt(ctx context.Context, attemptID string) (_ *Attempt, err error) {
	ctx, span := e.startSpan(ctx, "ResumeAttempt", attribute.String("attempt_id", attemptID))
	defer func() { endSpan(span, err) }()

	a, err := e.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status != store.StatusPaused {
		return nil, &InvalidStateError{AttemptID: a.ID, Op: "resume", Status: a.Status}
	}
	if !e.catalog.CompatibleWith(a.CatalogVersion) {
		e.logger.Warn("resuming attempt from an incompatible catalog version",
			zap.String("attempt_id", a.ID),
			zap.String("attempt_version", a.CatalogVersion),
			zap.String("catalog_version", e.catalog.Version()))
	}

	err = e.store.UpdateAttempt(ctx, a.ID, store.AttemptUpdate{
		Key:            fmt.Sprintf("%s:resume:%d", a.ID, a.CurrentIndex),
		ExpectedStatus: store.StatusPaused,
		ExpectedIndex:  a.CurrentIndex,
		Status:         store.StatusInProgress,
		CurrentIndex:   a.CurrentIndex,
		Answers:        a.Answers,
	})
	if isConflict(err) {
		return nil, e.retryTransition(ctx, a.ID, "resume", store.StatusInProgress)
	}
	if err != nil {
		return nil, fmt.Errorf("resume attempt: %w", err)
	}

	a.Status = store.StatusInProgress
	e.logger.Info("attempt resumed", zap.String("attempt_id", a.ID), zap.Int("answered", len(a.Answers)))
	return a, nil
}

// retryTransition reports the state another writer left the attempt in.
func (e *Engine) retryTransition(ctx context.Context, attemptID, op string, want store.Status) error {
	a, err := e.load(ctx, attemptID)
	if err != nil {
		return err
	}
	if a.Status == want && op == "pause" {
		return nil
	}
	return &InvalidStateError{AttemptID: a.ID, Op: op, Status: a.Status}
}

// GetAttempt returns the attempt as stored. A completed attempt's result is
// returned verbatim, never recomputed.
func (e *Engine) GetAttempt(ctx context.Context, attemptID string) (_ *Attempt, err error) {
	ctx, span := e.startSpan(ctx, "GetAttempt", attribute.String("attempt_id", attemptID))
	defer func() { endSpan(span, err) }()

	return e.load(ctx, attemptID)
}

// ResetSeen clears the seen-question registry for identity in stream.
func (e *Engine) ResetSeen(ctx context.Context, identity store.Identity, stream catalog.StreamID) (err error) {
	ctx, span := e.startSpan(ctx, "ResetSeen", attribute.String("stream", string(stream)))
	defer func() { endSpan(span, err) }()

	if err := identity.Validate(); err != nil {
		return fmt.Errorf("reset seen questions: %w", err)
	}
	if err := e.store.ResetSeen(ctx, identity, stream); err != nil {
		return fmt.Errorf("reset seen questions: %w", err)
	}
	e.logger.Info("seen questions reset", zap.String("identity", identity.String()), zap.String("stream", string(stream)))
	return nil
}

// ListAttempts returns summaries of identity's attempts, newest first.
// limit <= 0 returns all of them.
func (e *Engine) ListAttempts(ctx context.Context, identity store.Identity, limit int) (_ []Summary, err error) {
	ctx, span := e.startSpan(ctx, "ListAttempts")
	defer func() { endSpan(span, err) }()

	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	recs, err := e.store.ListAttempts(ctx, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]Summary, len(recs))
	for i, rec := range recs {
		out[i] = summarize(rec)
	}
	return out, nil
}

func (e *Engine) load(ctx context.Context, attemptID string) (*Attempt, error) {
	rec, err := e.store.LoadAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return resolve(e.catalog, rec)
}
