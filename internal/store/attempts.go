package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/catalog"
)

// CreateAttempt inserts a new attempt. An empty ID is filled with a UUID.
func (s *Store) CreateAttempt(ctx context.Context, a *Attempt) (string, error) {
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}

	questionIDs, err := json.Marshal(a.QuestionIDs)
	if err != nil {
		return "", fmt.Errorf("marshal question ids: %w", err)
	}
	answers, err := marshalAnswers(a.Answers)
	if err != nil {
		return "", err
	}
	result, err := marshalResult(a.Result)
	if err != nil {
		return "", err
	}

	query, args := builder().Insert(tableAttempts).
		Columns(attemptColumns...).
		Values(id, string(a.Identity.Kind), a.Identity.ID, string(a.Stream), a.CatalogVersion,
			a.TotalQuestions, string(questionIDs), answers, a.CurrentIndex, string(a.Status),
			a.StartedAt.UnixMilli(), millisOrNil(a.PausedAt), millisOrNil(a.CompletedAt), result, "").
		OnConflict(entsql.DoNothing()).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", transient("create attempt", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", transient("create attempt", err)
	}
	if n == 0 {
		return "", fmt.Errorf("create attempt %s: %w", id, ErrAlreadyExists)
	}
	return id, nil
}

// UpdateAttempt applies u with a single guarded UPDATE. When no row changes
// the stored row is inspected to tell a replay from a lost race.
func (s *Store) UpdateAttempt(ctx context.Context, id string, u AttemptUpdate) error {
	answers, err := marshalAnswers(u.Answers)
	if err != nil {
		return err
	}

	upd := builder().Update(tableAttempts).
		Set(colStatus, string(u.Status)).
		Set(colCurrentIndex, u.CurrentIndex).
		Set(colAnswers, answers).
		Set(colLastUpdateKey, u.Key)
	if u.PausedAt != nil {
		upd = upd.Set(colPausedAt, u.PausedAt.UnixMilli())
	}
	if u.CompletedAt != nil {
		upd = upd.Set(colCompletedAt, u.CompletedAt.UnixMilli())
	}
	if u.Result != nil {
		result, err := marshalResult(u.Result)
		if err != nil {
			return err
		}
		upd = upd.Set(colResult, result)
	}
	query, args := upd.Where(entsql.And(
		entsql.EQ(colID, id),
		entsql.EQ(colStatus, string(u.ExpectedStatus)),
		entsql.EQ(colCurrentIndex, u.ExpectedIndex),
	)).Query()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return transient("update attempt", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return transient("update attempt", err)
	}
	if n == 1 {
		return nil
	}

	stored, lastKey, err := s.loadAttempt(ctx, id)
	if err != nil {
		return err
	}
	if _, err := checkUpdate(stored, lastKey, u); err != nil {
		return err
	}
	return nil
}

// LoadAttempt returns the stored attempt or ErrNotFound.
func (s *Store) LoadAttempt(ctx context.Context, id string) (*Attempt, error) {
	a, _, err := s.loadAttempt(ctx, id)
	return a, err
}

var attemptColumns = []string{
	colID, colIdentityKind, colIdentityID, colStream, colCatalogVersion,
	colTotalQuestions, colQuestionIDs, colAnswers, colCurrentIndex, colStatus,
	colStartedAt, colPausedAt, colCompletedAt, colResult, colLastUpdateKey,
}

func (s *Store) loadAttempt(ctx context.Context, id string) (*Attempt, string, error) {
	query, args := builder().
		Select(attemptColumns...).
		From(builder().Table(tableAttempts)).
		Where(entsql.EQ(colID, id)).
		Query()

	a, lastKey, err := scanAttempt(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("load attempt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}
	return a, lastKey, nil
}

// ListAttempts returns identity's attempts, newest first. limit <= 0 means
// no limit.
func (s *Store) ListAttempts(ctx context.Context, identity Identity, limit int) ([]*Attempt, error) {
	sel := builder().
		Select(attemptColumns...).
		From(builder().Table(tableAttempts)).
		Where(entsql.And(
			entsql.EQ(colIdentityKind, string(identity.Kind)),
			entsql.EQ(colIdentityID, identity.ID),
		)).
		OrderBy(entsql.Desc(colStartedAt), entsql.Asc(colID))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transient("list attempts", err)
	}
	defer rows.Close()

	var out []*Attempt
	for rows.Next() {
		a, _, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, transient("list attempts", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*Attempt, string, error) {
	var (
		a                     Attempt
		kind, stream, status  string
		questionIDs, answers  string
		startedAt             int64
		pausedAt, completedAt sql.NullInt64
		result                sql.NullString
		lastKey               string
	)
	err := row.Scan(
		&a.ID, &kind, &a.Identity.ID, &stream, &a.CatalogVersion,
		&a.TotalQuestions, &questionIDs, &answers, &a.CurrentIndex, &status,
		&startedAt, &pausedAt, &completedAt, &result, &lastKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", err
	}
	if err != nil {
		return nil, "", transient("load attempt", err)
	}

	a.Identity.Kind = IdentityKind(kind)
	a.Stream = catalog.StreamID(stream)
	a.Status = Status(status)
	a.StartedAt = time.UnixMilli(startedAt).UTC()
	a.PausedAt = timeOrNil(pausedAt)
	a.CompletedAt = timeOrNil(completedAt)

	if err := json.Unmarshal([]byte(questionIDs), &a.QuestionIDs); err != nil {
		return nil, "", fmt.Errorf("unmarshal question ids: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return nil, "", fmt.Errorf("unmarshal answers: %w", err)
	}
	if result.Valid && result.String != "" {
		a.Result = &Result{}
		if err := json.Unmarshal([]byte(result.String), a.Result); err != nil {
			return nil, "", fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &a, lastKey, nil
}

func marshalAnswers(answers []Answer) (string, error) {
	if answers == nil {
		answers = []Answer{}
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	return string(b), nil
}

func marshalResult(r *Result) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return string(b), nil
}

func millisOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
