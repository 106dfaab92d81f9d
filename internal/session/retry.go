package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/store"
)

// retryStore is a decorator that retries a write once when the backend
// reports a transient failure. Writes are idempotent: registry updates are
// set operations, attempt ids are chosen before creation and attempt
// updates carry an idempotency key.
type retryStore struct {
	store.Persistence
	logger  *zap.Logger
	metrics Metrics
}

func withRetry(p store.Persistence, logger *zap.Logger, m Metrics) *retryStore {
	return &retryStore{Persistence: p, logger: logger, metrics: m}
}

func (r *retryStore) do(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil || !store.IsTransient(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}

	r.logger.Warn("retrying persistence write", zap.String("op", op), zap.Error(err))
	r.metrics.PersistenceRetry(op)
	return fn()
}

func (r *retryStore) MarkSeen(ctx context.Context, identity store.Identity, stream catalog.StreamID, ids []string) error {
	return r.do(ctx, "mark_seen", func() error {
		return r.Persistence.MarkSeen(ctx, identity, stream, ids)
	})
}

func (r *retryStore) ResetSeen(ctx context.Context, identity store.Identity, stream catalog.StreamID) error {
	return r.do(ctx, "reset_seen", func() error {
		return r.Persistence.ResetSeen(ctx, identity, stream)
	})
}

func (r *retryStore) CreateAttempt(ctx context.Context, a *store.Attempt) (string, error) {
	var (
		id       string
		attempts int
	)
	err := r.do(ctx, "create_attempt", func() error {
		attempts++
		var err error
		id, err = r.Persistence.CreateAttempt(ctx, a)
		if err != nil && attempts > 1 && a.ID != "" && r.landed(ctx, a) {
			id, err = a.ID, nil
		}
		return err
	})
	return id, err
}

// landed reports whether a create that failed before the retry had in fact
// stored a. A stored attempt for another identity or stream is a real id
// collision.
func (r *retryStore) landed(ctx context.Context, a *store.Attempt) bool {
	stored, err := r.Persistence.LoadAttempt(ctx, a.ID)
	if err != nil {
		return false
	}
	return stored.Identity == a.Identity && stored.Stream == a.Stream
}

func (r *retryStore) UpdateAttempt(ctx context.Context, id string, u store.AttemptUpdate) error {
	return r.do(ctx, "update_attempt", func() error {
		return r.Persistence.UpdateAttempt(ctx, id, u)
	})
}

// isConflict reports whether err is a lost compare-and-set.
func isConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}
