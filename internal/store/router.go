package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/pathwise/internal/catalog"
)

// Router dispatches persistence calls to the backend that owns an identity
// kind. Operations addressed only by attempt id try each backend in turn.
type Router struct {
	users   Persistence
	devices Persistence
}

var _ Persistence = (*Router)(nil)

// NewRouter routes user identities to users and device identities to
// devices.
func NewRouter(users, devices Persistence) *Router {
	return &Router{users: users, devices: devices}
}

func (r *Router) backend(identity Identity) (Persistence, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if identity.Kind == KindUser {
		return r.users, nil
	}
	return r.devices, nil
}

func (r *Router) backends() []Persistence {
	if r.users == r.devices {
		return []Persistence{r.users}
	}
	return []Persistence{r.users, r.devices}
}

func (r *Router) LoadSeen(ctx context.Context, identity Identity, stream catalog.StreamID) (map[string]bool, error) {
	b, err := r.backend(identity)
	if err != nil {
		return nil, err
	}
	return b.LoadSeen(ctx, identity, stream)
}

func (r *Router) MarkSeen(ctx context.Context, identity Identity, stream catalog.StreamID, ids []string) error {
	b, err := r.backend(identity)
	if err != nil {
		return err
	}
	return b.MarkSeen(ctx, identity, stream, ids)
}

func (r *Router) ResetSeen(ctx context.Context, identity Identity, stream catalog.StreamID) error {
	b, err := r.backend(identity)
	if err != nil {
		return err
	}
	return b.ResetSeen(ctx, identity, stream)
}

func (r *Router) CreateAttempt(ctx context.Context, a *Attempt) (string, error) {
	b, err := r.backend(a.Identity)
	if err != nil {
		return "", err
	}
	return b.CreateAttempt(ctx, a)
}

func (r *Router) UpdateAttempt(ctx context.Context, id string, u AttemptUpdate) error {
	for _, b := range r.backends() {
		err := b.UpdateAttempt(ctx, id, u)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return err
	}
	return fmt.Errorf("update attempt %s: %w", id, ErrNotFound)
}

func (r *Router) LoadAttempt(ctx context.Context, id string) (*Attempt, error) {
	for _, b := range r.backends() {
		a, err := b.LoadAttempt(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return a, err
	}
	return nil, fmt.Errorf("load attempt %s: %w", id, ErrNotFound)
}

func (r *Router) ListAttempts(ctx context.Context, identity Identity, limit int) ([]*Attempt, error) {
	b, err := r.backend(identity)
	if err != nil {
		return nil, err
	}
	return b.ListAttempts(ctx, identity, limit)
}
