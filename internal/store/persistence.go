package store

import (
	"context"

	"github.com/abhisek/pathwise/internal/catalog"
)

// Persistence is the storage collaborator of the assessment engine. Every
// backend implements the same operations so the engine never needs to know
// which kind of identity it is serving.
type Persistence interface {
	// LoadSeen returns the question ids already delivered to identity in
	// stream.
	LoadSeen(ctx context.Context, identity Identity, stream catalog.StreamID) (map[string]bool, error)

	// MarkSeen adds question ids to the registry. Re-adding an id is a no-op.
	MarkSeen(ctx context.Context, identity Identity, stream catalog.StreamID, ids []string) error

	// ResetSeen clears the registry for identity in stream.
	ResetSeen(ctx context.Context, identity Identity, stream catalog.StreamID) error

	// CreateAttempt stores a new attempt and returns its id. A taken id is
	// ErrAlreadyExists.
	CreateAttempt(ctx context.Context, a *Attempt) (string, error)

	// UpdateAttempt applies a compare-and-set update. It returns ErrNotFound
	// for unknown attempts and ErrConflict when the guard fails.
	UpdateAttempt(ctx context.Context, id string, u AttemptUpdate) error

	// LoadAttempt returns a copy of the stored attempt or ErrNotFound.
	LoadAttempt(ctx context.Context, id string) (*Attempt, error)

	// ListAttempts returns identity's attempts, most recently started first.
	// limit <= 0 returns all of them.
	ListAttempts(ctx context.Context, identity Identity, limit int) ([]*Attempt, error)
}
