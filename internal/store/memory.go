package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/catalog"
)

// MemoryStore keeps everything in process memory and is lost on exit. Use
// it in tests and throwaway runs only.
type MemoryStore struct {
	mu       sync.Mutex
	seen     map[string]map[string]bool
	attempts map[string]*deviceRecord
}

var _ Persistence = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen:     make(map[string]map[string]bool),
		attempts: make(map[string]*deviceRecord),
	}
}

func memorySeenKey(identity Identity, stream catalog.StreamID) string {
	return identity.String() + "/" + string(stream)
}

func (m *MemoryStore) LoadSeen(_ context.Context, identity Identity, stream catalog.StreamID) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]bool)
	for id := range m.seen[memorySeenKey(identity, stream)] {
		out[id] = true
	}
	return out, nil
}

func (m *MemoryStore) MarkSeen(_ context.Context, identity Identity, stream catalog.StreamID, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memorySeenKey(identity, stream)
	if m.seen[key] == nil {
		m.seen[key] = make(map[string]bool)
	}
	for _, id := range ids {
		m.seen[key][id] = true
	}
	return nil
}

func (m *MemoryStore) ResetSeen(_ context.Context, identity Identity, stream catalog.StreamID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.seen, memorySeenKey(identity, stream))
	return nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, a *Attempt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := &deviceRecord{Attempt: a.Clone()}
	if rec.Attempt.ID == "" {
		rec.Attempt.ID = uuid.NewString()
	}
	if _, exists := m.attempts[rec.Attempt.ID]; exists {
		return "", fmt.Errorf("create attempt %s: %w", rec.Attempt.ID, ErrAlreadyExists)
	}
	m.attempts[rec.Attempt.ID] = rec
	return rec.Attempt.ID, nil
}

func (m *MemoryStore) UpdateAttempt(_ context.Context, id string, u AttemptUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.attempts[id]
	if !ok {
		return fmt.Errorf("update attempt %s: %w", id, ErrNotFound)
	}
	apply, err := checkUpdate(rec.Attempt, rec.LastUpdateKey, u)
	if err != nil || !apply {
		return err
	}
	u.apply(rec.Attempt)
	rec.LastUpdateKey = u.Key
	return nil
}

func (m *MemoryStore) LoadAttempt(_ context.Context, id string) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.attempts[id]
	if !ok {
		return nil, fmt.Errorf("load attempt %s: %w", id, ErrNotFound)
	}
	return rec.Attempt.Clone(), nil
}

func (m *MemoryStore) ListAttempts(_ context.Context, identity Identity, limit int) ([]*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Attempt
	for _, rec := range m.attempts {
		if rec.Attempt.Identity == identity {
			out = append(out, rec.Attempt.Clone())
		}
	}
	return newestFirst(out, limit), nil
}

// newestFirst orders attempts by start time descending, then id, and
// applies limit.
func newestFirst(list []*Attempt, limit int) []*Attempt {
	slices.SortFunc(list, func(a, b *Attempt) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
