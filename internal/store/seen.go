package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/pathwise/internal/catalog"
)

func seenKey(identity Identity, stream catalog.StreamID) *entsql.Predicate {
	return entsql.And(
		entsql.EQ(colIdentityKind, string(identity.Kind)),
		entsql.EQ(colIdentityID, identity.ID),
		entsql.EQ(colStream, string(stream)),
	)
}

// LoadSeen returns the registry for identity in stream.
func (s *Store) LoadSeen(ctx context.Context, identity Identity, stream catalog.StreamID) (map[string]bool, error) {
	query, args := builder().Select(colQuestionID).
		From(builder().Table(tableSeen)).
		Where(seenKey(identity, stream)).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, transient("load seen", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, transient("load seen", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, transient("load seen", err)
	}
	return seen, nil
}

// MarkSeen records ids with a single insert; existing entries are kept.
func (s *Store) MarkSeen(ctx context.Context, identity Identity, stream catalog.StreamID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ins := builder().Insert(tableSeen).
		Columns(colIdentityKind, colIdentityID, colStream, colQuestionID, colSeenAt)
	now := time.Now().UnixMilli()
	for _, id := range ids {
		ins = ins.Values(string(identity.Kind), identity.ID, string(stream), id, now)
	}
	query, args := ins.OnConflict(
		entsql.ConflictColumns(colIdentityKind, colIdentityID, colStream, colQuestionID),
		entsql.DoNothing(),
	).Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return transient("mark seen", err)
	}
	return nil
}

// ResetSeen deletes every registry entry for identity in stream.
func (s *Store) ResetSeen(ctx context.Context, identity Identity, stream catalog.StreamID) error {
	query, args := builder().Delete(tableSeen).
		Where(seenKey(identity, stream)).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return transient("reset seen", err)
	}
	return nil
}
