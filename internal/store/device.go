package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/pathwise/internal/catalog"
)

// maxWatchRetries bounds optimistic-lock retries when a watched attempt key
// changes between read and write.
const maxWatchRetries = 3

// DeviceStore is the Redis backend used for anonymous, device-scoped
// learners. Seen registries are sets that expire after seenTTL of
// inactivity; attempts are JSON documents updated with WATCH/MULTI.
type DeviceStore struct {
	client  redis.UniversalClient
	seenTTL time.Duration
}

var _ Persistence = (*DeviceStore)(nil)

// deviceRecord is the stored form of an attempt.
type deviceRecord struct {
	Attempt       *Attempt `json:"attempt"`
	LastUpdateKey string   `json:"last_update_key,omitempty"`
}

// NewDeviceStore wraps a Redis client. A zero seenTTL keeps registries
// forever.
func NewDeviceStore(client redis.UniversalClient, seenTTL time.Duration) *DeviceStore {
	return &DeviceStore{client: client, seenTTL: seenTTL}
}

// Close closes the underlying client.
func (d *DeviceStore) Close() error {
	return d.client.Close()
}

func (d *DeviceStore) seenKey(identity Identity, stream catalog.StreamID) string {
	return fmt.Sprintf("pathwise:seen:%s:%s:%s", identity.Kind, identity.ID, stream)
}

func (d *DeviceStore) attemptKey(id string) string {
	return "pathwise:attempt:" + id
}

func (d *DeviceStore) indexKey(identity Identity) string {
	return fmt.Sprintf("pathwise:attempts:%s:%s", identity.Kind, identity.ID)
}

func (d *DeviceStore) LoadSeen(ctx context.Context, identity Identity, stream catalog.StreamID) (map[string]bool, error) {
	members, err := d.client.SMembers(ctx, d.seenKey(identity, stream)).Result()
	if err != nil {
		return nil, transient("load seen", err)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		seen[m] = true
	}
	return seen, nil
}

func (d *DeviceStore) MarkSeen(ctx context.Context, identity Identity, stream catalog.StreamID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	key := d.seenKey(identity, stream)
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, members...)
		if d.seenTTL > 0 {
			pipe.Expire(ctx, key, d.seenTTL)
		}
		return nil
	})
	if err != nil {
		return transient("mark seen", err)
	}
	return nil
}

func (d *DeviceStore) ResetSeen(ctx context.Context, identity Identity, stream catalog.StreamID) error {
	if err := d.client.Del(ctx, d.seenKey(identity, stream)).Err(); err != nil {
		return transient("reset seen", err)
	}
	return nil
}

func (d *DeviceStore) CreateAttempt(ctx context.Context, a *Attempt) (string, error) {
	rec := deviceRecord{Attempt: a.Clone()}
	if rec.Attempt.ID == "" {
		rec.Attempt.ID = uuid.NewString()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal attempt: %w", err)
	}

	// The index entry is written on every call so a replayed create repairs
	// an index the first call never wrote.
	var created *redis.BoolCmd
	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, d.attemptKey(rec.Attempt.ID), data, 0)
		pipe.ZAdd(ctx, d.indexKey(rec.Attempt.Identity), redis.Z{
			Score:  float64(rec.Attempt.StartedAt.UnixMilli()),
			Member: rec.Attempt.ID,
		})
		return nil
	})
	if err != nil {
		return "", transient("create attempt", err)
	}
	if !created.Val() {
		return "", fmt.Errorf("create attempt %s: %w", rec.Attempt.ID, ErrAlreadyExists)
	}
	return rec.Attempt.ID, nil
}

func (d *DeviceStore) UpdateAttempt(ctx context.Context, id string, u AttemptUpdate) error {
	key := d.attemptKey(id)

	txf := func(tx *redis.Tx) error {
		rec, err := d.get(ctx, tx, id)
		if err != nil {
			return err
		}
		apply, err := checkUpdate(rec.Attempt, rec.LastUpdateKey, u)
		if err != nil || !apply {
			return err
		}

		u.apply(rec.Attempt)
		rec.LastUpdateKey = u.Key
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal attempt: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := d.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) && !IsTransient(err) {
			return transient("update attempt", err)
		}
		return err
	}
	return fmt.Errorf("update attempt %s: %w", id, ErrConflict)
}

func (d *DeviceStore) LoadAttempt(ctx context.Context, id string) (*Attempt, error) {
	rec, err := d.get(ctx, d.client, id)
	if err != nil {
		return nil, err
	}
	return rec.Attempt, nil
}

// ListAttempts reads the identity's index, newest first. Index entries whose
// attempt document is gone are skipped.
func (d *DeviceStore) ListAttempts(ctx context.Context, identity Identity, limit int) ([]*Attempt, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := d.client.ZRevRange(ctx, d.indexKey(identity), 0, stop).Result()
	if err != nil {
		return nil, transient("list attempts", err)
	}

	out := make([]*Attempt, 0, len(ids))
	for _, id := range ids {
		rec, err := d.get(ctx, d.client, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Attempt)
	}
	return newestFirst(out, limit), nil
}

func (d *DeviceStore) get(ctx context.Context, c redis.Cmdable, id string) (*deviceRecord, error) {
	data, err := c.Get(ctx, d.attemptKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load attempt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, transient("load attempt", err)
	}
	var rec deviceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal attempt %s: %w", id, err)
	}
	if rec.Attempt == nil {
		return nil, fmt.Errorf("attempt %s: empty record", id)
	}
	return &rec, nil
}
