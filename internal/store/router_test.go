package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_DispatchesByIdentityKind(t *testing.T) {
	ctx := context.Background()
	users, devices := NewMemoryStore(), NewMemoryStore()
	r := NewRouter(users, devices)

	user := Identity{Kind: KindUser, ID: "u1"}
	device := Identity{Kind: KindDevice, ID: "d1"}

	require.NoError(t, r.MarkSeen(ctx, user, "pcm", []string{"q1"}))
	require.NoError(t, r.MarkSeen(ctx, device, "pcm", []string{"q2"}))

	seen, err := users.LoadSeen(ctx, user, "pcm")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"q1": true}, seen)

	seen, err = devices.LoadSeen(ctx, device, "pcm")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"q2": true}, seen)

	seen, err = devices.LoadSeen(ctx, user, "pcm")
	require.NoError(t, err)
	assert.Empty(t, seen)

	require.NoError(t, r.ResetSeen(ctx, device, "pcm"))
	seen, err = r.LoadSeen(ctx, device, "pcm")
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestRouter_AttemptsFoundInEitherBackend(t *testing.T) {
	ctx := context.Background()
	users, devices := NewMemoryStore(), NewMemoryStore()
	r := NewRouter(users, devices)

	userID, err := r.CreateAttempt(ctx, newTestAttempt(Identity{Kind: KindUser, ID: "u1"}))
	require.NoError(t, err)
	deviceID, err := r.CreateAttempt(ctx, newTestAttempt(Identity{Kind: KindDevice, ID: "d1"}))
	require.NoError(t, err)

	_, err = devices.LoadAttempt(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.LoadAttempt(ctx, deviceID)
	assert.ErrorIs(t, err, ErrNotFound)

	a, err := r.LoadAttempt(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, KindDevice, a.Identity.Kind)

	require.NoError(t, r.UpdateAttempt(ctx, deviceID, answerUpdate(a, 0, "a")))
	a, err = devices.LoadAttempt(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, 1, a.CurrentIndex)

	_, err = r.LoadAttempt(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.UpdateAttempt(ctx, "missing", AttemptUpdate{}), ErrNotFound)
}

func TestRouter_RejectsInvalidIdentity(t *testing.T) {
	r := NewRouter(NewMemoryStore(), NewMemoryStore())
	ctx := context.Background()

	_, err := r.LoadSeen(ctx, Identity{Kind: "robot", ID: "x"}, "pcm")
	assert.ErrorContains(t, err, "unknown identity kind")

	_, err = r.CreateAttempt(ctx, newTestAttempt(Identity{Kind: KindUser}))
	assert.ErrorContains(t, err, "empty user identity")
}

func TestRouter_SameBackendProbedOnce(t *testing.T) {
	m := NewMemoryStore()
	r := NewRouter(m, m)
	assert.Len(t, r.backends(), 1)
}
