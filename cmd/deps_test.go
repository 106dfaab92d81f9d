package cmd

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
)

func depsCommand(t *testing.T, db string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "x"}
	c.Flags().String("config", "", "")
	c.Flags().String("db", "", "")
	require.NoError(t, c.ParseFlags([]string{"--db", db}))
	c.SetContext(context.Background())
	return c
}

func TestDeviceHistorySurvivesRestartWithoutRedis(t *testing.T) {
	t.Setenv("PATHWISE_ASSESSMENT_QUESTIONS_PER_ATTEMPT", "10")
	db := isolate(t)
	kiosk := store.Identity{Kind: store.KindDevice, ID: "kiosk-9"}
	ctx := context.Background()

	d, err := buildDeps(depsCommand(t, db), false)
	require.NoError(t, err)
	first, err := d.engine.StartAttempt(ctx, kiosk, "pcm")
	require.NoError(t, err)
	require.NoError(t, d.engine.PauseAttempt(ctx, first.ID))
	d.Close()

	d, err = buildDeps(depsCommand(t, db), false)
	require.NoError(t, err)
	defer d.Close()

	resumed, err := d.engine.ResumeAttempt(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInProgress, resumed.Status)

	second, err := d.engine.StartAttempt(ctx, kiosk, "pcm")
	require.NoError(t, err)
	assert.Equal(t, session.NoticeNone, second.Notice)

	seen := map[string]bool{}
	for _, q := range first.Questions {
		seen[q.ID] = true
	}
	for _, q := range second.Questions {
		assert.False(t, seen[q.ID], "question %s repeated across runs", q.ID)
	}

	list, err := d.engine.ListAttempts(ctx, kiosk, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
