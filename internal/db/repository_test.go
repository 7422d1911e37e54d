package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skillcore/internal/game/upgrade"
	"github.com/udisondev/skillcore/internal/testutil"
)

func TestUpgradeRepository_RoundTrip(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := NewUpgradeRepository(pool)

	records := []upgrade.Record{
		{Type: upgrade.CooldownReduction, Value: 0.3},
		{Type: upgrade.DamageIncrease, Value: 0.5, SkillID: "laser"},
		{Type: upgrade.SizeIncrease, Value: 1},
	}
	// written out of order on purpose: reads follow seq
	require.NoError(t, repo.AppendRecord(ctx, "s1", 2, records[1]))
	require.NoError(t, repo.AppendRecord(ctx, "s1", 1, records[0]))
	require.NoError(t, repo.AppendRecord(ctx, "s1", 3, records[2]))
	require.NoError(t, repo.AppendRecord(ctx, "other", 1, records[2]))

	// duplicate position is ignored
	require.NoError(t, repo.AppendRecord(ctx, "s1", 1, upgrade.Record{Type: upgrade.RangeIncrease, Value: 9}))

	got, err := repo.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	got, err = repo.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpgradeRepository_FeedsPersistentHistory(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := NewUpgradeRepository(pool)

	h, err := upgrade.LoadPersistentHistory(ctx, repo, "live")
	require.NoError(t, err)

	runCtx, cancel := testutil.ContextWithCancel(t)
	done := make(chan error, 1)
	go func() { done <- h.Run(runCtx) }()

	h.Append(upgrade.Record{Type: upgrade.CooldownReduction, Value: 0.1})
	h.Append(upgrade.Record{Type: upgrade.DamageIncrease, Value: 0.2})
	cancel()
	require.NoError(t, <-done)

	reloaded, err := upgrade.LoadPersistentHistory(ctx, repo, "live")
	require.NoError(t, err)
	assert.Equal(t, h.OrderedHistory(), reloaded.OrderedHistory())
}

func TestStatRepository_AddCounts(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	repo := NewStatRepository(pool)

	require.NoError(t, repo.AddCounts(ctx, "s1", map[string]int64{"laser.activated": 2, "laser.completed": 1}))
	require.NoError(t, repo.AddCounts(ctx, "s1", map[string]int64{"laser.activated": 3}))
	require.NoError(t, repo.AddCounts(ctx, "s2", map[string]int64{"nova.activated": 1}))

	got, err := repo.Counts(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"laser.activated": 5, "laser.completed": 1}, got)
}
