package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/needs"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFreshJournalHasNoTick(t *testing.T) {
	db := openTemp(t)
	_, ok, err := db.LastTick()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlushRecordsEventsDecisionsAndTick(t *testing.T) {
	db := openTemp(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	evs := []events.Event{
		{Kind: events.NeedCritical, AgentID: 3, Need: "thirst", Value: 12.5, Timestamp: at},
		{Kind: events.AgentDeath, AgentID: 3, Cause: "dehydration", Snapshot: map[string]float64{"thirst": 0}, Timestamp: at},
	}
	ds := []Decision{
		{Tick: 9, AgentID: 3, GoalID: "satisfy_need_x", GoalType: "satisfy_need", Tier: "critical", Domain: "survival", Priority: 0.9, Score: 4.9, Options: 4},
		{Tick: 9, AgentID: 4, GoalID: "explore_y", GoalType: "explore", Tier: "opportunity", Domain: "explore", Priority: 0.3, Score: 0.39, Options: 2},
	}
	require.NoError(t, db.Flush(9, evs, ds))

	tick, ok, err := db.LastTick()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(9), tick)

	rows, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "agent_death", rows[0].Kind)
	assert.Equal(t, "dehydration", rows[0].Cause)
	assert.JSONEq(t, `{"thirst":0}`, rows[0].Payload)
	assert.Equal(t, "{}", rows[1].Payload)
	assert.Equal(t, at.UnixMilli(), rows[1].At)

	n, err := db.CountEvents(events.AgentDeath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := db.Decisions(3, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ds[0], got[0])

	counts, err := db.GoalTypeCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"satisfy_need": 1, "explore": 1}, counts)
}

func TestConfigEventPayload(t *testing.T) {
	db := openTemp(t)
	ev := events.Event{Kind: events.ConfigChanged, Config: needs.DefaultConfig(), Timestamp: time.Now()}
	require.NoError(t, db.SaveEvents(1, []events.Event{ev}))
	rows, err := db.RecentEvents(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Payload, `"criticalThreshold":20`)
}

func TestNeedsSnapshotReplaces(t *testing.T) {
	db := openTemp(t)
	first := map[agents.AgentID]needs.EntityNeeds{1: needs.SpawnDefaults(), 2: needs.SpawnDefaults()}
	require.NoError(t, db.SaveNeeds(10, first))

	hungry := needs.SpawnDefaults()
	hungry.Hunger = 15
	require.NoError(t, db.SaveNeeds(20, map[agents.AgentID]needs.EntityNeeds{2: hungry}))

	got, err := db.LoadNeeds()
	require.NoError(t, err)
	assert.Equal(t, map[agents.AgentID]needs.EntityNeeds{2: hungry}, got)
}

func TestReopenKeepsJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveMeta("seed", "42"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}
