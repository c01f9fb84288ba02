package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/arbiter"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/persistence"
	"github.com/talgya/needsim/internal/weather"
	"github.com/talgya/needsim/internal/world"
)

type flushCall struct {
	tick      uint64
	events    int
	decisions []persistence.Decision
}

type fakeJournal struct {
	flushes   []flushCall
	snapshots []uint64
	fail      error
}

func (j *fakeJournal) Flush(tick uint64, evs []events.Event, ds []persistence.Decision) error {
	if j.fail != nil {
		return j.fail
	}
	j.flushes = append(j.flushes, flushCall{tick: tick, events: len(evs), decisions: ds})
	return nil
}

func (j *fakeJournal) SaveNeeds(tick uint64, _ map[agents.AgentID]needs.EntityNeeds) error {
	j.snapshots = append(j.snapshots, tick)
	return nil
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Seed = 7
	opts.Agents = 8
	opts.Gen = world.SmallTestConfig()
	opts.FlushEvery = 5
	return opts
}

func newTestSim(t *testing.T, j Journal) *Simulation {
	t.Helper()
	s, err := NewSimulation(testOptions(), j)
	require.NoError(t, err)
	return s
}

func TestNewSimulationPopulates(t *testing.T) {
	s := newTestSim(t, nil)
	assert.Len(t, s.World.ActiveAgents(), 8)
	assert.Equal(t, 8, s.Needs.Len())
	assert.Equal(t, 8, s.Agents.Len())
	assert.Equal(t, 8, s.World.Community().Population)
	for _, id := range s.World.ActiveAgents() {
		inv := s.Inventory.Get(id)
		assert.Equal(t, 2, inv[world.ResourceFood])
		assert.Equal(t, 2, inv[world.ResourceWater])
	}
}

func TestNewSimulationRejectsBadNeedsConfig(t *testing.T) {
	opts := testOptions()
	opts.Needs.ZoneBonusMultiplier = -1
	_, err := NewSimulation(opts, nil)
	assert.ErrorIs(t, err, needs.ErrInvalidConfig)
}

func TestTickMinuteDecidesForEveryAgent(t *testing.T) {
	j := &fakeJournal{}
	s := newTestSim(t, j)
	start := s.Clock.Now()

	for tick := uint64(1); tick <= 20; tick++ {
		s.TickMinute(tick)
	}
	require.NoError(t, s.Close())

	assert.Equal(t, uint64(20), s.LastTick)
	assert.Equal(t, 200*time.Second, s.Clock.Now().Sub(start))
	assert.Equal(t, 160, s.Stats.Decisions)

	require.NotEmpty(t, j.flushes)
	total := 0
	for i, f := range j.flushes {
		if i > 0 {
			assert.Greater(t, f.tick, j.flushes[i-1].tick, "batches flush in tick order")
		}
		for _, d := range f.decisions {
			assert.Equal(t, f.tick, d.Tick)
			assert.NotEmpty(t, d.GoalID)
			assert.Positive(t, d.Options)
		}
		total += len(f.decisions)
	}
	assert.Equal(t, 160, total)

	for id, plan := range s.Plans {
		require.NotEmpty(t, plan, "agent %d", id)
		assert.LessOrEqual(t, len(plan), arbiter.TopK)
		for i := 1; i < len(plan); i++ {
			assert.GreaterOrEqual(t, plan[i-1].Score, plan[i].Score)
		}
		st, ok := s.Agents.Get(id)
		require.True(t, ok)
		require.NotNil(t, st.Current)
		assert.Equal(t, plan[0].Goal.ID, st.Current.GoalID)
	}
}

func TestFlushWaitsForInterval(t *testing.T) {
	j := &fakeJournal{}
	s := newTestSim(t, j)
	for tick := uint64(1); tick <= 4; tick++ {
		s.TickMinute(tick)
	}
	assert.Empty(t, j.flushes)
	s.TickMinute(5)
	assert.Len(t, j.flushes, 5)
}

func TestFailedFlushKeepsBatches(t *testing.T) {
	j := &fakeJournal{fail: errors.New("disk full")}
	s := newTestSim(t, j)
	for tick := uint64(1); tick <= 5; tick++ {
		s.TickMinute(tick)
	}
	assert.Len(t, s.pending, 5)

	j.fail = nil
	require.NoError(t, s.Close())
	assert.Len(t, j.flushes, 5)
	assert.Empty(t, s.pending)
}

func TestTickHourSnapshotsAndReplenishes(t *testing.T) {
	j := &fakeJournal{}
	s := newTestSim(t, j)
	s.TickHour(360)
	assert.Equal(t, []uint64{360}, j.snapshots)
	_, ok := s.World.ResourceNode("food-regrow-360")
	assert.True(t, ok)
	_, ok = s.World.ResourceNode("water-regrow-360")
	assert.True(t, ok)
}

func TestDeathAndRespawnKeepWorldInStep(t *testing.T) {
	s := newTestSim(t, nil)
	id := s.World.ActiveAgents()[0]
	s.Plans[id] = nil
	s.Agents.Commit(id, "g", "rest", s.Clock.Now().Add(time.Minute))

	s.Bus.Publish(events.Event{Kind: events.AgentDeath, AgentID: uint64(id), Cause: needs.CauseDehydration})
	assert.NotContains(t, s.World.ActiveAgents(), id)
	assert.NotContains(t, s.Plans, id)
	st, _ := s.Agents.Get(id)
	assert.Nil(t, st.Current)
	assert.Equal(t, 1, s.Stats.Deaths)
	assert.Equal(t, 1, s.Stats.Causes[needs.CauseDehydration])

	s.World.UpdateStats(id, func(cs *world.CombatStats) { cs.Wounds = 80 })
	s.Bus.Publish(events.Event{Kind: events.AgentRespawned, AgentID: uint64(id)})
	assert.Contains(t, s.World.ActiveAgents(), id)
	stats, _ := s.World.Stats(id)
	assert.Zero(t, stats.Wounds)
	assert.Equal(t, 1, s.Stats.Respawns)
}

func TestRemovalDropsAgentState(t *testing.T) {
	s := newTestSim(t, nil)
	id := s.World.ActiveAgents()[0]
	s.Bus.Publish(events.Event{Kind: events.EntityRemoved, AgentID: uint64(id)})
	_, ok := s.Agents.Get(id)
	assert.False(t, ok)
	assert.Zero(t, s.Inventory.Get(id).Total())
	assert.Equal(t, 1, s.Stats.Removed)
}

func TestCloseUnsubscribes(t *testing.T) {
	s := newTestSim(t, nil)
	id := s.World.ActiveAgents()[0]
	require.NoError(t, s.Close())
	s.Bus.Publish(events.Event{Kind: events.AgentDeath, AgentID: uint64(id)})
	assert.Contains(t, s.World.ActiveAgents(), id)
}

func TestReportAveragesNeeds(t *testing.T) {
	s := newTestSim(t, nil)
	avg := s.Report(8640)
	assert.InDelta(t, 100, avg[needs.Hunger], 1e-9)
	assert.InDelta(t, 100, avg[needs.Thirst], 1e-9)
	assert.Empty(t, AverageNeeds(nil))
}

func TestTickDayResetsStats(t *testing.T) {
	s := newTestSim(t, nil)
	s.TickMinute(1)
	require.Positive(t, s.Stats.Decisions)
	s.TickDay(8640)
	assert.Zero(t, s.Stats.Decisions)
	assert.Empty(t, s.Stats.GoalTypes)
	assert.Equal(t, 8, s.Stats.Population)
}

func TestWeatherSparesSheltered(t *testing.T) {
	s := newTestSim(t, nil)
	s.SetWeather(weather.Conditions{Season: weather.Winter, Temp: -5})
	shelters := s.World.ZonesOfType(world.ZoneShelter)
	require.NotEmpty(t, shelters)

	id := placed(t, s, 0, shelters[0].Center())
	assert.Equal(t, 1.0, s.decayModifier(id))

	outside := world.Vec2{X: -50, Y: -50}
	s.World.SetPosition(id, outside)
	pos, _ := s.World.Position(id)
	if len(s.World.ZonesAt(pos)) == 0 {
		assert.InDelta(t, 1.15, s.decayModifier(id), 1e-9)
	}
}

func TestSimulationRollsWeatherFromSeed(t *testing.T) {
	a := newTestSim(t, nil)
	b := newTestSim(t, nil)
	assert.Equal(t, a.Weather, b.Weather)
	assert.Equal(t, weather.Winter, a.Weather.Season)

	a.TickDay(8640)
	b.TickDay(8640)
	assert.Equal(t, a.Weather, b.Weather)
}
