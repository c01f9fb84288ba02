package needs

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/economy"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/world"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *fakeClock, *events.Bus) {
	t.Helper()
	clock := newFakeClock()
	bus := events.NewBus(0)
	e, err := NewEngine(cfg, clock, bus, opts...)
	require.NoError(t, err)
	return e, clock, bus
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.CrossEffects = false
	return cfg
}

func TestUpdateIsGatedByInterval(t *testing.T) {
	e, clock, _ := newTestEngine(t, DefaultConfig())
	require.True(t, e.Spawn(1))

	clock.Advance(500 * time.Millisecond)
	assert.False(t, e.Update())
	n, _ := e.Get(1)
	assert.Equal(t, 100.0, n.Hunger)

	clock.Advance(600 * time.Millisecond)
	assert.True(t, e.Update())
	n, _ = e.Get(1)
	assert.InDelta(t, 100-0.10*1.1, n.Hunger, 1e-9)
	assert.InDelta(t, 100-0.15*1.1, n.Thirst, 1e-9)
}

func TestSpawnTwiceFails(t *testing.T) {
	e, _, _ := newTestEngine(t, DefaultConfig())
	assert.True(t, e.Spawn(7))
	assert.False(t, e.Spawn(7))
	n, ok := e.Get(7)
	require.True(t, ok)
	assert.Equal(t, SpawnDefaults(), n)
}

func TestDecayIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := quietConfig()
		cfg.DeathThresholds = map[NeedType]float64{}
		clock := newFakeClock()
		e, err := NewEngine(cfg, clock, nil)
		if err != nil {
			t.Fatal(err)
		}
		e.Spawn(1)
		prev, _ := e.Get(1)
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			secs := rapid.Float64Range(1, 600).Draw(t, "secs")
			clock.Advance(time.Duration(secs * float64(time.Second)))
			e.Update()
			cur, ok := e.Get(1)
			if !ok {
				t.Fatal("agent vanished without death thresholds")
			}
			pv, cv := prev.Vector(), cur.Vector()
			for c := range cv {
				if cv[c] > pv[c] {
					t.Fatalf("%s rose from %v to %v", All[c], pv[c], cv[c])
				}
				if cv[c] < MinValue {
					t.Fatalf("%s fell below zero: %v", All[c], cv[c])
				}
			}
			prev = cur
		}
	})
}

func TestModifyClampsArbitraryDeltas(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e, err := NewEngine(DefaultConfig(), newFakeClock(), nil)
		if err != nil {
			t.Fatal(err)
		}
		e.Spawn(1)
		need := All[rapid.IntRange(0, NumNeeds-1).Draw(t, "need")]
		for i := 0; i < 10; i++ {
			delta := rapid.Float64().Draw(t, "delta")
			if math.IsNaN(delta) {
				continue
			}
			if rapid.Bool().Draw(t, "negate") {
				delta = -delta
			}
			if !e.Modify(1, need, delta) {
				t.Fatalf("modify rejected finite delta %v", delta)
			}
			n, _ := e.Get(1)
			v, _ := n.Get(need)
			if math.IsNaN(v) || v < MinValue || v > MaxValue {
				t.Fatalf("%s out of range: %v", need, v)
			}
		}
	})
}

func TestModifyRejectsBadInput(t *testing.T) {
	e, _, _ := newTestEngine(t, DefaultConfig())
	e.Spawn(1)
	assert.False(t, e.Modify(2, Hunger, 10), "unknown agent")
	assert.False(t, e.Modify(1, NeedType("boredom"), 10), "unknown need")
	assert.False(t, e.Modify(1, Hunger, math.NaN()), "NaN delta")
	assert.False(t, e.Satisfy(1, Hunger, -5), "negative satisfy")

	assert.True(t, e.Modify(1, Hunger, math.Inf(-1)))
	n, _ := e.Get(1)
	assert.Equal(t, 0.0, n.Hunger)
	assert.True(t, e.Satisfy(1, Hunger, math.Inf(1)))
	n, _ = e.Get(1)
	assert.Equal(t, 100.0, n.Hunger)
}

func TestDeathByStarvation(t *testing.T) {
	e, clock, bus := newTestEngine(t, DefaultConfig())
	e.Spawn(1)
	e.Spawn(2)
	require.True(t, e.Modify(1, Hunger, -100))
	bus.Drain()

	clock.Advance(time.Second)
	require.True(t, e.Update())

	evs := bus.Drain()
	require.Equal(t, 1, events.Count(evs, events.AgentDeath))
	for _, ev := range evs {
		if ev.Kind == events.AgentDeath {
			assert.Equal(t, uint64(1), ev.AgentID)
			assert.Equal(t, CauseStarvation, ev.Cause)
			assert.Equal(t, 0.0, ev.Snapshot["hunger"])
			assert.Contains(t, ev.Snapshot, "mentalHealth")
		}
	}
	_, ok := e.Get(1)
	assert.False(t, ok)
	assert.True(t, e.IsAwaitingRespawn(1))
	_, ok = e.Get(2)
	assert.True(t, ok)
}

func TestDeathCauses(t *testing.T) {
	cases := map[NeedType]string{
		Hunger: CauseStarvation,
		Thirst: CauseDehydration,
		Energy: CauseExhaustion,
	}
	for need, cause := range cases {
		t.Run(string(need), func(t *testing.T) {
			e, clock, bus := newTestEngine(t, DefaultConfig())
			e.Spawn(1)
			e.Modify(1, need, -100)
			clock.Advance(time.Second)
			e.Update()
			var got []string
			for _, ev := range bus.Drain() {
				if ev.Kind == events.AgentDeath {
					got = append(got, ev.Cause)
				}
			}
			assert.Equal(t, []string{cause}, got)
		})
	}
}

func TestRespawnRestoresDefaults(t *testing.T) {
	e, clock, bus := newTestEngine(t, DefaultConfig())
	e.Spawn(1)
	e.Modify(1, Thirst, -100)
	clock.Advance(time.Second)
	e.Update()
	require.True(t, e.IsAwaitingRespawn(1))

	clock.Advance(29 * time.Second)
	e.Update()
	_, ok := e.Get(1)
	require.False(t, ok, "respawned before the delay elapsed")

	clock.Advance(time.Second)
	e.Update()
	n, ok := e.Get(1)
	require.True(t, ok)
	assert.Equal(t, SpawnDefaults(), n)
	assert.False(t, e.IsAwaitingRespawn(1))
	assert.Equal(t, 1, events.Count(bus.Drain(), events.AgentRespawned))
}

func TestDeathWithoutRespawnRemovesEntity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowRespawn = false
	e, clock, bus := newTestEngine(t, cfg)
	e.Spawn(1)
	e.Modify(1, Hunger, -100)
	clock.Advance(time.Second)
	e.Update()

	evs := bus.Drain()
	assert.Equal(t, 1, events.Count(evs, events.AgentDeath))
	assert.Equal(t, 1, events.Count(evs, events.EntityRemoved))
	assert.False(t, e.IsAwaitingRespawn(1))

	clock.Advance(time.Hour)
	e.Update()
	_, ok := e.Get(1)
	assert.False(t, ok)
}

func TestZoneBonusesStack(t *testing.T) {
	w := world.New(100, 100)
	w.AddZone(world.Zone{ID: "food-1", Type: world.ZoneFood, Bounds: world.Rect{X: 0, Y: 0, W: 20, H: 20}})
	w.AddZone(world.Zone{ID: "kitchen-1", Type: world.ZoneKitchen, Bounds: world.Rect{X: 5, Y: 5, W: 20, H: 20}})
	w.AddAgent(world.AgentRecord{ID: 1, Position: world.Vec2{X: 10, Y: 10}, Stage: agents.StageAdult, Active: true})

	e, clock, _ := newTestEngine(t, quietConfig(), WithLocator(w))
	e.Spawn(1)
	e.Modify(1, Hunger, -50)
	clock.Advance(time.Second)
	e.Update()

	n, _ := e.Get(1)
	assert.InDelta(t, 50-0.10+2.0+1.5, n.Hunger, 1e-9)
	assert.InDelta(t, 100-0.15, n.Thirst, 1e-9)
}

func TestAgeAndBuffScaleDecay(t *testing.T) {
	w := world.New(100, 100)
	w.AddAgent(world.AgentRecord{ID: 1, Stage: agents.StageElder, Active: true})
	w.AddAgent(world.AgentRecord{ID: 2, Stage: agents.StageChild, Active: true})

	e, clock, _ := newTestEngine(t, quietConfig(),
		WithLocator(w),
		WithDecayModifier(func(id agents.AgentID) float64 {
			if id == 2 {
				return 50 // clamped to 1.3
			}
			return 1
		}))
	e.Spawn(1)
	e.Spawn(2)
	clock.Advance(10 * time.Second)
	e.Update()

	elder, _ := e.Get(1)
	child, _ := e.Get(2)
	assert.InDelta(t, 100-0.10*1.4*10, elder.Hunger, 1e-9)
	assert.InDelta(t, 100-0.10*0.7*1.3*10, child.Hunger, 1e-9)
}

func TestCrossEffectsFromLowEnergy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DecayRates = map[NeedType]float64{}
	e, clock, _ := newTestEngine(t, cfg)
	e.Spawn(1)
	e.Modify(1, Energy, -80) // 20
	clock.Advance(time.Second)
	e.Update()

	n, _ := e.Get(1)
	assert.InDelta(t, 20.0, n.Energy, 1e-9)
	assert.InDelta(t, 70-0.1, n.Social, 1e-9)
	assert.InDelta(t, 70-0.1, n.Fun, 1e-9)
	assert.InDelta(t, 80-0.1, n.MentalHealth, 1e-9)
}

func TestCrossEffectsThirstHitsEnergyTwice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DecayRates = map[NeedType]float64{}
	e, clock, _ := newTestEngine(t, cfg)
	e.Spawn(1)
	e.Modify(1, Thirst, -80) // 20, deficit 10
	clock.Advance(time.Second)
	e.Update()

	n, _ := e.Get(1)
	assert.InDelta(t, 100-0.2, n.Energy, 1e-9)
	assert.InDelta(t, 80-0.1, n.MentalHealth, 1e-9)
}

func TestEmergencyConsumesInventory(t *testing.T) {
	inv := economy.NewStore(20)
	inv.Add(1, world.ResourceFood, 3)
	cfg := quietConfig()
	e, clock, _ := newTestEngine(t, cfg, WithInventory(inv))
	e.Spawn(1)
	e.Modify(1, Hunger, -95) // 5
	clock.Advance(time.Second)
	e.Update()

	n, _ := e.Get(1)
	assert.InDelta(t, 5-0.10+15, n.Hunger, 1e-9)
	assert.Equal(t, 2, inv.Get(1)[world.ResourceFood])
}

func TestEnergyReliefSlowsDrainUntilExhaustion(t *testing.T) {
	e, clock, bus := newTestEngine(t, quietConfig())
	e.Spawn(1)
	e.Modify(1, Energy, -95) // 5
	bus.Drain()

	clock.Advance(time.Second)
	e.Update()
	n, ok := e.Get(1)
	require.True(t, ok)
	assert.InDelta(t, 5-0.08/2, n.Energy, 1e-9)

	prev := n.Energy
	var causes []string
	for i := 0; i < 10 && len(causes) == 0; i++ {
		clock.Advance(time.Minute)
		e.Update()
		for _, ev := range bus.Drain() {
			if ev.Kind == events.AgentDeath {
				causes = append(causes, ev.Cause)
			}
		}
		if cur, alive := e.Get(1); alive {
			assert.LessOrEqual(t, cur.Energy, prev)
			prev = cur.Energy
		}
	}
	assert.Equal(t, []string{CauseExhaustion}, causes)
	assert.True(t, e.IsAwaitingRespawn(1))
}

func TestEmergencyCapsUnitsPerTick(t *testing.T) {
	inv := economy.NewStore(20)
	inv.Add(1, world.ResourceWater, 5)
	cfg := quietConfig()
	cfg.EmergencyThreshold = 60
	e, clock, _ := newTestEngine(t, cfg, WithInventory(inv))
	e.Spawn(1)
	e.Modify(1, Thirst, -99) // 1
	clock.Advance(time.Second)
	e.Update()

	n, _ := e.Get(1)
	assert.InDelta(t, 1-0.15+40, n.Thirst, 1e-9)
	assert.Equal(t, 3, inv.Get(1)[world.ResourceWater])
}

func TestCriticalAndSatisfiedEvents(t *testing.T) {
	e, clock, bus := newTestEngine(t, quietConfig())
	e.Spawn(1)
	e.Modify(1, Social, -60) // 10
	bus.Drain()
	clock.Advance(time.Second)
	e.Update()
	evs := bus.Drain()
	require.Equal(t, 1, events.Count(evs, events.NeedCritical))
	assert.Equal(t, "social", evs[0].Need)

	e.Modify(1, Hunger, -30)
	assert.Zero(t, events.Count(bus.Drain(), events.NeedSatisfied))
	e.Satisfy(1, Hunger, 25)
	assert.Equal(t, 1, events.Count(bus.Drain(), events.NeedSatisfied))
}

func TestUpdateConfigPublishesMergedConfig(t *testing.T) {
	e, _, bus := newTestEngine(t, DefaultConfig())
	mult := 2.5
	off := false
	got, err := e.UpdateConfig(ConfigPatch{
		ZoneBonusMultiplier: &mult,
		AllowRespawn:        &off,
		DecayRates:          map[NeedType]float64{Hunger: 0.3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.ZoneBonusMultiplier)
	assert.Equal(t, 0.3, got.DecayRates[Hunger])
	assert.Equal(t, 0.15, got.DecayRates[Thirst])
	assert.False(t, got.AllowRespawn)

	evs := bus.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, events.ConfigChanged, evs[0].Kind)
	published, ok := evs[0].Config.(Config)
	require.True(t, ok)
	assert.Equal(t, 2.5, published.ZoneBonusMultiplier)

	bad := -1.0
	_, err = e.UpdateConfig(ConfigPatch{ZoneBonusMultiplier: &bad})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, 2.5, e.Config().ZoneBonusMultiplier)

	nan := math.NaN()
	_, err = e.UpdateConfig(ConfigPatch{EmergencyThreshold: &nan})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, 10.0, e.Config().EmergencyThreshold)
	assert.Zero(t, bus.Len())
}

func TestValidateThresholds(t *testing.T) {
	cases := map[string]func(*Config){
		"critical NaN":  func(c *Config) { c.CriticalThreshold = math.NaN() },
		"critical high": func(c *Config) { c.CriticalThreshold = 101 },
		"emergency NaN": func(c *Config) { c.EmergencyThreshold = math.NaN() },
		"emergency low": func(c *Config) { c.EmergencyThreshold = -1 },
		"death NaN":     func(c *Config) { c.DeathThresholds[Energy] = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestRemove(t *testing.T) {
	e, _, bus := newTestEngine(t, DefaultConfig())
	e.Spawn(1)
	assert.True(t, e.Remove(1))
	assert.False(t, e.Remove(1))
	assert.Equal(t, 1, events.Count(bus.Drain(), events.EntityRemoved))
}

func TestBatchMatchesPerAgentStep(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "rows")
		rates := DefaultConfig().rates()
		dt := rapid.Float64Range(0.1, 120).Draw(t, "dt")
		zoneMult := rapid.Float64Range(0, 3).Draw(t, "zoneMult")

		b := NewBatch(n)
		want := make([][NumNeeds]float64, n)
		for r := 0; r < n; r++ {
			for c := 0; c < NumNeeds; c++ {
				b.Rows[r][c] = rapid.Float64Range(0, 100).Draw(t, "v")
				b.Bonus[r][c] = rapid.SampledFrom([]float64{0, 0.5, 2.0}).Draw(t, "bonus")
			}
			b.DecayMult[r] = rapid.SampledFrom([]float64{0.7, 1.0, 1.4 * 1.3}).Draw(t, "mult")
			want[r] = step(b.Rows[r], rates, b.DecayMult[r], b.Bonus[r], zoneMult, dt, true)
		}
		b.ApplyDecay(rates, dt)
		b.ApplyBonuses(zoneMult, dt)
		b.ApplyCrossEffects(dt)
		if diff := cmp.Diff(want, b.Rows, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Fatalf("batch diverged (-per-agent +batch):\n%s", diff)
		}
	})
}

func TestEngineBatchPathIsEquivalent(t *testing.T) {
	build := func(threshold int) (*Engine, *fakeClock, *events.Bus) {
		w := world.New(200, 200)
		w.AddZone(world.Zone{ID: "water-1", Type: world.ZoneWater, Bounds: world.Rect{X: 0, Y: 0, W: 50, H: 50}})
		w.AddZone(world.Zone{ID: "temple-1", Type: world.ZoneTemple, Bounds: world.Rect{X: 40, Y: 40, W: 50, H: 50}})
		inv := economy.NewStore(20)
		cfg := DefaultConfig()
		cfg.BatchThreshold = threshold
		e, clock, bus := newTestEngine(t, cfg, WithLocator(w), WithInventory(inv))
		for i := 1; i <= 12; i++ {
			id := agents.AgentID(i)
			stage := agents.LifeStage(i % 3)
			w.AddAgent(world.AgentRecord{ID: id, Position: world.Vec2{X: float64(i * 8), Y: float64(i * 8)}, Stage: stage, Active: true})
			e.Spawn(id)
			e.Modify(id, Hunger, -float64(i*7))
			e.Modify(id, Energy, -float64(i*6))
			e.Modify(id, Thirst, -float64(i*8))
			if i%4 == 0 {
				inv.Add(id, world.ResourceFood, 2)
			}
		}
		return e, clock, bus
	}

	perAgent, c1, b1 := build(0)
	batched, c2, b2 := build(1)
	for i := 0; i < 30; i++ {
		c1.Advance(3 * time.Second)
		c2.Advance(3 * time.Second)
		perAgent.Update()
		batched.Update()
	}
	if diff := cmp.Diff(perAgent.Snapshot(), batched.Snapshot(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("snapshots diverged (-per-agent +batch):\n%s", diff)
	}
	assert.Equal(t, len(b1.Drain()), len(b2.Drain()))
}

func TestParseNeed(t *testing.T) {
	n, err := ParseNeed("mentalHealth")
	require.NoError(t, err)
	assert.Equal(t, MentalHealth, n)
	_, err = ParseNeed("boredom")
	assert.Error(t, err)
}

func TestClampedRejectsNaN(t *testing.T) {
	n := EntityNeeds{Hunger: math.NaN(), Thirst: 150, Energy: -3}.Clamped()
	assert.Equal(t, 0.0, n.Hunger)
	assert.Equal(t, 100.0, n.Thirst)
	assert.Equal(t, 0.0, n.Energy)
}
