package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/arbiter"
	"github.com/talgya/needsim/internal/economy"
	"github.com/talgya/needsim/internal/entropy"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/goals"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/persistence"
	"github.com/talgya/needsim/internal/priority"
	"github.com/talgya/needsim/internal/weather"
	"github.com/talgya/needsim/internal/world"
)

// Journal receives what the simulation wants kept. *persistence.DB
// satisfies it.
type Journal interface {
	Flush(tick uint64, evs []events.Event, ds []persistence.Decision) error
	SaveNeeds(tick uint64, snap map[agents.AgentID]needs.EntityNeeds) error
}

// SimClock is the simulated wall clock the needs engine reads.
type SimClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

// NewSimClock starts a clock at start.
func NewSimClock(start time.Time) *SimClock {
	return &SimClock{start: start, now: start}
}

// Now returns the current sim time.
func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Start returns the time the clock started at.
func (c *SimClock) Start() time.Time {
	return c.start
}

// Advance moves the clock forward by d.
func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Options configures a Simulation.
type Options struct {
	Seed        int64 // 0 = random, with crypto-backed exploration noise
	Agents      int
	Step        time.Duration // sim time per tick
	Gen         world.GenConfig
	Needs       needs.Config
	Weights     map[priority.Domain]float64
	MinPriority float64
	Temperature float64
	FlushEvery  uint64 // ticks between journal flushes
	Start       time.Time
}

// DefaultOptions returns a small, seeded demo setup.
func DefaultOptions() Options {
	return Options{
		Seed:        42,
		Agents:      40,
		Step:        10 * time.Second,
		Gen:         world.DefaultGenConfig(),
		Needs:       needs.DefaultConfig(),
		MinPriority: 0.05,
		Temperature: arbiter.DefaultTemperature,
		FlushEvery:  60,
	}
}

// Simulation holds the complete world state and wires systems together.
type Simulation struct {
	World     *world.World
	Needs     *needs.Engine
	Agents    *agents.Store
	Inventory *economy.Store
	Crafting  *economy.Crafting
	Planner   *goals.Planner
	Arbiter   *arbiter.Arbitrator
	Bus       *events.Bus
	Clock     *SimClock
	LastTick  uint64 // Most recent tick processed

	Weather weather.Conditions // today's weather

	// Latest ranked list per agent, best first.
	Plans map[agents.AgentID][]arbiter.Scored

	// Statistics tracked per day.
	Stats SimStats

	rand        entropy.Source
	spawnRand   *rand.Rand
	weatherRand entropy.Source
	mods        weather.Modifiers
	step        time.Duration
	minPriority float64
	temperature float64

	journal    Journal
	flushEvery uint64
	pending    []journalBatch
	unsub      []func()
}

const regrowAmount = 20.0

type journalBatch struct {
	tick      uint64
	events    []events.Event
	decisions []persistence.Decision
}

// SimStats tracks aggregate statistics since the last daily report.
type SimStats struct {
	Population int            `json:"population"`
	Deaths     int            `json:"deaths"`
	Respawns   int            `json:"respawns"`
	Removed    int            `json:"removed"`
	Critical   int            `json:"critical"`
	Satisfied  int            `json:"satisfied"`
	Decisions  int            `json:"decisions"`
	GoalTypes  map[string]int `json:"goal_types"`
	Causes     map[string]int `json:"causes"`
}

func newStats() SimStats {
	return SimStats{GoalTypes: make(map[string]int), Causes: make(map[string]int)}
}

// NewSimulation generates a world, spawns the population and wires every
// component. journal may be nil.
func NewSimulation(opts Options, journal Journal) (*Simulation, error) {
	seed := opts.Seed
	var noise entropy.Source
	if seed == 0 {
		seed = rand.Int63()
		noise = entropy.Crypto{}
	} else {
		noise = entropy.NewSeeded(seed + 1)
	}
	if opts.Step <= 0 {
		opts.Step = time.Second
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC)
	}

	gen := opts.Gen
	gen.Seed = seed
	w := world.Generate(gen)

	clock := NewSimClock(start)
	bus := events.NewBus(0)
	inv := economy.NewStore(economy.DefaultCapacity)
	var s *Simulation
	ne, err := needs.NewEngine(opts.Needs, clock, bus,
		needs.WithLocator(w),
		needs.WithInventory(inv),
		needs.WithDecayModifier(func(id agents.AgentID) float64 { return s.decayModifier(id) }),
	)
	if err != nil {
		return nil, fmt.Errorf("needs engine: %w", err)
	}

	pm := priority.NewManager(w, w, priority.WithWeights(opts.Weights))

	s = &Simulation{
		World:       w,
		Needs:       ne,
		Agents:      agents.NewStore(),
		Inventory:   inv,
		Crafting:    economy.NewCrafting(inv, economy.DefaultRecipes()),
		Planner:     goals.NewPlanner(goals.DefaultEvaluators()...),
		Arbiter:     arbiter.New(pm, noise),
		Bus:         bus,
		Clock:       clock,
		Plans:       make(map[agents.AgentID][]arbiter.Scored),
		Stats:       newStats(),
		rand:        entropy.NewSeeded(seed + 2),
		spawnRand:   rand.New(rand.NewSource(seed + 3)),
		weatherRand: entropy.NewSeeded(seed + 4),
		mods:        weather.Neutral,
		step:        opts.Step,
		minPriority: opts.MinPriority,
		temperature: opts.Temperature,
		journal:     journal,
		flushEvery:  opts.FlushEvery,
	}
	s.subscribe()
	s.populate(agents.NewSpawner(seed), opts.Agents)
	s.refreshCommunity()
	s.rollWeather()

	slog.Info("simulation ready",
		"seed", seed,
		"agents", opts.Agents,
		"zones", len(w.Zones()),
		"step", opts.Step,
	)
	return s, nil
}

// subscribe keeps world and planning state in step with needs lifecycle
// events.
func (s *Simulation) subscribe() {
	s.unsub = append(s.unsub,
		s.Bus.Subscribe(events.AgentDeath, func(e events.Event) {
			id := agents.AgentID(e.AgentID)
			s.World.SetActive(id, false)
			s.Agents.Release(id)
			delete(s.Plans, id)
			s.Stats.Deaths++
			s.Stats.Causes[e.Cause]++
		}),
		s.Bus.Subscribe(events.AgentRespawned, func(e events.Event) {
			id := agents.AgentID(e.AgentID)
			s.World.SetPosition(id, s.randomPoint())
			s.World.UpdateStats(id, func(cs *world.CombatStats) {
				cs.Wounds = 0
				cs.Morale = 60
				cs.Stamina = 100
			})
			s.World.SetActive(id, true)
			s.Stats.Respawns++
		}),
		s.Bus.Subscribe(events.EntityRemoved, func(e events.Event) {
			id := agents.AgentID(e.AgentID)
			s.Agents.Remove(id)
			s.Inventory.Clear(id)
			s.Stats.Removed++
		}),
		s.Bus.Subscribe(events.NeedCritical, func(events.Event) { s.Stats.Critical++ }),
		s.Bus.Subscribe(events.NeedSatisfied, func(events.Event) { s.Stats.Satisfied++ }),
	)
}

func (s *Simulation) populate(sp *agents.Spawner, count int) {
	for _, a := range sp.SpawnPopulation(count) {
		id := a.State.ID
		power := 8 + 4*s.spawnRand.Float64()
		if a.Role.CombatCapable() {
			power += 10
		}
		s.World.AddAgent(world.AgentRecord{
			ID:       id,
			Position: s.randomPoint(),
			Stage:    a.Stage,
			Role:     a.Role,
			Stats:    world.CombatStats{Morale: 70, Stamina: 100, Power: power},
			Active:   true,
		})
		s.Agents.Add(a.State)
		s.Needs.Spawn(id)
		s.Inventory.Add(id, world.ResourceFood, 2)
		s.Inventory.Add(id, world.ResourceWater, 2)
	}
}

func (s *Simulation) randomPoint() world.Vec2 {
	b := s.World.Bounds()
	return world.Vec2{
		X: b.X + s.spawnRand.Float64()*b.W,
		Y: b.Y + s.spawnRand.Float64()*b.H,
	}
}

// Close flushes the journal and drops bus subscriptions.
func (s *Simulation) Close() error {
	for _, u := range s.unsub {
		u()
	}
	s.unsub = nil
	return s.flush()
}

// context builds the evaluator context for the current tick.
func (s *Simulation) context() *goals.Context {
	now := s.Clock.Now()
	return &goals.Context{
		Now:       now,
		TimeOfDay: float64(now.Hour()) + float64(now.Minute())/60,
		Needs:     s.Needs,
		World:     s.World,
		Inventory: s.Inventory,
		Combat:    s.World,
		Builds:    s.World,
		Crafting:  s.Crafting,
		Quests:    s.World,
		Rand:      s.rand,
	}
}

// TickMinute runs every tick: needs update, then plan, rank and act for
// every active agent.
func (s *Simulation) TickMinute(tick uint64) {
	s.LastTick = tick
	s.Clock.Advance(s.step)
	s.Needs.Update()
	s.refreshCommunity()

	c := s.context()
	var decisions []persistence.Decision
	for _, id := range s.World.ActiveAgents() {
		st, ok := s.Agents.Get(id)
		if !ok {
			continue
		}
		candidates := s.Planner.Collect(c, st)
		ranked := s.Arbiter.RankScored(candidates, st, s.minPriority, s.temperature)
		s.Plans[id] = ranked
		if len(ranked) == 0 {
			s.Agents.Release(id)
			continue
		}
		top := ranked[0]
		s.Agents.Commit(id, top.Goal.ID, string(top.Goal.Type), top.Goal.ExpiresAt)
		s.execute(id, top.Goal)

		s.Stats.Decisions++
		s.Stats.GoalTypes[string(top.Goal.Type)]++
		decisions = append(decisions, persistence.Decision{
			Tick:     tick,
			AgentID:  uint64(id),
			GoalID:   top.Goal.ID,
			GoalType: string(top.Goal.Type),
			Tier:     top.Tier.String(),
			Domain:   string(top.Domain),
			Priority: top.Goal.Priority,
			Score:    top.Score,
			Options:  len(candidates),
		})
	}

	s.record(tick, s.Bus.Drain(), decisions)
}

// TickHour runs every sim-hour: the land recovers a little and the needs
// snapshot is saved.
func (s *Simulation) TickHour(tick uint64) {
	s.replenish(tick)
	if s.journal != nil {
		if err := s.journal.SaveNeeds(tick, s.Needs.Snapshot()); err != nil {
			slog.Warn("needs snapshot failed", "tick", tick, "error", err)
		}
	}
}

// TickDay runs every sim-day: daily report, then tomorrow's weather.
func (s *Simulation) TickDay(tick uint64) {
	s.Report(tick)
	s.Stats = newStats()
	s.refreshCommunity()
	s.rollWeather()
}

// SetWeather replaces today's weather.
func (s *Simulation) SetWeather(c weather.Conditions) {
	s.Weather = c
	s.mods = weather.MapToSim(c)
}

func (s *Simulation) rollWeather() {
	s.SetWeather(weather.Roll(weather.SeasonOf(s.Clock.Now()), s.weatherRand))
	slog.Info("weather",
		"season", s.Weather.Season,
		"conditions", s.Weather.Description,
		"temp", fmt.Sprintf("%.1f", s.Weather.Temp),
	)
}

// decayModifier applies the weather to agents caught outdoors. Shelter and
// rest zones keep it out. Called by the needs engine under its lock.
func (s *Simulation) decayModifier(id agents.AgentID) float64 {
	if s == nil {
		return 1
	}
	if pos, ok := s.World.Position(id); ok {
		for _, z := range s.World.ZonesAt(pos) {
			if z.IsOneOf(world.ZoneShelter, world.ZoneRest) {
				return 1
			}
		}
	}
	return s.mods.DecayMod
}

func (s *Simulation) record(tick uint64, evs []events.Event, ds []persistence.Decision) {
	if s.journal == nil {
		return
	}
	if len(evs) > 0 || len(ds) > 0 {
		s.pending = append(s.pending, journalBatch{tick: tick, events: evs, decisions: ds})
	}
	if s.flushEvery == 0 || tick%s.flushEvery == 0 {
		if err := s.flush(); err != nil {
			slog.Warn("journal flush failed", "tick", tick, "error", err)
		}
	}
}

func (s *Simulation) flush() error {
	if s.journal == nil {
		return nil
	}
	for len(s.pending) > 0 {
		b := s.pending[0]
		if err := s.journal.Flush(b.tick, b.events, b.decisions); err != nil {
			return fmt.Errorf("flush tick %d: %w", b.tick, err)
		}
		s.pending = s.pending[1:]
	}
	return nil
}

// refreshCommunity keeps the living population count current.
func (s *Simulation) refreshCommunity() {
	c := s.World.Community()
	c.Population = len(s.World.ActiveAgents())
	s.World.SetCommunity(c)
	s.Stats.Population = c.Population
}

// replenish regrows one food and one water node, scaled by the weather, and
// returns some prey.
func (s *Simulation) replenish(tick uint64) {
	for _, res := range []world.Resource{world.ResourceFood, world.ResourceWater} {
		s.World.AddResourceNode(world.ResourceNode{
			ID:       fmt.Sprintf("%s-regrow-%d", res, tick),
			Resource: res,
			Position: s.randomPoint(),
			Amount:   regrowAmount * s.mods.Regrowth,
		})
	}
	s.World.AddAnimal(world.Animal{
		ID:       fmt.Sprintf("prey-%d", tick),
		Kind:     world.AnimalPrey,
		Position: s.randomPoint(),
		Power:    3,
	})
}
