package needs

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/economy"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/world"
)

// Clock supplies wall time to the engine.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Locator answers where an agent is and how old it is.
// *world.World satisfies it.
type Locator interface {
	Position(id agents.AgentID) (world.Vec2, bool)
	LifeStage(id agents.AgentID) (agents.LifeStage, bool)
	ZonesAt(p world.Vec2) []world.Zone
}

// Inventory is the slice of the inventory collaborator used for emergency
// consumption. *economy.Store satisfies it.
type Inventory interface {
	Get(id agents.AgentID) economy.Inventory
	Consume(id agents.AgentID, res world.Resource, qty int) int
}

// DecayModifier returns an external favor/buff multiplier for an agent's
// decay. Values are clamped to [0, MaxBuffModifier].
type DecayModifier func(id agents.AgentID) float64

// Option configures an Engine.
type Option func(*Engine)

// WithLocator wires position, life stage and zone lookup.
func WithLocator(l Locator) Option {
	return func(e *Engine) { e.locator = l }
}

// WithInventory wires emergency consumption.
func WithInventory(inv Inventory) Option {
	return func(e *Engine) { e.inventory = inv }
}

// WithDecayModifier wires the buff multiplier.
func WithDecayModifier(m DecayModifier) Option {
	return func(e *Engine) { e.modifier = m }
}

// Engine owns every agent's needs.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	clock     Clock
	bus       *events.Bus
	locator   Locator
	inventory Inventory
	modifier  DecayModifier

	records  map[agents.AgentID]EntityNeeds
	respawns map[agents.AgentID]time.Time
	lastRun  time.Time
}

// NewEngine creates an engine. A nil clock uses SystemClock; a nil bus
// creates a private one.
func NewEngine(cfg Config, clock Clock, bus *events.Bus, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if bus == nil {
		bus = events.NewBus(0)
	}
	e := &Engine{
		cfg:      cfg.Clone(),
		clock:    clock,
		bus:      bus,
		records:  make(map[agents.AgentID]EntityNeeds),
		respawns: make(map[agents.AgentID]time.Time),
		lastRun:  clock.Now(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Bus returns the bus events are published on.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Spawn creates a record with spawn defaults. It returns false when the
// agent already has one.
func (e *Engine) Spawn(id agents.AgentID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.records[id]; ok {
		return false
	}
	delete(e.respawns, id)
	e.records[id] = SpawnDefaults()
	return true
}

// Get returns the current needs of id.
func (e *Engine) Get(id agents.AgentID) (EntityNeeds, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.records[id]
	return n, ok
}

// Snapshot copies every live record.
func (e *Engine) Snapshot() map[agents.AgentID]EntityNeeds {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[agents.AgentID]EntityNeeds, len(e.records))
	for id, n := range e.records {
		out[id] = n
	}
	return out
}

// Len returns the number of live records.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

// Satisfy raises need by amount. Returns false for an unknown agent or need,
// or a negative or NaN amount.
func (e *Engine) Satisfy(id agents.AgentID, need NeedType, amount float64) bool {
	if amount < 0 {
		return false
	}
	return e.Modify(id, need, amount)
}

// Modify adds delta to need, clamping to [0,100]. Returns false for an
// unknown agent or need, or a NaN delta.
func (e *Engine) Modify(id agents.AgentID, need NeedType, delta float64) bool {
	if math.IsNaN(delta) || !need.Valid() {
		return false
	}
	e.mu.Lock()
	rec, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	before, _ := rec.Get(need)
	rec = rec.With(need, before+delta)
	e.records[id] = rec
	after, _ := rec.Get(need)
	now := e.clock.Now()
	e.mu.Unlock()

	if need == Hunger && crossedSatisfied(before, after) {
		e.bus.Publish(events.Event{Kind: events.NeedSatisfied, AgentID: uint64(id), Need: string(Hunger), Value: after, Timestamp: now})
	}
	return true
}

// Remove deletes id permanently, cancelling any pending respawn.
func (e *Engine) Remove(id agents.AgentID) bool {
	e.mu.Lock()
	_, live := e.records[id]
	_, pending := e.respawns[id]
	delete(e.records, id)
	delete(e.respawns, id)
	now := e.clock.Now()
	e.mu.Unlock()
	if !live && !pending {
		return false
	}
	e.bus.Publish(events.Event{Kind: events.EntityRemoved, AgentID: uint64(id), Timestamp: now})
	return true
}

// IsAwaitingRespawn reports whether id is dead and scheduled to return.
func (e *Engine) IsAwaitingRespawn(id agents.AgentID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.respawns[id]
	return ok
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Clone()
}

// UpdateConfig merges p into the active configuration and publishes
// config_changed with the result.
func (e *Engine) UpdateConfig(p ConfigPatch) (Config, error) {
	e.mu.Lock()
	merged := e.cfg.Merge(p)
	if err := merged.Validate(); err != nil {
		e.mu.Unlock()
		return e.cfg.Clone(), err
	}
	e.cfg = merged
	now := e.clock.Now()
	e.mu.Unlock()

	e.bus.Publish(events.Event{Kind: events.ConfigChanged, Config: merged.Clone(), Timestamp: now})
	return merged.Clone(), nil
}

// Update advances every live agent by the wall time elapsed since the last
// run. It does nothing until UpdateInterval has passed and reports whether
// any work was done.
func (e *Engine) Update() bool {
	e.mu.Lock()
	now := e.clock.Now()
	elapsed := now.Sub(e.lastRun)
	if elapsed <= 0 || elapsed < e.cfg.UpdateInterval {
		e.mu.Unlock()
		return false
	}
	e.lastRun = now
	dt := elapsed.Seconds()

	// Respawns run after the step so a returning agent starts from exact
	// spawn defaults.
	out := e.advance(now, dt)
	out = append(out, e.respawnDue(now)...)
	e.mu.Unlock()

	for _, ev := range out {
		e.bus.Publish(ev)
	}
	return true
}

// advance runs one step for every live record. Caller holds mu.
func (e *Engine) advance(now time.Time, dt float64) []events.Event {
	ids := make([]agents.AgentID, 0, len(e.records))
	for id := range e.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	b := NewBatch(len(ids))
	prev := make([][NumNeeds]float64, len(ids))
	for i, id := range ids {
		b.Rows[i] = e.records[id].Vector()
		prev[i] = b.Rows[i]
		b.DecayMult[i] = e.decayMultiplier(id)
		b.Bonus[i] = e.bonusVector(id)
	}

	rates := e.cfg.rates()
	if e.cfg.BatchThreshold > 0 && len(ids) >= e.cfg.BatchThreshold {
		b.ApplyDecay(rates, dt)
		b.ApplyBonuses(e.cfg.ZoneBonusMultiplier, dt)
		if e.cfg.CrossEffects {
			b.ApplyCrossEffects(dt)
		}
	} else {
		for i := range ids {
			b.Rows[i] = step(b.Rows[i], rates, b.DecayMult[i], b.Bonus[i], e.cfg.ZoneBonusMultiplier, dt, e.cfg.CrossEffects)
		}
	}

	var out []events.Event
	for i, id := range ids {
		row := b.Rows[i]
		e.emergency(id, &row, prev[i])
		if cause, dead := e.deathCause(row); dead {
			out = append(out, e.kill(id, FromVector(row), cause, now)...)
			continue
		}
		e.records[id] = FromVector(row)
		out = append(out, e.thresholdEvents(id, prev[i], row, now)...)
	}
	return out
}

// step is the per-agent path: decay, zone bonuses, cross-effects.
func step(row, rates [NumNeeds]float64, mult float64, bonus [NumNeeds]float64, zoneMult, dt float64, cross bool) [NumNeeds]float64 {
	for c := range row {
		row[c] = decayed(row[c], rates[c], mult, dt)
	}
	for c := range row {
		row[c] = boosted(row[c], bonus[c], zoneMult, dt)
	}
	if cross {
		crossEffects(row[:], dt)
	}
	return row
}

func (e *Engine) decayMultiplier(id agents.AgentID) float64 {
	stage := agents.StageAdult
	if e.locator != nil {
		if s, ok := e.locator.LifeStage(id); ok {
			stage = s
		}
	}
	buff := 1.0
	if e.modifier != nil {
		buff = clamp(e.modifier(id), 0, MaxBuffModifier)
	}
	return AgeMultiplier(stage) * buff
}

func (e *Engine) bonusVector(id agents.AgentID) [NumNeeds]float64 {
	if e.locator == nil {
		return [NumNeeds]float64{}
	}
	pos, ok := e.locator.Position(id)
	if !ok {
		return [NumNeeds]float64{}
	}
	return zoneBonusVector(e.locator.ZonesAt(pos))
}

func (e *Engine) thresholdEvents(id agents.AgentID, before, after [NumNeeds]float64, now time.Time) []events.Event {
	var out []events.Event
	for c, v := range after {
		if v < e.cfg.CriticalThreshold {
			out = append(out, events.Event{Kind: events.NeedCritical, AgentID: uint64(id), Need: string(All[c]), Value: v, Timestamp: now})
		}
	}
	h := Hunger.Index()
	if crossedSatisfied(before[h], after[h]) {
		out = append(out, events.Event{Kind: events.NeedSatisfied, AgentID: uint64(id), Need: string(Hunger), Value: after[h], Timestamp: now})
	}
	return out
}

// SatisfiedLine is the hunger value above which a need_satisfied event fires.
const SatisfiedLine = 90.0

func crossedSatisfied(before, after float64) bool {
	return before <= SatisfiedLine && after > SatisfiedLine
}
