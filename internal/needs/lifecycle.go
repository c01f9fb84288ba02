package needs

import (
	"log/slog"
	"sort"
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/world"
)

// Death causes carried by agent_death events.
const (
	CauseStarvation  = "starvation"
	CauseDehydration = "dehydration"
	CauseExhaustion  = "exhaustion"
)

var causes = map[NeedType]string{
	Hunger: CauseStarvation,
	Thirst: CauseDehydration,
	Energy: CauseExhaustion,
}

// Emergency fallback tuning.
const (
	emergencyUnitCap   = 2
	emergencyFoodGain  = 15.0
	emergencyWaterGain = 20.0

	// Share of this step's energy loss won back below the emergency line.
	emergencyEnergyRelief = 0.5
)

// emergency consumes carried food and water for needs below the emergency
// threshold and slows the energy drain. Relief never lifts energy above its
// value before the step, and stops once energy reaches its death threshold.
// Caller holds mu.
func (e *Engine) emergency(id agents.AgentID, row *[NumNeeds]float64, before [NumNeeds]float64) {
	line := e.cfg.EmergencyThreshold
	if e.inventory != nil {
		eatFrom(e.inventory, id, world.ResourceFood, &row[Hunger.Index()], line, emergencyFoodGain)
		eatFrom(e.inventory, id, world.ResourceWater, &row[Thirst.Index()], line, emergencyWaterGain)
	}
	c := Energy.Index()
	en, prev := row[c], before[c]
	if en >= line || en >= prev {
		return
	}
	if limit, ok := e.cfg.DeathThresholds[Energy]; ok && en <= limit {
		return
	}
	row[c] = clamp(en+emergencyEnergyRelief*(prev-en), MinValue, MaxValue)
}

func eatFrom(inv Inventory, id agents.AgentID, res world.Resource, v *float64, line, gain float64) {
	for used := 0; used < emergencyUnitCap && *v < line; used++ {
		if inv.Consume(id, res, 1) == 0 {
			return
		}
		*v = clamp(*v+gain, MinValue, MaxValue)
	}
}

// deathCause returns the first vital need at or below its death threshold.
func (e *Engine) deathCause(row [NumNeeds]float64) (string, bool) {
	for c, n := range All {
		limit, ok := e.cfg.DeathThresholds[n]
		if !ok || row[c] > limit {
			continue
		}
		if cause, ok := causes[n]; ok {
			return cause, true
		}
		return string(n) + "_collapse", true
	}
	return "", false
}

// kill removes id from the live table and schedules or finalizes it.
// Caller holds mu.
func (e *Engine) kill(id agents.AgentID, last EntityNeeds, cause string, now time.Time) []events.Event {
	delete(e.records, id)
	out := []events.Event{{
		Kind:      events.AgentDeath,
		AgentID:   uint64(id),
		Cause:     cause,
		Snapshot:  last.Snapshot(),
		Timestamp: now,
	}}
	if e.cfg.AllowRespawn {
		e.respawns[id] = now.Add(e.cfg.RespawnDelay)
		slog.Info("agent died", "agent", id, "cause", cause, "respawn_in", e.cfg.RespawnDelay)
		return out
	}
	slog.Info("agent died", "agent", id, "cause", cause)
	return append(out, events.Event{Kind: events.EntityRemoved, AgentID: uint64(id), Timestamp: now})
}

// respawnDue restores every agent whose delay has elapsed. Caller holds mu.
func (e *Engine) respawnDue(now time.Time) []events.Event {
	var due []agents.AgentID
	for id, at := range e.respawns {
		if !now.Before(at) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	out := make([]events.Event, 0, len(due))
	for _, id := range due {
		delete(e.respawns, id)
		e.records[id] = SpawnDefaults()
		out = append(out, events.Event{Kind: events.AgentRespawned, AgentID: uint64(id), Timestamp: now})
	}
	return out
}
