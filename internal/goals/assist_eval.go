package goals

import (
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

const (
	assistRadius     = 25.0
	assistMinEmpathy = 0.2
	assistMinNeed    = 0.5
	assistTTL        = time.Minute
)

// Ailment is a need category another agent can be helped with.
type Ailment string

const (
	AilmentMedical Ailment = "medical"
	AilmentWater   Ailment = "water"
	AilmentFood    Ailment = "food"
	AilmentRest    Ailment = "rest"
	AilmentSocial  Ailment = "social"
)

var ailmentRemedy = map[Ailment]struct {
	need  needs.NeedType
	zones []world.ZoneType
}{
	AilmentMedical: {needs.MentalHealth, []world.ZoneType{world.ZoneMedical, world.ZoneTemple}},
	AilmentWater:   {needs.Thirst, []world.ZoneType{world.ZoneWater, world.ZoneWell}},
	AilmentFood:    {needs.Hunger, []world.ZoneType{world.ZoneFood, world.ZoneKitchen}},
	AilmentRest:    {needs.Energy, []world.ZoneType{world.ZoneRest, world.ZoneShelter}},
	AilmentSocial:  {needs.Social, []world.ZoneType{world.ZoneSocial, world.ZoneMarket}},
}

// WorstAilment rates another agent's unmet needs, each in [0,1], and returns
// the most severe. Stats may be nil when the combat collaborator has none.
func WorstAilment(n needs.EntityNeeds, stats *world.CombatStats) (Ailment, float64) {
	type rated struct {
		a Ailment
		s float64
	}
	below := func(v, line float64) float64 {
		if v >= line {
			return 0
		}
		return (100 - v) / 100
	}
	rs := []rated{
		{AilmentWater, below(n.Thirst, 40)},
		{AilmentFood, below(n.Hunger, 40)},
		{AilmentRest, below(n.Energy, 30)},
		{AilmentSocial, below(n.Social, 30)},
	}
	if stats != nil {
		rs = append([]rated{{AilmentMedical, stats.Wounds / 100}}, rs...)
		if m := below(stats.Morale, 30); m > rs[3].s {
			rs[3].s = m
		}
	}
	best := rated{}
	for _, r := range rs {
		if r.s > best.s {
			best = r
		}
	}
	return best.a, best.s
}

// AssistEvaluator sends empathetic agents to help the nearest needy neighbor.
type AssistEvaluator struct{}

func (AssistEvaluator) Name() string { return "assist" }

func (AssistEvaluator) Ready(c *Context) bool {
	return c.Needs != nil && c.World != nil && c.Combat != nil
}

func (AssistEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	empathy := st.Personality.Agreeableness
	if empathy < assistMinEmpathy {
		return nil, nil
	}
	pos, ok := c.World.Position(st.ID)
	if !ok {
		return nil, nil
	}
	// NearbyAgents is nearest first, so the first needy neighbor wins.
	for _, other := range c.World.NearbyAgents(pos, assistRadius, st.ID) {
		n, ok := c.Needs.Get(other.ID)
		if !ok {
			continue
		}
		var stats *world.CombatStats
		if s, ok := c.Combat.Stats(other.ID); ok {
			stats = &s
		}
		ail, severity := WorstAilment(n, stats)
		if severity < assistMinNeed {
			continue
		}
		rem := ailmentRemedy[ail]
		data := GoalData{Need: rem.need, Action: "assist_" + string(ail)}
		prio := severity * (0.3 + 0.5*empathy)
		if z, ok := SelectZone(c, st, other.Position, c.World.ZonesOfType(rem.zones...)); ok {
			return []AIGoal{NewGoal(c, TypeAssist, prio, assistTTL, InZone(z), Toward(other.ID), With(data))}, nil
		}
		return []AIGoal{NewGoal(c, TypeAssist, prio, assistTTL, At(other.Position), Toward(other.ID), With(data))}, nil
	}
	return nil, nil
}
