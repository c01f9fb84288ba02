package goals

import (
	"math"
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

// Threat handling tuning.
const (
	threatBaseRadius   = 12.0
	hostilityThreshold = 0.5
	panicBase          = 30.0
	panicNeuroticism   = 40.0
	fleeDistance       = 15.0
	fleeTTL            = 10 * time.Second
	attackTTL          = 20 * time.Second
)

// Minimum power advantage each strategy needs before engaging a hostile.
var engageAt = map[agents.CombatStrategy]float64{
	agents.StrategyTitForTat: 0.9,
	agents.StrategyBully:     1.2,
}

// nonCombatantHandicap raises the bar for roles that do not fight.
const nonCombatantHandicap = 0.5

// ThreatRadius is how far an agent watches for threats.
func ThreatRadius(p agents.Personality) float64 {
	return threatBaseRadius * (0.75 + 0.5*p.Neuroticism)
}

// PanicThreshold is the morale under which non-combatants always flee.
func PanicThreshold(p agents.Personality) float64 {
	return panicBase + panicNeuroticism*p.Neuroticism
}

// FleePoint returns a point fleeDistance away from threat along the line
// from threat through pos.
func FleePoint(pos, threat world.Vec2) world.Vec2 {
	away := pos.Sub(threat).Normalized()
	if away.Len() == 0 {
		away = world.Vec2{X: 1}
	}
	return pos.Add(away.Scale(fleeDistance))
}

type threat struct {
	agent    agents.AgentID
	animal   string
	pos      world.Vec2
	power    float64
	morale   float64
	distance float64
}

// CombatEvaluator chooses between fleeing and engaging the nearest threat.
type CombatEvaluator struct{}

func (CombatEvaluator) Name() string { return "combat" }

func (CombatEvaluator) Ready(c *Context) bool {
	return c.Combat != nil && c.World != nil
}

func (CombatEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	pos, ok := c.World.Position(st.ID)
	if !ok {
		return nil, nil
	}
	radius := ThreatRadius(st.Personality)
	t, ok := nearestThreat(c, st.ID, pos, radius)
	if !ok {
		return nil, nil
	}
	me, _ := c.Combat.Stats(st.ID)
	role, err := c.World.Role(st.ID)
	if err != nil {
		return nil, err
	}

	closeness := 1 - math.Min(t.distance/radius, 1)
	if shouldFlee(st, role, me, t) {
		g := NewGoal(c, TypeFlee, 0.9+0.3*closeness, fleeTTL, At(FleePoint(pos, t.pos)), threatTarget(t))
		return []AIGoal{g}, nil
	}
	adv := advantage(me, t)
	prio := 0.6 + 0.2*math.Min(math.Max(adv-1, 0), 1)
	g := NewGoal(c, TypeAttack, prio, attackTTL, At(t.pos), threatTarget(t))
	return []AIGoal{g}, nil
}

func threatTarget(t threat) GoalOption {
	if t.animal != "" {
		return Ref(t.animal)
	}
	return Toward(t.agent)
}

// nearestThreat returns the closer of the nearest hostile agent and the
// nearest predator within radius.
func nearestThreat(c *Context, self agents.AgentID, pos world.Vec2, radius float64) (threat, bool) {
	var best threat
	found := false
	for _, id := range c.Combat.Enemies(self, hostilityThreshold) {
		rec, ok := c.Combat.Agent(id)
		if !ok || !rec.Active {
			continue
		}
		d := world.Distance(pos, rec.Position)
		if d > radius || (found && d >= best.distance) {
			continue
		}
		best = threat{agent: id, pos: rec.Position, power: rec.Stats.Power, morale: rec.Stats.Morale, distance: d}
		found = true
	}
	if preds := c.Combat.Animals(pos, radius, world.AnimalPredator); len(preds) > 0 {
		p := preds[0]
		d := world.Distance(pos, p.Position)
		if !found || d < best.distance {
			best = threat{animal: p.ID, pos: p.Position, power: p.Power, morale: 100, distance: d}
			found = true
		}
	}
	return best, found
}

// advantage is morale-weighted power over the threat's.
func advantage(me world.CombatStats, t threat) float64 {
	mine := me.Power * me.Morale / 100
	theirs := t.power * t.morale / 100
	if theirs <= 0 {
		theirs = 1e-6
	}
	return mine / theirs
}

func shouldFlee(st *agents.AIState, role agents.Role, me world.CombatStats, t threat) bool {
	combatant := role.CombatCapable()
	if !combatant && me.Morale < PanicThreshold(st.Personality) {
		return true
	}
	if t.animal != "" {
		// Predators are engaged only by fighters who out-muscle them.
		return !combatant || advantage(me, t) < 1
	}
	bar, engages := engageAt[st.Strategy]
	if !engages {
		return true
	}
	if !combatant {
		bar += nonCombatantHandicap
	}
	return advantage(me, t) < bar
}
