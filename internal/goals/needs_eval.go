package goals

import (
	"math"
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

// Urgency multipliers applied below the lowest step of the priority curve.
var urgency = map[needs.NeedType]float64{
	needs.Thirst:       130,
	needs.Hunger:       120,
	needs.Energy:       80,
	needs.MentalHealth: 70,
}

// Base need values under which the needs evaluator acts.
var baseThresholds = map[needs.NeedType]float64{
	needs.Hunger:       60,
	needs.Thirst:       60,
	needs.Energy:       50,
	needs.MentalHealth: 40,
}

// roleThresholds scale baseThresholds per role. Below 1 means the role
// tolerates the need longer.
var roleThresholds = map[agents.Role]map[needs.NeedType]float64{
	agents.RoleGuard:    {needs.Hunger: 0.85, needs.Energy: 1.15},
	agents.RoleHunter:   {needs.Hunger: 0.9, needs.Thirst: 0.9, needs.Energy: 1.1},
	agents.RoleBuilder:  {needs.Energy: 1.1, needs.Hunger: 1.05},
	agents.RoleGatherer: {needs.Hunger: 0.95},
	agents.RoleHealer:   {needs.MentalHealth: 1.2},
	agents.RoleTrader:   {needs.MentalHealth: 0.9},
	agents.RoleChild:    {needs.Hunger: 1.1, needs.Thirst: 1.1, needs.Energy: 1.2},
}

// Time-of-day and scarcity adjustments.
const (
	nightEnergyFactor  = 1.25
	nightHungerFactor  = 0.9
	lowPerCapita       = 1.0
	scarceNeedFactor   = 0.85
	lowStockpileFill   = 0.2
	lowStockpileFactor = 0.95
)

// Search radii and lifetimes.
const (
	sourceRadius = 80.0
	tradeRadius  = 30.0
	huntRadius   = 40.0
	searchStride = 40.0
	surplusUnits = 2
	survivalTTL  = 45 * time.Second
	desperateTTL = 90 * time.Second
	restTTL      = 2 * time.Minute
)

// NeedPriority maps a need value to goal priority: ≥80→0, ≥60→0.2,
// ≥40→0.5, ≥20→0.8, below 20 → urgency/100.
func NeedPriority(need needs.NeedType, v float64) float64 {
	switch {
	case v >= 80:
		return 0
	case v >= 60:
		return 0.2
	case v >= 40:
		return 0.5
	case v >= 20:
		return 0.8
	}
	u, ok := urgency[need]
	if !ok {
		u = 100
	}
	return 1.0 * u / 100
}

// Threshold returns the value below which need triggers a goal for role,
// adjusted for night and community scarcity.
func Threshold(need needs.NeedType, role agents.Role, night bool, community *world.Community) float64 {
	t := baseThresholds[need]
	if m, ok := roleThresholds[role][need]; ok {
		t *= m
	}
	if night {
		switch need {
		case needs.Energy:
			t *= nightEnergyFactor
		case needs.Hunger:
			t *= nightHungerFactor
		}
	}
	if community != nil {
		switch need {
		case needs.Hunger:
			if community.FoodPerCapita() < lowPerCapita {
				t *= scarceNeedFactor
			}
		case needs.Thirst:
			if community.WaterPerCapita() < lowPerCapita {
				t *= scarceNeedFactor
			}
		}
		if (need == needs.Hunger || need == needs.Thirst) && community.StockpileFill() < lowStockpileFill {
			t *= lowStockpileFactor
		}
	}
	return t
}

// survival needs and where each is remedied.
var remedies = map[needs.NeedType]struct {
	resource world.Resource
	zones    []world.ZoneType
}{
	needs.Hunger: {world.ResourceFood, []world.ZoneType{world.ZoneFood, world.ZoneKitchen}},
	needs.Thirst: {world.ResourceWater, []world.ZoneType{world.ZoneWater, world.ZoneWell}},
}

// NeedsEvaluator covers hunger, thirst, energy and mental health.
type NeedsEvaluator struct{}

func (NeedsEvaluator) Name() string { return "needs" }

func (NeedsEvaluator) Ready(c *Context) bool {
	return c.Needs != nil && c.World != nil
}

func (ev NeedsEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	pos, n, ok := c.self(st.ID)
	if !ok {
		return nil, nil
	}
	role, err := c.World.Role(st.ID)
	if err != nil {
		return nil, err
	}
	var community *world.Community
	if totals, err := c.World.CommunityTotals(); err == nil {
		community = &totals
	}
	inv := c.inventoryOf(st.ID)

	var out []AIGoal
	for _, need := range []needs.NeedType{needs.Thirst, needs.Hunger, needs.Energy, needs.MentalHealth} {
		v, _ := n.Get(need)
		if v >= Threshold(need, role, c.IsNight(), community) {
			continue
		}
		prio := NeedPriority(need, v)
		if prio <= 0 {
			continue
		}
		var g *AIGoal
		switch need {
		case needs.Hunger, needs.Thirst:
			res := remedies[need].resource
			if inv.Has(res, 1) {
				continue // emergency consumption handles carried supplies
			}
			g = ev.survival(c, st, pos, need, prio)
		case needs.Energy:
			g = ev.rest(c, st, pos, prio)
		case needs.MentalHealth:
			g = ev.solace(c, st, pos, prio)
		}
		if g != nil {
			out = append(out, *g)
		}
	}
	return out, nil
}

// survival tries a nearby source, then a trade partner, then prey (hunger
// only), then a desperate search.
func (NeedsEvaluator) survival(c *Context, st *agents.AIState, pos world.Vec2, need needs.NeedType, prio float64) *AIGoal {
	rem := remedies[need]
	data := GoalData{Need: need, Resource: rem.resource}

	node, hasNode := c.World.NearestResource(pos, rem.resource, sourceRadius)
	zone, zoneDist, hasZone := nearestZone(pos, c.World.ZonesOfType(rem.zones...), sourceRadius)
	switch {
	case hasZone && (!hasNode || zoneDist <= world.Distance(pos, node.Position)):
		g := NewGoal(c, TypeSatisfyNeed, prio, survivalTTL, InZone(zone), With(data))
		return &g
	case hasNode:
		data.Action = ActionGather
		g := NewGoal(c, TypeGather, prio, survivalTTL, Ref(node.ID), At(node.Position), With(data))
		return &g
	}

	if partner, ok := tradePartner(c, st.ID, pos, rem.resource); ok {
		data.Action = ActionBarter
		g := NewGoal(c, TypeTrade, prio, survivalTTL, Toward(partner.ID), At(partner.Position), With(data))
		return &g
	}

	if need == needs.Hunger && c.Combat != nil {
		if prey := c.Combat.Animals(pos, huntRadius, world.AnimalPrey); len(prey) > 0 {
			data.Action = ActionHunt
			g := NewGoal(c, TypeHunt, prio, survivalTTL, Ref(prey[0].ID), At(prey[0].Position), With(data))
			return &g
		}
	}

	data.Action = ActionDesperateSearch
	g := NewGoal(c, TypeExplore, prio, desperateTTL,
		Prefixed(PrefixDesperateSearch), At(searchPoint(c, st, pos)), With(data))
	return &g
}

// searchPoint heads for the most promising unvisited zone, or a random
// point one stride away.
func searchPoint(c *Context, st *agents.AIState, pos world.Vec2) world.Vec2 {
	var unvisited []world.Zone
	for _, z := range c.World.Zones() {
		if !st.Memory.HasVisited(z.ID) {
			unvisited = append(unvisited, z)
		}
	}
	if z, ok := SelectZone(c, st, pos, unvisited); ok {
		return z.Center()
	}
	angle := 0.0
	if c.Rand != nil {
		angle = c.Rand.Float64() * 2 * math.Pi
	}
	return pos.Add(world.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(searchStride))
}

// tradePartner finds the nearest agent carrying a surplus of res.
func tradePartner(c *Context, self agents.AgentID, pos world.Vec2, res world.Resource) (world.AgentRecord, bool) {
	if c.Inventory == nil {
		return world.AgentRecord{}, false
	}
	for _, other := range c.World.NearbyAgents(pos, tradeRadius, self) {
		if c.Inventory.Get(other.ID).Has(res, surplusUnits) {
			return other, true
		}
	}
	return world.AgentRecord{}, false
}

func (NeedsEvaluator) rest(c *Context, st *agents.AIState, pos world.Vec2, prio float64) *AIGoal {
	data := GoalData{Need: needs.Energy}
	if z, ok := SelectZone(c, st, pos, c.World.ZonesOfType(world.ZoneRest, world.ZoneShelter)); ok {
		g := NewGoal(c, TypeRest, prio, restTTL, InZone(z), With(data))
		return &g
	}
	g := NewGoal(c, TypeRest, prio, restTTL, At(pos), With(data))
	return &g
}

func (NeedsEvaluator) solace(c *Context, st *agents.AIState, pos world.Vec2, prio float64) *AIGoal {
	z, ok := SelectZone(c, st, pos, c.World.ZonesOfType(world.ZoneTemple, world.ZoneSanctuary, world.ZoneSocial))
	if !ok {
		return nil
	}
	g := NewGoal(c, TypeSatisfyNeed, prio, restTTL, InZone(z), With(GoalData{Need: needs.MentalHealth}))
	return &g
}
