package goals

import (
	"math"
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

const (
	buildRadius     = 120.0
	buildMinEnergy  = 30.0
	depositFillLine = 0.7
	workTTL         = 2 * time.Minute
)

// ── Construction ─────────────────────────────────────────────────────

// ConstructionEvaluator sends rested adults to the nearest open build task.
type ConstructionEvaluator struct{}

func (ConstructionEvaluator) Name() string { return "construction" }

func (ConstructionEvaluator) Ready(c *Context) bool {
	return c.Builds != nil && c.World != nil && c.Needs != nil
}

func (ConstructionEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	pos, n, ok := c.self(st.ID)
	if !ok || n.Energy < buildMinEnergy {
		return nil, nil
	}
	role, err := c.World.Role(st.ID)
	if err != nil {
		return nil, err
	}
	if role == agents.RoleChild {
		return nil, nil
	}
	var best world.BuildTask
	bestDist := math.Inf(1)
	for _, t := range c.Builds.OpenBuildTasks() {
		if d := world.Distance(pos, t.Position); d <= buildRadius && d < bestDist {
			best, bestDist = t, d
		}
	}
	if math.IsInf(bestDist, 1) {
		return nil, nil
	}
	prio := 0.4*(1-bestDist/buildRadius) + 0.3*st.Personality.Conscientiousness
	if role == agents.RoleBuilder {
		prio += 0.2
	}
	data := GoalData{Action: ActionConstruct, Resource: world.ResourceWood, Detail: best.ID}
	return []AIGoal{NewGoal(c, TypeWork, prio, workTTL,
		Prefixed(PrefixConstruct), Ref(best.ID), At(best.Position), With(data), ZoneRef(best.ZoneID))}, nil
}

// ── Deposit ──────────────────────────────────────────────────────────

// DepositEvaluator unloads a nearly full inventory at a storage zone.
type DepositEvaluator struct{}

func (DepositEvaluator) Name() string { return "deposit" }

func (DepositEvaluator) Ready(c *Context) bool {
	return c.Inventory != nil && c.World != nil
}

func (DepositEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	fill := c.Inventory.FillRatio(st.ID)
	if fill < depositFillLine {
		return nil, nil
	}
	pos, ok := c.World.Position(st.ID)
	if !ok {
		return nil, nil
	}
	z, ok := SelectZone(c, st, pos, c.World.ZonesOfType(world.ZoneStorage, world.ZoneMarket))
	if !ok {
		return nil, nil
	}
	res, _ := c.Inventory.Get(st.ID).Largest()
	prio := 0.3 + 0.5*math.Min((fill-depositFillLine)/(1-depositFillLine), 1)
	return []AIGoal{NewGoal(c, TypeWork, prio, workTTL,
		Prefixed(PrefixDeposit), InZone(z), With(GoalData{Action: ActionDeposit, Resource: res}))}, nil
}

// ── Crafting ─────────────────────────────────────────────────────────

// CraftingEvaluator heads to a workshop when a valuable recipe is craftable.
type CraftingEvaluator struct{}

func (CraftingEvaluator) Name() string { return "crafting" }

func (CraftingEvaluator) Ready(c *Context) bool {
	return c.Crafting != nil && c.World != nil
}

func (CraftingEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	recipes := c.Crafting.CraftableRecipes(st.ID)
	if len(recipes) == 0 {
		return nil, nil
	}
	pos, ok := c.World.Position(st.ID)
	if !ok {
		return nil, nil
	}
	role, err := c.World.Role(st.ID)
	if err != nil {
		return nil, err
	}
	r := recipes[0]
	prio := 0.2 + 0.4*r.Value*(0.5+0.5*st.Personality.Conscientiousness)
	if role == agents.RoleCrafter {
		prio += 0.15
	}
	data := GoalData{Action: ActionCraft, Resource: r.Output, Detail: r.ID}
	if z, ok := SelectZone(c, st, pos, c.World.ZonesOfType(world.ZoneWorkshop)); ok {
		return []AIGoal{NewGoal(c, TypeWork, prio, workTTL, Prefixed(PrefixCraft), InZone(z), With(data))}, nil
	}
	return []AIGoal{NewGoal(c, TypeWork, prio, workTTL, Prefixed(PrefixCraft), At(pos), With(data))}, nil
}

// tiredness is shared by evaluators that back off when energy runs low.
func tiredness(n needs.EntityNeeds) float64 {
	return math.Max(0, (50-n.Energy)/50)
}
