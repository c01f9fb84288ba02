package goals

import (
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

const (
	questTTL       = 3 * time.Minute
	questMinScore  = 0.3
	offerRadius    = 40.0
	offerSurplus   = 5
	offerTTL       = time.Minute
	activeQuestPri = 0.5
)

// ── Quests ───────────────────────────────────────────────────────────

// QuestEvaluator keeps agents on their accepted quest, or proposes taking
// the most appealing posted one.
type QuestEvaluator struct{}

func (QuestEvaluator) Name() string { return "quest" }

func (QuestEvaluator) Ready(c *Context) bool {
	return c.Quests != nil && c.World != nil && c.Needs != nil
}

func (QuestEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	pos, n, ok := c.self(st.ID)
	if !ok {
		return nil, nil
	}
	tired := tiredness(n)

	if active := c.Quests.ActiveQuests(st.ID); len(active) > 0 {
		q := nearestQuest(pos, active)
		prio := activeQuestPri * (1 - 0.5*tired)
		return []AIGoal{questGoal(c, q, prio)}, nil
	}

	var best world.Quest
	bestScore := 0.0
	for _, q := range c.Quests.AvailableQuests() {
		if s := QuestAppeal(st.Personality, q); s > bestScore {
			best, bestScore = q, s
		}
	}
	if bestScore < questMinScore {
		return nil, nil
	}
	return []AIGoal{questGoal(c, best, bestScore*0.6*(1-0.5*tired))}, nil
}

// QuestAppeal scores a posted quest: open agents like rewards, conscientious
// ones discount difficulty less.
func QuestAppeal(p agents.Personality, q world.Quest) float64 {
	reward := q.Reward / (q.Reward + 10)
	risk := q.Difficulty * (1 - 0.5*p.Conscientiousness)
	return reward*(0.5+0.5*p.Openness) - 0.4*risk + 0.2
}

func nearestQuest(pos world.Vec2, qs []world.Quest) world.Quest {
	best := qs[0]
	for _, q := range qs[1:] {
		if world.Distance(pos, q.Position) < world.Distance(pos, best.Position) {
			best = q
		}
	}
	return best
}

func questGoal(c *Context, q world.Quest, prio float64) AIGoal {
	return NewGoal(c, TypeQuest, prio, questTTL, Ref(q.ID), At(q.Position),
		With(GoalData{Action: "quest", Detail: q.ID}), ZoneRef(q.ZoneID))
}

// ── Trade ────────────────────────────────────────────────────────────

// TradeEvaluator offers a carried surplus to a nearby agent who has none.
type TradeEvaluator struct{}

func (TradeEvaluator) Name() string { return "trade" }

func (TradeEvaluator) Ready(c *Context) bool {
	return c.Inventory != nil && c.World != nil
}

func (TradeEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	res, qty := c.Inventory.Get(st.ID).Largest()
	if qty < offerSurplus {
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
	for _, other := range c.World.NearbyAgents(pos, offerRadius, st.ID) {
		if c.Inventory.Get(other.ID).Has(res, 1) {
			continue
		}
		prio := 0.2 + 0.3*st.Personality.Extraversion
		if role == agents.RoleTrader {
			prio += 0.15
		}
		data := GoalData{Action: ActionOffer, Resource: res}
		return []AIGoal{NewGoal(c, TypeTrade, prio, offerTTL, Toward(other.ID), At(other.Position), With(data))}, nil
	}
	return nil, nil
}
