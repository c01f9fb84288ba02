package goals

import (
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

const (
	noticeRadius = 25.0
	inspectTTL   = 45 * time.Second
	exploreTTL   = 90 * time.Second
	idleTTL      = 30 * time.Second
	idlePriority = 0.05
)

// AttentionEvaluator drives curiosity: inspect unvisited zones close by,
// otherwise explore the best unvisited zone, otherwise idle.
type AttentionEvaluator struct{}

func (AttentionEvaluator) Name() string { return "attention" }

func (AttentionEvaluator) Ready(c *Context) bool {
	return c.World != nil
}

func (AttentionEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	pos, ok := c.World.Position(st.ID)
	if !ok {
		return nil, nil
	}
	openness := st.Personality.Openness

	var unvisited []world.Zone
	for _, z := range c.World.Zones() {
		if !st.Memory.HasVisited(z.ID) {
			unvisited = append(unvisited, z)
		}
	}
	if z, _, ok := nearestZone(pos, unvisited, noticeRadius); ok {
		return []AIGoal{NewGoal(c, TypeInspect, 0.2+0.3*openness, inspectTTL, InZone(z))}, nil
	}
	if z, ok := SelectZone(c, st, pos, unvisited); ok {
		return []AIGoal{NewGoal(c, TypeExplore, 0.15+0.35*openness, exploreTTL, InZone(z))}, nil
	}
	return []AIGoal{NewGoal(c, TypeIdle, idlePriority, idleTTL, At(pos))}, nil
}
