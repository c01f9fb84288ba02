package goals

import (
	"time"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

const (
	socialRadius = 30.0
	socialTTL    = 90 * time.Second
)

// softNeeds are the comfort needs the social evaluator looks after, each
// with the value under which it acts and where it is remedied.
var softNeeds = []struct {
	need  needs.NeedType
	line  float64
	zones []world.ZoneType
}{
	{needs.Social, 40, []world.ZoneType{world.ZoneSocial, world.ZoneMarket}},
	{needs.Fun, 35, []world.ZoneType{world.ZoneEntertainment, world.ZoneSocial}},
	{needs.Hygiene, 30, []world.ZoneType{world.ZoneHygiene, world.ZoneBath}},
}

// SocialEvaluator handles social, fun and hygiene. It emits at most one
// goal, for the need furthest below its line.
type SocialEvaluator struct{}

func (SocialEvaluator) Name() string { return "social" }

func (SocialEvaluator) Ready(c *Context) bool {
	return c.Needs != nil && c.World != nil
}

func (SocialEvaluator) Evaluate(c *Context, st *agents.AIState) ([]AIGoal, error) {
	pos, n, ok := c.self(st.ID)
	if !ok {
		return nil, nil
	}
	worst, deficit := -1, 0.0
	for i, s := range softNeeds {
		v, _ := n.Get(s.need)
		if d := (s.line - v) / s.line; d > deficit {
			worst, deficit = i, d
		}
	}
	if worst < 0 {
		return nil, nil
	}
	s := softNeeds[worst]
	trait := st.Personality.Extraversion
	if s.need == needs.Hygiene {
		trait = st.Personality.Conscientiousness
	}
	prio := (0.2 + 0.6*deficit) * (0.6 + 0.4*trait)
	data := GoalData{Need: s.need}

	if s.need == needs.Social {
		if near := c.World.NearbyAgents(pos, socialRadius, st.ID); len(near) > 0 {
			return []AIGoal{NewGoal(c, TypeSocialize, prio, socialTTL, Toward(near[0].ID), At(near[0].Position), With(data))}, nil
		}
	}
	if z, ok := SelectZone(c, st, pos, c.World.ZonesOfType(s.zones...)); ok {
		typ := TypeSatisfyNeed
		if s.need == needs.Social {
			typ = TypeSocialize
		}
		return []AIGoal{NewGoal(c, typ, prio, socialTTL, InZone(z), With(data))}, nil
	}
	return nil, nil
}
