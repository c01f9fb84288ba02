// Package goals turns an agent's situation into candidate goals. Each
// evaluator covers one behavioral domain; the Planner runs them in isolation
// and hands the union to the arbiter.
package goals

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/entropy"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/world"
)

// GoalType tags what a goal asks the executor to do.
type GoalType string

const (
	TypeSatisfyNeed GoalType = "satisfy_need"
	TypeGather      GoalType = "gather"
	TypeTrade       GoalType = "trade"
	TypeHunt        GoalType = "hunt"
	TypeExplore     GoalType = "explore"
	TypeRest        GoalType = "rest"
	TypeFlee        GoalType = "flee"
	TypeAttack      GoalType = "attack"
	TypeAssist      GoalType = "assist"
	TypeSocialize   GoalType = "socialize"
	TypeWork        GoalType = "work"
	TypeQuest       GoalType = "quest"
	TypeInspect     GoalType = "inspect"
	TypeIdle        GoalType = "idle"
)

// ID prefixes that mark sub-cases of a goal type.
const (
	PrefixDeposit         = "deposit_"
	PrefixCraft           = "craft_"
	PrefixConstruct       = "construct_"
	PrefixDesperateSearch = "desperate_search_"
)

// Action hints carried in GoalData.
const (
	ActionDesperateSearch = "desperate_search"
	ActionGather          = "gather"
	ActionBarter          = "barter"
	ActionOffer           = "offer"
	ActionHunt            = "hunt"
	ActionDeposit         = "deposit"
	ActionCraft           = "craft"
	ActionConstruct       = "construct"
)

// GoalData is the free-form payload of a goal.
type GoalData struct {
	Need     needs.NeedType `json:"need,omitempty"`
	Resource world.Resource `json:"resource,omitempty"`
	Action   string         `json:"action,omitempty"`
	Detail   string         `json:"detail,omitempty"` // recipe, quest or remedy id
}

// AIGoal is one candidate intent. Goals are replaced each tick, never edited.
type AIGoal struct {
	ID          string         `json:"id"`
	Type        GoalType       `json:"type"`
	Priority    float64        `json:"priority"`
	TargetAgent agents.AgentID `json:"target_agent,omitempty"`
	TargetRef   string         `json:"target_ref,omitempty"` // node, animal, task or quest id
	TargetPos   *world.Vec2    `json:"target_pos,omitempty"`
	TargetZone  string         `json:"target_zone,omitempty"`
	Data        GoalData       `json:"data"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// Expired reports whether the goal has lapsed at now.
func (g AIGoal) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// HasTarget reports whether the goal points somewhere.
func (g AIGoal) HasTarget() bool {
	return g.TargetPos != nil || g.TargetZone != "" || g.TargetAgent != 0 || g.TargetRef != ""
}

// GoalOption sets an optional field while a goal is built.
type GoalOption func(*AIGoal)

// At targets a position.
func At(p world.Vec2) GoalOption {
	return func(g *AIGoal) { g.TargetPos = &p }
}

// InZone targets a zone and its center.
func InZone(z world.Zone) GoalOption {
	return func(g *AIGoal) {
		c := z.Center()
		g.TargetZone = z.ID
		g.TargetPos = &c
	}
}

// ZoneRef names the zone a goal belongs to without moving its position.
func ZoneRef(id string) GoalOption {
	return func(g *AIGoal) { g.TargetZone = id }
}

// Toward targets another agent.
func Toward(id agents.AgentID) GoalOption {
	return func(g *AIGoal) { g.TargetAgent = id }
}

// Ref targets a non-agent entity by id.
func Ref(id string) GoalOption {
	return func(g *AIGoal) { g.TargetRef = id }
}

// With attaches a payload.
func With(d GoalData) GoalOption {
	return func(g *AIGoal) { g.Data = d }
}

// Prefixed overrides the default "<type>_" id prefix.
func Prefixed(prefix string) GoalOption {
	return func(g *AIGoal) { g.ID = prefix }
}

const minTTL = time.Second

// NewGoal builds a goal created at c.Now that lives for ttl (at least one
// second). The id is drawn from c.Rand so seeded runs are reproducible.
func NewGoal(c *Context, typ GoalType, priority float64, ttl time.Duration, opts ...GoalOption) AIGoal {
	if ttl < minTTL {
		ttl = minTTL
	}
	g := AIGoal{
		ID:        string(typ) + "_",
		Type:      typ,
		Priority:  priority,
		CreatedAt: c.Now,
		ExpiresAt: c.Now.Add(ttl),
	}
	for _, o := range opts {
		o(&g)
	}
	g.ID += newID(c.Rand).String()
	return g
}

func newID(src entropy.Source) uuid.UUID {
	if src != nil {
		if id, err := uuid.NewRandomFromReader(entropy.Reader(src)); err == nil {
			return id
		}
	}
	return uuid.New()
}
