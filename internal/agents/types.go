// Package agents provides the planning-side agent model: personality,
// roles, life stages, combat strategy, and the per-agent AIState with its
// learned zone memory.
package agents

import "time"

// AgentID is a unique identifier for an agent. Stable for the agent's life,
// reused across respawns.
type AgentID uint64

// LifeStage buckets age for need-decay scaling.
type LifeStage uint8

const (
	StageAdult LifeStage = iota
	StageChild
	StageElder
)

// String returns the life stage name.
func (s LifeStage) String() string {
	switch s {
	case StageChild:
		return "child"
	case StageElder:
		return "elder"
	default:
		return "adult"
	}
}

// Personality holds the five trait scalars, each in [0,1].
// Immutable once the agent is spawned.
type Personality struct {
	Openness          float64 `json:"openness" yaml:"openness"`
	Conscientiousness float64 `json:"conscientiousness" yaml:"conscientiousness"`
	Extraversion      float64 `json:"extraversion" yaml:"extraversion"`
	Agreeableness     float64 `json:"agreeableness" yaml:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism" yaml:"neuroticism"`
}

// Clamped returns p with every trait forced into [0,1].
func (p Personality) Clamped() Personality {
	c := func(v float64) float64 {
		if v < 0 || v != v {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Personality{
		Openness:          c(p.Openness),
		Conscientiousness: c(p.Conscientiousness),
		Extraversion:      c(p.Extraversion),
		Agreeableness:     c(p.Agreeableness),
		Neuroticism:       c(p.Neuroticism),
	}
}

// CombatStrategy decides how an agent reacts to hostiles.
type CombatStrategy string

const (
	StrategyPeaceful  CombatStrategy = "peaceful"
	StrategyTitForTat CombatStrategy = "tit_for_tat"
	StrategyBully     CombatStrategy = "bully"
)

// Commitment is the goal an agent is currently executing.
type Commitment struct {
	GoalID    string    `json:"goal_id"`
	GoalType  string    `json:"goal_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AIState is the planning subsystem's per-agent record.
type AIState struct {
	ID          AgentID        `json:"id"`
	Personality Personality    `json:"personality"`
	Strategy    CombatStrategy `json:"strategy"`
	Memory      Memory         `json:"memory"`
	Current     *Commitment    `json:"current,omitempty"`
}

// NewAIState creates an AIState with empty memory.
func NewAIState(id AgentID, p Personality, strategy CombatStrategy) *AIState {
	if strategy == "" {
		strategy = StrategyPeaceful
	}
	return &AIState{
		ID:          id,
		Personality: p.Clamped(),
		Strategy:    strategy,
		Memory:      NewMemory(),
	}
}
