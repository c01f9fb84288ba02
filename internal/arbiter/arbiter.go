// Package arbiter ranks candidate goals: tiering, domain weighting, a raw
// priority threshold and Gumbel exploration noise, truncated to a short list.
package arbiter

import (
	"sort"
	"strings"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/entropy"
	"github.com/talgya/needsim/internal/goals"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/priority"
)

// Tier is a coarse importance bucket added to a goal's raw priority.
type Tier int

const (
	TierIdle        Tier = 0
	TierOpportunity Tier = 1
	TierLogistics   Tier = 2
	TierUrgent      Tier = 3
	TierCritical    Tier = 4
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierUrgent:
		return "urgent"
	case TierLogistics:
		return "logistics"
	case TierOpportunity:
		return "opportunity"
	default:
		return "idle"
	}
}

const (
	// TopK is the length of the ranked list handed to the executor.
	TopK = 5
	// DefaultTemperature scales the exploration noise. Zero ranks greedily.
	DefaultTemperature = 0.1

	criticalLine     = 0.8
	urgentLine       = 0.5
	energyUrgentLine = 0.7
)

// Adjuster weights a tier-boosted score. *priority.Manager satisfies it.
type Adjuster interface {
	Adjust(id agents.AgentID, domain priority.Domain, base float64) float64
}

// Arbitrator ranks goals for one agent at a time.
type Arbitrator struct {
	adjuster Adjuster
	src      entropy.Source
	k        int
}

// New creates an arbitrator. A nil adjuster leaves scores unweighted and a
// nil source falls back to crypto randomness.
func New(adjuster Adjuster, src entropy.Source) *Arbitrator {
	if src == nil {
		src = entropy.Crypto{}
	}
	return &Arbitrator{adjuster: adjuster, src: src, k: TopK}
}

// Scored is a ranked goal with the figures that placed it.
type Scored struct {
	Goal   goals.AIGoal    `json:"goal"`
	Tier   Tier            `json:"tier"`
	Domain priority.Domain `json:"domain"`
	// Weighted is tier+priority after domain adjustment, before noise.
	Weighted float64 `json:"weighted"`
	Score    float64 `json:"score"`
}

// Rank returns at most five goals, best first.
func (a *Arbitrator) Rank(gs []goals.AIGoal, st *agents.AIState, minPriority, temperature float64) []goals.AIGoal {
	scored := a.RankScored(gs, st, minPriority, temperature)
	out := make([]goals.AIGoal, len(scored))
	for i, s := range scored {
		out[i] = s.Goal
	}
	return out
}

// RankScored is Rank with the per-goal tier and scores attached. Goals whose
// raw priority is below minPriority never appear. One noise sample is drawn
// per surviving goal, in input order, when temperature is non-zero.
func (a *Arbitrator) RankScored(gs []goals.AIGoal, st *agents.AIState, minPriority, temperature float64) []Scored {
	var id agents.AgentID
	if st != nil {
		id = st.ID
	}
	scored := make([]Scored, 0, len(gs))
	for _, g := range gs {
		if g.Priority < minPriority {
			continue
		}
		tier := TierOf(g)
		domain := DomainOf(g)
		w := float64(tier) + g.Priority
		if a.adjuster != nil {
			w = a.adjuster.Adjust(id, domain, w)
		}
		s := w
		if temperature != 0 {
			s += temperature * entropy.Gumbel(a.src)
		}
		scored = append(scored, Scored{Goal: g, Tier: tier, Domain: domain, Weighted: w, Score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > a.k {
		scored = scored[:a.k]
	}
	return scored
}

// TierOf buckets a goal by type and raw priority.
func TierOf(g goals.AIGoal) Tier {
	switch g.Type {
	case goals.TypeIdle:
		return TierIdle
	case goals.TypeWork:
		if strings.HasPrefix(g.ID, goals.PrefixDeposit) {
			return TierLogistics
		}
	case goals.TypeAssist:
		// the need belongs to the agent being helped
		return TierOpportunity
	}
	switch g.Data.Need {
	case needs.Hunger, needs.Thirst:
		if g.Priority > criticalLine {
			return TierCritical
		}
		if g.Priority > urgentLine {
			return TierUrgent
		}
	case needs.Energy:
		if g.Priority > energyUrgentLine {
			return TierUrgent
		}
	}
	return TierOpportunity
}

// DomainOf maps a goal to the Priority Manager domain that weights it.
func DomainOf(g goals.AIGoal) priority.Domain {
	switch g.Type {
	case goals.TypeSatisfyNeed, goals.TypeGather, goals.TypeHunt:
		return needDomain(g.Data.Need)
	case goals.TypeExplore:
		if strings.HasPrefix(g.ID, goals.PrefixDesperateSearch) {
			return priority.Survival
		}
		return priority.Explore
	case goals.TypeRest:
		return priority.Rest
	case goals.TypeFlee:
		return priority.Flee
	case goals.TypeAttack:
		return priority.Combat
	case goals.TypeWork:
		switch {
		case strings.HasPrefix(g.ID, goals.PrefixDeposit):
			return priority.Logistics
		case strings.HasPrefix(g.ID, goals.PrefixCraft):
			return priority.Crafting
		}
		return priority.Work
	case goals.TypeTrade:
		if g.Data.Action == goals.ActionBarter {
			return needDomain(g.Data.Need)
		}
		return priority.Logistics
	case goals.TypeSocialize, goals.TypeAssist:
		return priority.Social
	case goals.TypeInspect:
		return priority.Inspect
	}
	return priority.Explore
}

func needDomain(n needs.NeedType) priority.Domain {
	switch n {
	case needs.Hunger, needs.Thirst:
		return priority.Survival
	case needs.Energy:
		return priority.Rest
	case "":
		return priority.Survival
	}
	return priority.Social
}
