// Package priority weights goal scores by behavioral domain, community
// scarcity and the agent's role.
package priority

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/world"
)

// Domain is a coarse behavioral category.
type Domain string

const (
	Survival  Domain = "survival"
	Work      Domain = "work"
	Social    Domain = "social"
	Crafting  Domain = "crafting"
	Combat    Domain = "combat"
	Flee      Domain = "flee"
	Explore   Domain = "explore"
	Logistics Domain = "logistics"
	Rest      Domain = "rest"
	Inspect   Domain = "inspect"
)

// Domains lists every domain.
var Domains = []Domain{Survival, Flee, Combat, Rest, Crafting, Work, Logistics, Social, Explore, Inspect}

// ErrNoData is returned when a collaborator has nothing to report yet.
var ErrNoData = errors.New("no data")

// DefaultWeights is the static per-domain weight table.
func DefaultWeights() map[Domain]float64 {
	return map[Domain]float64{
		Survival:  1.0,
		Flee:      1.1,
		Combat:    0.7,
		Rest:      0.8,
		Crafting:  0.65,
		Work:      0.6,
		Logistics: 0.55,
		Social:    0.45,
		Explore:   0.3,
		Inspect:   0.25,
	}
}

// Scarcity floors and multipliers.
const (
	WaterFloor = 20.0
	FoodFloor  = 20.0
	WoodFloor  = 10.0
	StoneFloor = 10.0

	survivalScarcity        = 1.3
	logisticsSurvivalScarce = 1.2
	workScarcity            = 1.15
	logisticsBuildScarce    = 1.15

	fighterCombat   = 1.25
	fighterCrafting = 1.15
	civilianFlee    = 1.2
	civilianCombat  = 0.8
)

// CommunityReader supplies aggregate resources. *world.World satisfies it.
type CommunityReader interface {
	CommunityTotals() (world.Community, error)
}

// RoleReader supplies an agent's role. *world.World satisfies it.
type RoleReader interface {
	Role(id agents.AgentID) (agents.Role, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithWeights overrides entries of the weight table.
func WithWeights(w map[Domain]float64) Option {
	return func(m *Manager) {
		for d, v := range w {
			m.weights[d] = v
		}
	}
}

// Manager adjusts base scores. Nil readers skip their step.
type Manager struct {
	weights   map[Domain]float64
	community CommunityReader
	roles     RoleReader
}

// NewManager creates a manager over the given readers.
func NewManager(community CommunityReader, roles RoleReader, opts ...Option) *Manager {
	m := &Manager{
		weights:   DefaultWeights(),
		community: community,
		roles:     roles,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Weights returns a copy of the active weight table.
func (m *Manager) Weights() map[Domain]float64 {
	out := make(map[Domain]float64, len(m.weights))
	for d, v := range m.weights {
		out[d] = v
	}
	return out
}

// Adjust applies domain weight, scarcity and role multipliers to base. A
// failure reading scarcity or role data is logged and base is returned
// unchanged.
func (m *Manager) Adjust(id agents.AgentID, domain Domain, base float64) float64 {
	mult, err := m.Multiplier(id, domain)
	if err != nil {
		slog.Warn("priority adjust failed", "agent", id, "domain", domain, "error", err)
		return base
	}
	return base * mult
}

// Multiplier returns the combined factor Adjust would apply. A community
// with nothing to report contributes no scarcity factor.
func (m *Manager) Multiplier(id agents.AgentID, domain Domain) (float64, error) {
	mult, ok := m.weights[domain]
	if !ok {
		mult = 1.0
	}
	if m.community != nil {
		s, err := m.scarcity(domain)
		switch {
		case errors.Is(err, ErrNoData):
			slog.Debug("scarcity skipped", "agent", id, "domain", domain, "error", err)
		case err != nil:
			return 0, fmt.Errorf("scarcity: %w", err)
		default:
			mult *= s
		}
	}
	if m.roles != nil {
		role, err := m.roles.Role(id)
		if err != nil {
			return 0, fmt.Errorf("role: %w", err)
		}
		mult *= roleMultiplier(role, domain)
	}
	return mult, nil
}

func (m *Manager) scarcity(domain Domain) (float64, error) {
	c, err := m.community.CommunityTotals()
	if err != nil {
		return 0, err
	}
	if c.Population == 0 && c.StockpileCapacity == 0 {
		return 0, ErrNoData
	}
	mult := 1.0
	if c.Water < WaterFloor || c.Food < FoodFloor {
		switch domain {
		case Survival:
			mult *= survivalScarcity
		case Logistics:
			mult *= logisticsSurvivalScarce
		}
	}
	if c.Wood < WoodFloor || c.Stone < StoneFloor {
		switch domain {
		case Work:
			mult *= workScarcity
		case Logistics:
			mult *= logisticsBuildScarce
		}
	}
	return mult, nil
}

func roleMultiplier(role agents.Role, domain Domain) float64 {
	if role.CombatCapable() {
		switch domain {
		case Combat:
			return fighterCombat
		case Crafting:
			return fighterCrafting
		}
		return 1
	}
	switch domain {
	case Flee:
		return civilianFlee
	case Combat:
		return civilianCombat
	}
	return 1
}
