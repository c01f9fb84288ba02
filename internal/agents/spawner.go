// Agent spawning. Creates the initial population with roles, life stages,
// personalities and combat strategies.
package agents

import (
	"math/rand"
)

// Spawned is everything the spawner decides about a new agent. The planning
// state goes to the Store; role and life stage belong to the world record.
type Spawned struct {
	State *AIState
	Role  Role
	Stage LifeStage
}

// Spawner creates agents for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
	}
}

// SetNextID sets the next agent ID to be issued.
func (s *Spawner) SetNextID(id AgentID) {
	s.nextID = id
}

// SpawnPopulation creates count agents.
func (s *Spawner) SpawnPopulation(count int) []Spawned {
	out := make([]Spawned, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.SpawnOne())
	}
	return out
}

// SpawnOne creates a single agent.
func (s *Spawner) SpawnOne() Spawned {
	id := s.nextID
	s.nextID++

	stage := s.weightedStage()
	role := s.roleFor(stage)
	tmpl := roleTemplates[role]

	p := Personality{
		Openness:          s.trait() + tmpl.bias.Openness,
		Conscientiousness: s.trait() + tmpl.bias.Conscientiousness,
		Extraversion:      s.trait() + tmpl.bias.Extraversion,
		Agreeableness:     s.trait() + tmpl.bias.Agreeableness,
		Neuroticism:       s.trait() + tmpl.bias.Neuroticism,
	}

	strategy := tmpl.strategy
	// A minority drift from their role's default temperament.
	if s.rng.Float64() < 0.15 {
		strategies := []CombatStrategy{StrategyPeaceful, StrategyTitForTat, StrategyBully}
		strategy = strategies[s.rng.Intn(len(strategies))]
	}

	return Spawned{
		State: NewAIState(id, p, strategy),
		Role:  role,
		Stage: stage,
	}
}

// trait draws a bell curve centered on 0.5.
func (s *Spawner) trait() float64 {
	return 0.5 + s.rng.NormFloat64()*0.15
}

func (s *Spawner) weightedStage() LifeStage {
	r := s.rng.Float64()
	switch {
	case r < 0.15:
		return StageChild
	case r < 0.85:
		return StageAdult
	default:
		return StageElder
	}
}

func (s *Spawner) roleFor(stage LifeStage) Role {
	if stage == StageChild {
		return RoleChild
	}
	r := s.rng.Float64()
	switch {
	case r < 0.30:
		return RoleGatherer
	case r < 0.42:
		return RoleGuard
	case r < 0.54:
		return RoleHunter
	case r < 0.68:
		return RoleBuilder
	case r < 0.80:
		return RoleCrafter
	case r < 0.90:
		return RoleTrader
	default:
		return RoleHealer
	}
}
