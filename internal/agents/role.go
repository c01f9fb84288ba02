// Roles: an agent's job in the community. Roles bias personality at spawn,
// decide combat capability, and key the needs-threshold modifier table.
package agents

import "fmt"

// Role represents an agent's position in the community.
type Role uint8

const (
	RoleGatherer Role = iota
	RoleGuard
	RoleHunter
	RoleBuilder
	RoleCrafter
	RoleTrader
	RoleHealer
	RoleChild
)

var roleNames = [...]string{
	RoleGatherer: "gatherer",
	RoleGuard:    "guard",
	RoleHunter:   "hunter",
	RoleBuilder:  "builder",
	RoleCrafter:  "crafter",
	RoleTrader:   "trader",
	RoleHealer:   "healer",
	RoleChild:    "child",
}

// String returns the role name.
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole maps a role name back to a Role.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return RoleGatherer, fmt.Errorf("unknown role %q", name)
}

// CombatCapable reports whether the role fights rather than flees by default.
func (r Role) CombatCapable() bool {
	return r == RoleGuard || r == RoleHunter
}

// roleTemplate biases spawned personalities toward a role.
type roleTemplate struct {
	bias     Personality // added to a centered random draw
	strategy CombatStrategy
}

var roleTemplates = map[Role]roleTemplate{
	RoleGatherer: {bias: Personality{Conscientiousness: 0.1}, strategy: StrategyPeaceful},
	RoleGuard:    {bias: Personality{Conscientiousness: 0.15, Neuroticism: -0.15}, strategy: StrategyTitForTat},
	RoleHunter:   {bias: Personality{Openness: 0.1, Neuroticism: -0.1}, strategy: StrategyBully},
	RoleBuilder:  {bias: Personality{Conscientiousness: 0.2}, strategy: StrategyPeaceful},
	RoleCrafter:  {bias: Personality{Openness: 0.15, Conscientiousness: 0.1}, strategy: StrategyPeaceful},
	RoleTrader:   {bias: Personality{Extraversion: 0.2, Agreeableness: 0.05}, strategy: StrategyTitForTat},
	RoleHealer:   {bias: Personality{Agreeableness: 0.25}, strategy: StrategyPeaceful},
	RoleChild:    {bias: Personality{Openness: 0.2, Neuroticism: 0.1}, strategy: StrategyPeaceful},
}
