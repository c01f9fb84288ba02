// Package needs implements the needs engine: seven bounded drives per agent
// that decay over time, recover inside matching zones, drag on each other
// when low, and kill the agent when a vital one bottoms out.
package needs

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// NeedType names one of the seven needs.
type NeedType string

const (
	Hunger       NeedType = "hunger"
	Thirst       NeedType = "thirst"
	Energy       NeedType = "energy"
	Hygiene      NeedType = "hygiene"
	Social       NeedType = "social"
	Fun          NeedType = "fun"
	MentalHealth NeedType = "mentalHealth"
)

// NumNeeds is the number of need columns.
const NumNeeds = 7

// All lists the needs in column order.
var All = [NumNeeds]NeedType{Hunger, Thirst, Energy, Hygiene, Social, Fun, MentalHealth}

// Bounds of every need value.
const (
	MinValue = 0.0
	MaxValue = 100.0
)

// Index returns the need's column, or -1 for an unknown need.
func (n NeedType) Index() int {
	for i, t := range All {
		if t == n {
			return i
		}
	}
	return -1
}

// Valid reports whether n is one of the seven needs.
func (n NeedType) Valid() bool {
	return n.Index() >= 0
}

// ParseNeed validates a need name.
func ParseNeed(s string) (NeedType, error) {
	n := NeedType(s)
	if !n.Valid() {
		return "", fmt.Errorf("unknown need %q", s)
	}
	return n, nil
}

// EntityNeeds holds one agent's need values, each in [0,100].
type EntityNeeds struct {
	Hunger       float64 `json:"hunger"`
	Thirst       float64 `json:"thirst"`
	Energy       float64 `json:"energy"`
	Hygiene      float64 `json:"hygiene"`
	Social       float64 `json:"social"`
	Fun          float64 `json:"fun"`
	MentalHealth float64 `json:"mentalHealth"`
}

// SpawnDefaults are the values an agent starts and respawns with.
func SpawnDefaults() EntityNeeds {
	return EntityNeeds{
		Hunger:       100,
		Thirst:       100,
		Energy:       100,
		Hygiene:      80,
		Social:       70,
		Fun:          70,
		MentalHealth: 80,
	}
}

// Vector returns the values in column order.
func (e EntityNeeds) Vector() [NumNeeds]float64 {
	return [NumNeeds]float64{e.Hunger, e.Thirst, e.Energy, e.Hygiene, e.Social, e.Fun, e.MentalHealth}
}

// FromVector builds EntityNeeds from column-ordered values.
func FromVector(v [NumNeeds]float64) EntityNeeds {
	return EntityNeeds{
		Hunger:       v[0],
		Thirst:       v[1],
		Energy:       v[2],
		Hygiene:      v[3],
		Social:       v[4],
		Fun:          v[5],
		MentalHealth: v[6],
	}
}

// Get returns the value of need n.
func (e EntityNeeds) Get(n NeedType) (float64, bool) {
	i := n.Index()
	if i < 0 {
		return 0, false
	}
	return e.Vector()[i], true
}

// With returns a copy of e with need n set to v, clamped.
func (e EntityNeeds) With(n NeedType, v float64) EntityNeeds {
	i := n.Index()
	if i < 0 {
		return e
	}
	vec := e.Vector()
	vec[i] = clamp(v, MinValue, MaxValue)
	return FromVector(vec)
}

// Snapshot returns the values keyed by need name.
func (e EntityNeeds) Snapshot() map[string]float64 {
	out := make(map[string]float64, NumNeeds)
	for i, v := range e.Vector() {
		out[string(All[i])] = v
	}
	return out
}

// Clamped returns e with every value forced into [0,100]. NaN becomes 0.
func (e EntityNeeds) Clamped() EntityNeeds {
	vec := e.Vector()
	for i := range vec {
		vec[i] = clamp(vec[i], MinValue, MaxValue)
	}
	return FromVector(vec)
}

// clamp bounds v to [lo, hi]; NaN maps to lo.
func clamp[T constraints.Float](v, lo, hi T) T {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
