package needs

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned when a configuration cannot be applied.
var ErrInvalidConfig = errors.New("invalid needs config")

// Config is the process-wide needs configuration.
type Config struct {
	DecayRates          map[NeedType]float64 `json:"decayRates"`          // points per second
	CriticalThreshold   float64              `json:"criticalThreshold"`   // below: need_critical event
	EmergencyThreshold  float64              `json:"emergencyThreshold"`  // below: automatic inventory use
	DeathThresholds     map[NeedType]float64 `json:"deathThresholds"`     // at or below: death
	ZoneBonusMultiplier float64              `json:"zoneBonusMultiplier"` // scales every zone bonus
	UpdateInterval      time.Duration        `json:"updateInterval"`      // minimum wall time between runs
	AllowRespawn        bool                 `json:"allowRespawn"`
	RespawnDelay        time.Duration        `json:"respawnDelay"`
	CrossEffects        bool                 `json:"crossEffects"`
	BatchThreshold      int                  `json:"batchThreshold"` // active agents at which the columnar path kicks in; 0 disables
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		DecayRates: map[NeedType]float64{
			Hunger:       0.10,
			Thirst:       0.15,
			Energy:       0.08,
			Hygiene:      0.05,
			Social:       0.04,
			Fun:          0.05,
			MentalHealth: 0.02,
		},
		CriticalThreshold:  20,
		EmergencyThreshold: 10,
		DeathThresholds: map[NeedType]float64{
			Hunger: 0,
			Thirst: 0,
			Energy: 0,
		},
		ZoneBonusMultiplier: 1.0,
		UpdateInterval:      time.Second,
		AllowRespawn:        true,
		RespawnDelay:        30 * time.Second,
		CrossEffects:        true,
		BatchThreshold:      64,
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.DecayRates = make(map[NeedType]float64, len(c.DecayRates))
	for k, v := range c.DecayRates {
		out.DecayRates[k] = v
	}
	out.DeathThresholds = make(map[NeedType]float64, len(c.DeathThresholds))
	for k, v := range c.DeathThresholds {
		out.DeathThresholds[k] = v
	}
	return out
}

// rates returns decay rates in column order.
func (c Config) rates() [NumNeeds]float64 {
	var r [NumNeeds]float64
	for i, n := range All {
		r[i] = c.DecayRates[n]
	}
	return r
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	for n, r := range c.DecayRates {
		if !n.Valid() {
			return fmt.Errorf("%w: decay rate for unknown need %q", ErrInvalidConfig, n)
		}
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: decay rate for %s must be finite and >= 0", ErrInvalidConfig, n)
		}
	}
	for n, t := range c.DeathThresholds {
		if !n.Valid() {
			return fmt.Errorf("%w: death threshold for unknown need %q", ErrInvalidConfig, n)
		}
		if !inRange(t) {
			return fmt.Errorf("%w: death threshold for %s out of range", ErrInvalidConfig, n)
		}
	}
	if !inRange(c.CriticalThreshold) {
		return fmt.Errorf("%w: critical threshold out of range", ErrInvalidConfig)
	}
	if !inRange(c.EmergencyThreshold) {
		return fmt.Errorf("%w: emergency threshold out of range", ErrInvalidConfig)
	}
	if c.ZoneBonusMultiplier < 0 || math.IsNaN(c.ZoneBonusMultiplier) {
		return fmt.Errorf("%w: zone bonus multiplier must be >= 0", ErrInvalidConfig)
	}
	if c.UpdateInterval < 0 || c.RespawnDelay < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

// inRange reports whether v is a need value in [MinValue, MaxValue].
func inRange(v float64) bool {
	return !math.IsNaN(v) && v >= MinValue && v <= MaxValue
}

// ConfigPatch is a partial Config. Nil fields are left unchanged; map
// entries are merged key by key.
type ConfigPatch struct {
	DecayRates          map[NeedType]float64
	CriticalThreshold   *float64
	EmergencyThreshold  *float64
	DeathThresholds     map[NeedType]float64
	ZoneBonusMultiplier *float64
	UpdateInterval      *time.Duration
	AllowRespawn        *bool
	RespawnDelay        *time.Duration
	CrossEffects        *bool
	BatchThreshold      *int
}

// Merge returns c with p applied.
func (c Config) Merge(p ConfigPatch) Config {
	out := c.Clone()
	for k, v := range p.DecayRates {
		out.DecayRates[k] = v
	}
	for k, v := range p.DeathThresholds {
		out.DeathThresholds[k] = v
	}
	if p.CriticalThreshold != nil {
		out.CriticalThreshold = *p.CriticalThreshold
	}
	if p.EmergencyThreshold != nil {
		out.EmergencyThreshold = *p.EmergencyThreshold
	}
	if p.ZoneBonusMultiplier != nil {
		out.ZoneBonusMultiplier = *p.ZoneBonusMultiplier
	}
	if p.UpdateInterval != nil {
		out.UpdateInterval = *p.UpdateInterval
	}
	if p.AllowRespawn != nil {
		out.AllowRespawn = *p.AllowRespawn
	}
	if p.RespawnDelay != nil {
		out.RespawnDelay = *p.RespawnDelay
	}
	if p.CrossEffects != nil {
		out.CrossEffects = *p.CrossEffects
	}
	if p.BatchThreshold != nil {
		out.BatchThreshold = *p.BatchThreshold
	}
	return out
}
