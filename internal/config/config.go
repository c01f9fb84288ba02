// Package config loads the simulator's YAML configuration and environment
// overrides, and converts it into the settings each component takes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/needsim/internal/arbiter"
	"github.com/talgya/needsim/internal/needs"
	"github.com/talgya/needsim/internal/priority"
)

// ErrInvalid is returned when a configuration cannot be used.
var ErrInvalid = errors.New("invalid config")

// Environment overrides.
const (
	EnvSeed     = "NEEDSIM_SEED"
	EnvDB       = "NEEDSIM_DB"
	EnvLogLevel = "NEEDSIM_LOG_LEVEL"
)

// Config holds all needsim configuration.
type Config struct {
	Sim         SimConfig         `yaml:"sim"`
	Needs       NeedsConfig       `yaml:"needs"`
	Arbitration ArbitrationConfig `yaml:"arbitration"`
	Priority    PriorityConfig    `yaml:"priority"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
}

// SimConfig sizes and paces the demo world.
type SimConfig struct {
	Seed     int64  `yaml:"seed"` // 0 = random
	Agents   int    `yaml:"agents"`
	Ticks    uint64 `yaml:"ticks"`    // 0 = run until interrupted
	Step     string `yaml:"step"`     // sim time per tick
	Interval string `yaml:"interval"` // wall time per tick, "0s" = as fast as possible
	World    string `yaml:"world"`    // default, small
}

// NeedsConfig mirrors needs.Config with YAML-friendly types.
type NeedsConfig struct {
	DecayRates          map[string]float64 `yaml:"decay_rates"`
	CriticalThreshold   float64            `yaml:"critical_threshold"`
	EmergencyThreshold  float64            `yaml:"emergency_threshold"`
	DeathThresholds     map[string]float64 `yaml:"death_thresholds"`
	ZoneBonusMultiplier float64            `yaml:"zone_bonus_multiplier"`
	UpdateInterval      string             `yaml:"update_interval"`
	AllowRespawn        bool               `yaml:"allow_respawn"`
	RespawnDelay        string             `yaml:"respawn_delay"`
	CrossEffects        bool               `yaml:"cross_effects"`
	BatchThreshold      int                `yaml:"batch_threshold"`
}

// ArbitrationConfig tunes goal ranking.
type ArbitrationConfig struct {
	MinPriority float64 `yaml:"min_priority"`
	Temperature float64 `yaml:"temperature"`
}

// PriorityConfig overrides domain weights.
type PriorityConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// StorageConfig configures the journal.
type StorageConfig struct {
	Path       string `yaml:"path"` // empty disables the journal
	FlushEvery uint64 `yaml:"flush_every"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Default returns the stock configuration.
func Default() *Config {
	nc := needs.DefaultConfig()
	rates := make(map[string]float64, len(nc.DecayRates))
	for n, r := range nc.DecayRates {
		rates[string(n)] = r
	}
	death := make(map[string]float64, len(nc.DeathThresholds))
	for n, t := range nc.DeathThresholds {
		death[string(n)] = t
	}
	weights := make(map[string]float64)
	for d, w := range priority.DefaultWeights() {
		weights[string(d)] = w
	}
	return &Config{
		Sim: SimConfig{
			Agents:   40,
			Ticks:    2000,
			Step:     "10s",
			Interval: "0s",
			World:    "default",
		},
		Needs: NeedsConfig{
			DecayRates:          rates,
			CriticalThreshold:   nc.CriticalThreshold,
			EmergencyThreshold:  nc.EmergencyThreshold,
			DeathThresholds:     death,
			ZoneBonusMultiplier: nc.ZoneBonusMultiplier,
			UpdateInterval:      nc.UpdateInterval.String(),
			AllowRespawn:        nc.AllowRespawn,
			RespawnDelay:        nc.RespawnDelay.String(),
			CrossEffects:        nc.CrossEffects,
			BatchThreshold:      nc.BatchThreshold,
		},
		Arbitration: ArbitrationConfig{
			MinPriority: 0.05,
			Temperature: arbiter.DefaultTemperature,
		},
		Priority: PriorityConfig{Weights: weights},
		Storage: StorageConfig{
			Path:       "data/needsim.db",
			FlushEvery: 60,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes c as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// ApplyEnv applies NEEDSIM_* overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSeed, v, err)
		}
		c.Sim.Seed = seed
	}
	if v, ok := lookup(EnvDB); ok {
		c.Storage.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate reports the first problem with c.
func (c *Config) Validate() error {
	if c.Sim.Agents <= 0 {
		return fmt.Errorf("%w: sim.agents must be positive", ErrInvalid)
	}
	if _, err := c.StepDuration(); err != nil {
		return err
	}
	if _, err := c.TickInterval(); err != nil {
		return err
	}
	switch c.Sim.World {
	case "default", "small":
	default:
		return fmt.Errorf("%w: sim.world %q (want default or small)", ErrInvalid, c.Sim.World)
	}
	if _, err := c.NeedsSettings(); err != nil {
		return err
	}
	if _, err := c.PriorityWeights(); err != nil {
		return err
	}
	a := c.Arbitration
	if math.IsNaN(a.MinPriority) || math.IsNaN(a.Temperature) || a.Temperature < 0 {
		return fmt.Errorf("%w: arbitration temperature must be >= 0", ErrInvalid)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// StepDuration is the sim time one tick advances.
func (c *Config) StepDuration() (time.Duration, error) {
	d, err := parseDuration("sim.step", c.Sim.Step)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: sim.step must be positive", ErrInvalid)
	}
	return d, nil
}

// TickInterval is the wall time between ticks.
func (c *Config) TickInterval() (time.Duration, error) {
	if c.Sim.Interval == "" {
		return 0, nil
	}
	return parseDuration("sim.interval", c.Sim.Interval)
}

// NeedsSettings converts the needs section into a validated needs.Config.
func (c *Config) NeedsSettings() (needs.Config, error) {
	n := c.Needs
	out := needs.Config{
		DecayRates:          make(map[needs.NeedType]float64, len(n.DecayRates)),
		CriticalThreshold:   n.CriticalThreshold,
		EmergencyThreshold:  n.EmergencyThreshold,
		DeathThresholds:     make(map[needs.NeedType]float64, len(n.DeathThresholds)),
		ZoneBonusMultiplier: n.ZoneBonusMultiplier,
		AllowRespawn:        n.AllowRespawn,
		CrossEffects:        n.CrossEffects,
		BatchThreshold:      n.BatchThreshold,
	}
	for name, r := range n.DecayRates {
		need, err := needs.ParseNeed(name)
		if err != nil {
			return needs.Config{}, fmt.Errorf("%w: needs.decay_rates: %v", ErrInvalid, err)
		}
		out.DecayRates[need] = r
	}
	for name, t := range n.DeathThresholds {
		need, err := needs.ParseNeed(name)
		if err != nil {
			return needs.Config{}, fmt.Errorf("%w: needs.death_thresholds: %v", ErrInvalid, err)
		}
		out.DeathThresholds[need] = t
	}
	var err error
	if out.UpdateInterval, err = parseDuration("needs.update_interval", n.UpdateInterval); err != nil {
		return needs.Config{}, err
	}
	if out.RespawnDelay, err = parseDuration("needs.respawn_delay", n.RespawnDelay); err != nil {
		return needs.Config{}, err
	}
	if err := out.Validate(); err != nil {
		return needs.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return out, nil
}

// PriorityWeights converts the weight table, rejecting unknown domains.
func (c *Config) PriorityWeights() (map[priority.Domain]float64, error) {
	out := make(map[priority.Domain]float64, len(c.Priority.Weights))
	for name, w := range c.Priority.Weights {
		d := priority.Domain(name)
		if !knownDomain(d) {
			return nil, fmt.Errorf("%w: priority.weights: unknown domain %q", ErrInvalid, name)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: priority.weights.%s must be finite and >= 0", ErrInvalid, name)
		}
		out[d] = w
	}
	return out, nil
}

// SlogLevel parses log.level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
}

func knownDomain(d priority.Domain) bool {
	for _, k := range priority.Domains {
		if k == d {
			return true
		}
	}
	return false
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalid, field)
	}
	return d, nil
}
