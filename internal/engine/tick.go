// Package engine provides the tick-based simulation loop and the Simulation
// that runs the needs → goals → arbitration pipeline for every agent.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base wall time per tick; 0 runs flat out
	MaxTicks uint64        // Stop after this many ticks; 0 = until cancelled

	HourEvery uint64 // ticks per sim-hour
	DayEvery  uint64 // ticks per sim-day

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64) // Every tick
	OnHour func(tick uint64) // Every HourEvery ticks
	OnDay  func(tick uint64) // Every DayEvery ticks
}

// NewEngine creates an engine whose ticks each cover step of sim time.
func NewEngine(step time.Duration) *Engine {
	if step <= 0 {
		step = time.Second
	}
	hour := uint64(time.Hour / step)
	if hour == 0 {
		hour = 1
	}
	return &Engine{
		Speed:     1.0,
		HourEvery: hour,
		DayEvery:  hour * 24,
	}
}

// Run steps until ctx is cancelled or MaxTicks is reached. It returns
// ctx.Err() when cancelled and nil when the tick budget runs out.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed, "max_ticks", e.MaxTicks)
	defer func() { slog.Info("simulation engine stopped", "tick", e.Tick) }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			return nil
		}
		if e.Speed <= 0 {
			// Paused; check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}

		start := time.Now()
		e.Step()

		if e.Interval <= 0 {
			continue
		}
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				return ctx.Err()
			}
		}
	}
}

// sleep waits for d or cancellation and reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Step advances the simulation by one tick.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.HourEvery > 0 && e.Tick%e.HourEvery == 0 && e.OnHour != nil {
		e.OnHour(e.Tick)
	}
	if e.DayEvery > 0 && e.Tick%e.DayEvery == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
}

// SimTime renders a sim clock reading as "Day N, HH:MM".
func SimTime(start, now time.Time) string {
	days := int(now.Sub(start)/(24*time.Hour)) + 1
	return fmt.Sprintf("Day %d, %d:%02d", days, now.Hour(), now.Minute())
}
