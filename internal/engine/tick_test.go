package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	e := NewEngine(10 * time.Second)
	e.MaxTicks = 25
	var seen []uint64
	e.OnTick = func(tick uint64) { seen = append(seen, tick) }

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(25), e.Tick)
	require.Len(t, seen, 25)
	assert.Equal(t, uint64(1), seen[0])
	assert.Equal(t, uint64(25), seen[24])
}

func TestRunReturnsContextError(t *testing.T) {
	e := NewEngine(10 * time.Second)
	e.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	e.OnTick = func(tick uint64) {
		if tick == 3 {
			cancel()
		}
	}

	err := e.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(3), e.Tick)
}

func TestRunPausedHonorsCancel(t *testing.T) {
	e := NewEngine(time.Second)
	e.Speed = 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.ErrorIs(t, e.Run(ctx), context.DeadlineExceeded)
	assert.Zero(t, e.Tick)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHourAndDayCallbacks(t *testing.T) {
	e := NewEngine(time.Minute)
	require.Equal(t, uint64(60), e.HourEvery)
	require.Equal(t, uint64(1440), e.DayEvery)

	var hours, days []uint64
	e.OnHour = func(tick uint64) { hours = append(hours, tick) }
	e.OnDay = func(tick uint64) { days = append(days, tick) }
	for range 1440 {
		e.Step()
	}
	assert.Len(t, hours, 24)
	assert.Equal(t, uint64(60), hours[0])
	assert.Equal(t, []uint64{1440}, days)
}

func TestNewEngineClampsLongSteps(t *testing.T) {
	e := NewEngine(2 * time.Hour)
	assert.Equal(t, uint64(1), e.HourEvery)
	assert.Equal(t, uint64(24), e.DayEvery)
}

func TestSimTime(t *testing.T) {
	start := time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, "Day 1, 6:00", SimTime(start, start))
	assert.Equal(t, "Day 2, 7:05", SimTime(start, start.Add(25*time.Hour+5*time.Minute)))
}
