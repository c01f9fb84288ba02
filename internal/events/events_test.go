package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus(0)
	var deaths, all int
	bus.Subscribe(AgentDeath, func(Event) { deaths++ })
	unsubscribe := bus.Subscribe("", func(Event) { all++ })

	bus.Publish(Event{Kind: AgentDeath, AgentID: 1})
	bus.Publish(Event{Kind: NeedCritical, AgentID: 1})
	unsubscribe()
	bus.Publish(Event{Kind: AgentDeath, AgentID: 2})

	assert.Equal(t, 2, deaths)
	assert.Equal(t, 2, all)
	assert.Equal(t, 3, bus.Len())
}

func TestDrainClearsQueue(t *testing.T) {
	bus := NewBus(0)
	bus.Publish(Event{Kind: NeedSatisfied})
	bus.Publish(Event{Kind: NeedCritical})

	got := bus.Drain()
	assert.Len(t, got, 2)
	assert.Equal(t, 1, Count(got, NeedSatisfied))
	assert.Empty(t, bus.Drain())
}

func TestQueueBoundDropsOldest(t *testing.T) {
	bus := NewBus(2)
	for i := uint64(1); i <= 3; i++ {
		bus.Publish(Event{Kind: NeedCritical, AgentID: i})
	}
	got := bus.Drain()
	if assert.Len(t, got, 2) {
		assert.Equal(t, uint64(2), got[0].AgentID)
		assert.Equal(t, uint64(3), got[1].AgentID)
	}
}

func TestHandlerMayPublish(t *testing.T) {
	bus := NewBus(0)
	bus.Subscribe(AgentDeath, func(e Event) {
		bus.Publish(Event{Kind: EntityRemoved, AgentID: e.AgentID})
	})
	bus.Publish(Event{Kind: AgentDeath, AgentID: 9})
	got := bus.Drain()
	assert.Equal(t, 1, Count(got, EntityRemoved))
}
