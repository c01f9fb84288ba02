// Package events carries the domain notifications produced by the needs engine.
// The composing application owns the Bus; there is no global registry.
package events

import (
	"sync"
	"time"
)

// Kind identifies a domain event.
type Kind string

const (
	NeedCritical   Kind = "need_critical"
	NeedSatisfied  Kind = "need_satisfied"
	AgentDeath     Kind = "agent_death"
	AgentRespawned Kind = "agent_respawned"
	EntityRemoved  Kind = "entity_removed"
	ConfigChanged  Kind = "config_changed"
)

// Event is a single notification. Payload depends on Kind:
// NeedCritical/NeedSatisfied use Need and Value, AgentDeath uses Cause and
// Snapshot, ConfigChanged carries the merged configuration in Config.
type Event struct {
	Kind      Kind               `json:"kind"`
	AgentID   uint64             `json:"agent_id,omitempty"`
	Need      string             `json:"need,omitempty"`
	Value     float64            `json:"value,omitempty"`
	Cause     string             `json:"cause,omitempty"`
	Snapshot  map[string]float64 `json:"snapshot,omitempty"`
	Config    any                `json:"config,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Handler receives published events synchronously.
type Handler func(Event)

// Bus is an outbound queue plus explicit subscriptions.
// Publish delivers to subscribers immediately and also appends to the queue
// so pull-based consumers can Drain once per tick.
type Bus struct {
	mu       sync.Mutex
	queue    []Event
	nextID   int
	handlers map[int]subscription
	maxQueue int
}

type subscription struct {
	kind    Kind // empty = all kinds
	handler Handler
}

// NewBus creates a bus whose queue holds at most maxQueue undrained events
// (oldest dropped first). maxQueue <= 0 means unbounded.
func NewBus(maxQueue int) *Bus {
	return &Bus{
		handlers: make(map[int]subscription),
		maxQueue: maxQueue,
	}
}

// Subscribe registers h for kind (empty kind subscribes to everything).
// The returned function removes the subscription.
func (b *Bus) Subscribe(kind Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = subscription{kind: kind, handler: h}
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish queues e and notifies matching subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.maxQueue > 0 && len(b.queue) > b.maxQueue {
		b.queue = b.queue[len(b.queue)-b.maxQueue:]
	}
	var targets []Handler
	for _, s := range b.handlers {
		if s.kind == "" || s.kind == e.Kind {
			targets = append(targets, s.handler)
		}
	}
	b.mu.Unlock()

	// Handlers run outside the lock so they may publish in turn.
	for _, h := range targets {
		h(e)
	}
}

// Drain returns and clears all queued events.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Len returns the number of undrained events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Count returns how many events of kind are in events.
func Count(evs []Event, kind Kind) int {
	n := 0
	for _, e := range evs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
