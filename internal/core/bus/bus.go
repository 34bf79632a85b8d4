// Package bus implements the in-process notification channel that keeps
// independently mounted dashboard surfaces (header, profile page, user
// management, route guards) observing one logical current user.
//
// The bus is an explicit, injectable instance with controlled lifetime:
// construct one at application start and pass it down. Tests build their own
// and unsubscribe what they register.
package bus

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handler receives the payload published to a topic.
type Handler func(payload any)

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	topic string
	id    uint64
}

type entry struct {
	id uint64
	fn Handler
}

// Bus is a process-wide publish/subscribe channel. Dispatch is synchronous
// and in subscription order; there is no cross-process or cross-tab
// guarantee.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	topics map[string][]entry
	log    zerolog.Logger
}

// New creates an empty Bus. Handler panics are recovered and logged to log.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]entry),
		log:    log,
	}
}

// Subscribe registers fn for topic and returns the handle needed to remove
// it. Handlers registered first are invoked first.
func (b *Bus) Subscribe(topic string, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.topics[topic] = append(b.topics[topic], entry{id: b.nextID, fn: fn})
	return &Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes a previously registered handler. Unknown or already
// removed handles are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.topics[sub.topic]
	for i, e := range entries {
		if e.id == sub.id {
			b.topics[sub.topic] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(b.topics[sub.topic]) == 0 {
		delete(b.topics, sub.topic)
	}
}

// Publish synchronously invokes every handler subscribed to topic at call
// time, exactly once each, in subscription order. A topic with no
// subscribers is a no-op. A panicking handler does not stop the remaining
// handlers for the same event.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	entries := make([]entry, len(b.topics[topic]))
	copy(entries, b.topics[topic])
	b.mu.Unlock()

	for _, e := range entries {
		b.dispatch(topic, e, payload)
	}
}

func (b *Bus) dispatch(topic string, e entry, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("topic", topic).
				Uint64("subscription_id", e.id).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()
	e.fn(payload)
}
