package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// subscriberBuffer is how many events a slow subscriber may lag before events are dropped for it
const subscriberBuffer = 64

// Bus fans events out to subscribers. Delivery never blocks the publisher;
// a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	now    func() time.Time
	log    zerolog.Logger
}

var _ Emitter = (*Bus)(nil)

// NewBus creates an event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[uint64]chan Event),
		now:  time.Now,
		log:  log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe returns a channel of future events and a function that ends the subscription
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// EmitTyped publishes data as an event from module
func (b *Bus) EmitTyped(module string, data EventData) {
	event := Event{
		Type:      data.EventType(),
		Module:    module,
		Timestamp: b.now(),
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn().Uint64("subscriber", id).Str("type", string(event.Type)).Msg("Subscriber lagging, event dropped")
		}
	}

	b.log.Debug().Str("type", string(event.Type)).Str("module", module).Int("subscribers", len(b.subs)).Msg("Event emitted")
}
