// Package bus is a per-game pub/sub event bus. Subscribers hold a
// bounded queue; publishing never blocks, events for a full queue are
// dropped for that subscriber only.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopicGlobal receives every published event regardless of game.
const TopicGlobal = "*"

// DefaultQueueSize is the per-subscriber queue capacity.
const DefaultQueueSize = 64

// EventKind names a state transition.
type EventKind string

const (
	EventGameCreated EventKind = "game_created"
	EventGameUpdated EventKind = "game_updated"
	EventGameDeleted EventKind = "game_deleted"
)

// Event is the wire payload pushed to subscribers. Type is always
// "event"; Data carries the view or outcome that produced it.
type Event struct {
	Type   string    `json:"type"`
	Event  EventKind `json:"event"`
	GameID string    `json:"game_id"`
	Data   any       `json:"data"`
}

// Subscriber is one registered consumer. Receive from C; a closed C
// means the subscriber was removed from the bus.
type Subscriber struct {
	ID string
	C  chan Event

	mu     sync.Mutex
	topics map[string]struct{}
	closed bool
}

func (s *Subscriber) onTopic(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[TopicGlobal]; ok {
		return true
	}
	_, ok := s.topics[topic]
	return ok
}

// Bus fans events out to subscribers by game-id topic.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]*Subscriber
	closed bool
	log    *zap.Logger
}

// New returns an empty bus.
func New(log *zap.Logger) *Bus {
	return &Bus{
		subs: make(map[string]*Subscriber),
		log:  log,
	}
}

// Subscribe registers a new subscriber on the given topics (game ids,
// or TopicGlobal for everything).
func (b *Bus) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		C:      make(chan Event, DefaultQueueSize),
		topics: make(map[string]struct{}, len(topics)),
	}
	for _, t := range topics {
		sub.topics[t] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.C)
		sub.closed = true
		return sub
	}
	b.subs[sub.ID] = sub
	return sub
}

// Join adds a topic to an existing subscriber.
func (b *Bus) Join(sub *Subscriber, topic string) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.topics[topic] = struct{}{}
	}
}

// Leave removes a topic from a subscriber.
func (b *Bus) Leave(sub *Subscriber, topic string) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	delete(sub.topics, topic)
}

// Unsubscribe removes the subscriber and closes its queue.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	delete(b.subs, sub.ID)
	b.mu.Unlock()

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.closed = true
		close(sub.C)
	}
}

// Publish delivers the event to every subscriber on the event's game
// topic or the global topic. Full queues drop the event.
func (b *Bus) Publish(ev Event) {
	ev.Type = "event"

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	targets := make([]*Subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.onTopic(ev.GameID) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			continue
		}
		select {
		case s.C <- ev:
		default:
			b.log.Warn("event dropped for slow subscriber",
				zap.String("subscriber_id", s.ID),
				zap.String("game_id", ev.GameID),
				zap.String("event", string(ev.Event)))
		}
		s.mu.Unlock()
	}
}

// Close removes all subscribers and closes their queues. Publish
// becomes a no-op afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		s.mu.Lock()
		if !s.closed {
			s.closed = true
			close(s.C)
		}
		s.mu.Unlock()
		delete(b.subs, id)
	}
}
