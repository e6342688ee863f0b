package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus() *Bus {
	return New(zap.NewNop())
}

func TestPublishDeliversToTopicSubscriber(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("game-1")
	b.Publish(Event{Event: EventGameUpdated, GameID: "game-1", Data: "payload"})

	ev := <-sub.C
	assert.Equal(t, "event", ev.Type)
	assert.Equal(t, EventGameUpdated, ev.Event)
	assert.Equal(t, "game-1", ev.GameID)
	assert.Equal(t, "payload", ev.Data)
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("game-1")
	b.Publish(Event{Event: EventGameUpdated, GameID: "game-2"})

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event for foreign game: %+v", ev)
	default:
	}
}

func TestGlobalTopicReceivesEverything(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe(TopicGlobal)
	b.Publish(Event{Event: EventGameCreated, GameID: "game-1"})
	b.Publish(Event{Event: EventGameDeleted, GameID: "game-2"})

	assert.Equal(t, EventGameCreated, (<-sub.C).Event)
	assert.Equal(t, EventGameDeleted, (<-sub.C).Event)
}

func TestSlowSubscriberDropsNotBlocks(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("game-1")
	// Overfill the queue; the publisher must never block.
	for i := 0; i < DefaultQueueSize+10; i++ {
		b.Publish(Event{Event: EventGameUpdated, GameID: "game-1", Data: i})
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, DefaultQueueSize, received, "overflow events are dropped")
}

func TestSubscriberSeesOwnEventsInPublishOrder(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("game-1")
	for i := 0; i < 10; i++ {
		b.Publish(Event{Event: EventGameUpdated, GameID: "game-1", Data: i})
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, (<-sub.C).Data)
	}
}

func TestJoinAndLeave(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe()
	b.Publish(Event{Event: EventGameUpdated, GameID: "game-1"})
	select {
	case <-sub.C:
		t.Fatal("subscriber without topics received an event")
	default:
	}

	b.Join(sub, "game-1")
	b.Publish(Event{Event: EventGameUpdated, GameID: "game-1"})
	require.Len(t, sub.C, 1)
	<-sub.C

	b.Leave(sub, "game-1")
	b.Publish(Event{Event: EventGameUpdated, GameID: "game-1"})
	assert.Len(t, sub.C, 0)
}

func TestUnsubscribeClosesQueue(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("game-1")
	b.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)

	// Publishing after removal must not panic.
	b.Publish(Event{Event: EventGameUpdated, GameID: "game-1"})
}

func TestCloseShutsDownAllSubscribers(t *testing.T) {
	b := newTestBus()
	s1 := b.Subscribe("game-1")
	s2 := b.Subscribe(TopicGlobal)

	b.Close()

	_, open := <-s1.C
	assert.False(t, open)
	_, open = <-s2.C
	assert.False(t, open)

	b.Publish(Event{Event: EventGameUpdated, GameID: "game-1"})

	// Subscribing after close yields a closed queue.
	s3 := b.Subscribe("game-1")
	_, open = <-s3.C
	assert.False(t, open)
}
