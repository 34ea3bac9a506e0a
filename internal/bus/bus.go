// Package bus is the invalidation bus: after a mutation succeeds, the
// mutator publishes the topics it affected, and every store subscribed to a
// matching topic refreshes itself.
//
// This replaces the pattern of globally reachable refresh callbacks assigned
// by whichever widget mounted last. The publisher declares WHAT changed;
// which widgets exist is none of its business.
package bus

import (
	"sync"

	"verso/internal/logging"
)

// Topic names a category of data a mutation may have affected.
type Topic string

const (
	TopicLibrary Topic = "library"
	TopicPoints  Topic = "points"
	TopicGoal    Topic = "goal"
	TopicStats   Topic = "stats"
)

// LibraryMutationTopics is the full set a successful library mutation
// invalidates: the entry list itself plus every backend-computed aggregate
// derived from it.
func LibraryMutationTopics() []Topic {
	return []Topic{TopicLibrary, TopicPoints, TopicGoal, TopicStats}
}

type subscriber struct {
	id int
	fn func(Topic)
}

// Bus routes published topics to subscribers in registration order.
// Handlers run synchronously on the publishing goroutine; a handler that
// wants async work (a store refresh) starts it itself.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers fn for one topic. The returned function removes the
// subscription; calling it more than once is harmless.
func (b *Bus) Subscribe(topic Topic, fn func(Topic)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(topic, id)
		})
	}
}

func (b *Bus) unsubscribe(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers each topic to its subscribers in registration order.
// Stores are independent: no cross-store transaction exists, and one store's
// view may lag another's by a refresh round-trip until both fetches resolve.
func (b *Bus) Publish(topics ...Topic) {
	for _, topic := range topics {
		b.mu.RLock()
		subs := make([]subscriber, len(b.subs[topic]))
		copy(subs, b.subs[topic])
		b.mu.RUnlock()

		logging.Bus("publish %s -> %d subscriber(s)", topic, len(subs))
		for _, s := range subs {
			s.fn(topic)
		}
	}
}
