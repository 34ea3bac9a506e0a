package bus

import (
	"sync"
	"testing"
)

func TestSubscribeAndPublish(t *testing.T) {
	b := New()

	var got []Topic
	b.Subscribe(TopicPoints, func(tp Topic) { got = append(got, tp) })

	b.Publish(TopicPoints)
	b.Publish(TopicGoal) // no subscriber, must not panic

	if len(got) != 1 || got[0] != TopicPoints {
		t.Fatalf("got %v, want [points]", got)
	}
}

func TestDeliveryInRegistrationOrder(t *testing.T) {
	b := New()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		b.Subscribe(TopicLibrary, func(Topic) { order = append(order, i) })
	}

	b.Publish(TopicLibrary)

	for i, v := range order {
		if v != i {
			t.Fatalf("delivery order %v, want ascending registration order", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("delivered to %d subscribers, want 5", len(order))
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	calls := 0
	cancel := b.Subscribe(TopicStats, func(Topic) { calls++ })
	b.Publish(TopicStats)

	cancel()
	cancel() // second call is a no-op
	b.Publish(TopicStats)

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestUnsubscribeKeepsOthers(t *testing.T) {
	b := New()

	var got []string
	cancelA := b.Subscribe(TopicLibrary, func(Topic) { got = append(got, "a") })
	b.Subscribe(TopicLibrary, func(Topic) { got = append(got, "b") })
	cancelA()

	b.Publish(TopicLibrary)

	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("got %v, want [b]", got)
	}
}

func TestPublishMultipleTopics(t *testing.T) {
	b := New()

	var got []Topic
	for _, tp := range LibraryMutationTopics() {
		tp := tp
		b.Subscribe(tp, func(Topic) { got = append(got, tp) })
	}

	b.Publish(LibraryMutationTopics()...)

	want := []Topic{TopicLibrary, TopicPoints, TopicGoal, TopicStats}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	b := New()

	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel := b.Subscribe(TopicPoints, func(Topic) {
				mu.Lock()
				calls++
				mu.Unlock()
			})
			b.Publish(TopicPoints)
			cancel()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Fatal("no handler ran")
	}
}
