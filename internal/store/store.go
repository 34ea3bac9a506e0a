// Package store holds the client-side caches of server-owned data.
//
// Each Store wraps one remote resource. Views read the current snapshot and
// subscribe for changes; mutations never write into a store directly, they
// publish invalidation topics and the bound store re-fetches. The server
// stays the single source of truth for every derived number (points, goal
// progress, shelf counts).
package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"verso/internal/logging"
)

// State describes where a store is in its fetch lifecycle.
type State int

const (
	// StateEmpty means no fetch has been attempted yet.
	StateEmpty State = iota
	// StateLoading means the first fetch is in flight and no value exists.
	StateLoading
	// StateReady means the last fetch succeeded.
	StateReady
	// StateFailed means the last fetch failed. A stale value from an
	// earlier success may still be present.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is one consistent read of a store: lifecycle state, the value if
// any fetch has ever succeeded, and the error from the last failed fetch.
type Snapshot[T any] struct {
	State     State
	Value     T
	HasValue  bool
	Err       error
	FetchedAt time.Time
}

// FetchFunc loads the resource from the backend.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Store caches one remote resource. Concurrent Refresh calls coalesce into a
// single backend fetch; all callers observe that fetch's outcome.
type Store[T any] struct {
	name    string
	fetch   FetchFunc[T]
	persist func(T)

	mu     sync.RWMutex
	snap   Snapshot[T]
	nextID int
	subs   []storeSub

	group singleflight.Group
}

type storeSub struct {
	id int
	fn func()
}

// New creates a store in StateEmpty.
func New[T any](name string, fetch FetchFunc[T]) *Store[T] {
	return &Store[T]{name: name, fetch: fetch}
}

// OnSuccess registers fn to run with each freshly fetched value, outside the
// store lock. Used to write snapshot cache entries.
func (s *Store[T]) OnSuccess(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = fn
}

// Get returns the current snapshot.
func (s *Store[T]) Get() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to run after every snapshot change. Notifications
// run synchronously on the goroutine that changed the store, in registration
// order. The returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, storeSub{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store[T]) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Refresh fetches the resource, coalescing with any refresh already in
// flight. On success the value replaces the snapshot; on failure the last
// good value is kept and only State and Err change. Subscribers are notified
// either way.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.markLoading()

	_, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		start := time.Now()
		v, err := s.fetch(ctx)
		if err != nil {
			logging.Store("%s: refresh failed after %s: %v", s.name, time.Since(start).Round(time.Millisecond), err)
			s.markFailed(err)
			return nil, err
		}
		logging.StoreDebug("%s: refreshed in %s", s.name, time.Since(start).Round(time.Millisecond))
		s.markReady(v)
		return nil, nil
	})
	if shared {
		logging.StoreDebug("%s: refresh coalesced", s.name)
	}
	return err
}

// Hydrate seeds the store with a value recovered from the snapshot cache.
// It only applies while the store is still empty, so a fetch that won the
// race is never clobbered by stale disk state.
func (s *Store[T]) Hydrate(v T, fetchedAt time.Time) {
	s.mu.Lock()
	if s.snap.State != StateEmpty {
		s.mu.Unlock()
		return
	}
	s.snap = Snapshot[T]{State: StateReady, Value: v, HasValue: true, FetchedAt: fetchedAt}
	subs := s.copySubs()
	s.mu.Unlock()

	logging.StoreDebug("%s: hydrated from snapshot (saved %s)", s.name, fetchedAt.Format(time.RFC3339))
	for _, sub := range subs {
		sub.fn()
	}
}

// Reset drops the cached value and returns the store to StateEmpty.
// Called on logout so the next account never sees the previous one's data.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	var zero T
	s.snap = Snapshot[T]{Value: zero}
	subs := s.copySubs()
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store[T]) markLoading() {
	s.mu.Lock()
	if s.snap.State != StateEmpty {
		// A value or a terminal state exists; stay in it until the
		// fetch resolves rather than flashing a spinner over data.
		s.mu.Unlock()
		return
	}
	s.snap.State = StateLoading
	subs := s.copySubs()
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store[T]) markReady(v T) {
	s.mu.Lock()
	s.snap = Snapshot[T]{State: StateReady, Value: v, HasValue: true, FetchedAt: time.Now()}
	subs := s.copySubs()
	persist := s.persist
	s.mu.Unlock()

	if persist != nil {
		persist(v)
	}
	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store[T]) markFailed(err error) {
	s.mu.Lock()
	s.snap.State = StateFailed
	s.snap.Err = err
	subs := s.copySubs()
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Store[T]) copySubs() []storeSub {
	subs := make([]storeSub, len(s.subs))
	copy(subs, s.subs)
	return subs
}
