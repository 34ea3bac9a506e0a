package store

import (
	"context"

	"verso/internal/api"
	"verso/internal/bus"
	"verso/internal/logging"
)

// Snapshot cache keys. Also used as store names in logs.
const (
	KeyLibrary = "library"
	KeyPoints  = "points"
	KeyGoal    = "goal"
	KeyStats   = "stats"
)

// Set bundles the four long-lived stores the app keeps warm: the library
// entry list and the three backend-computed aggregates derived from it.
type Set struct {
	Library *Store[[]api.LibraryEntry]
	Points  *Store[api.Points]
	Goal    *Store[api.Goal]
	Stats   *Store[api.ReadingStats]
}

// NewSet builds the stores against the gateway. The cache may be nil; when
// present, each successful fetch is written through to it and Hydrate can
// seed the stores before the first fetch completes.
func NewSet(client *api.Client, cache *Cache) *Set {
	s := &Set{
		Library: New(KeyLibrary, func(ctx context.Context) ([]api.LibraryEntry, error) {
			return client.MyBooks(ctx, "")
		}),
		Points: New(KeyPoints, func(ctx context.Context) (api.Points, error) {
			return client.MyPoints(ctx)
		}),
		Goal: New(KeyGoal, func(ctx context.Context) (api.Goal, error) {
			return client.ReadingGoal(ctx)
		}),
		Stats: New(KeyStats, func(ctx context.Context) (api.ReadingStats, error) {
			return client.ReadingStats(ctx)
		}),
	}
	if cache != nil {
		s.Library.OnSuccess(func(v []api.LibraryEntry) { cache.save(KeyLibrary, v) })
		s.Points.OnSuccess(func(v api.Points) { cache.save(KeyPoints, v) })
		s.Goal.OnSuccess(func(v api.Goal) { cache.save(KeyGoal, v) })
		s.Stats.OnSuccess(func(v api.ReadingStats) { cache.save(KeyStats, v) })
	}
	return s
}

// Hydrate seeds each store from the snapshot cache. Errors are logged and
// skipped; a missing or unreadable snapshot just means an empty store until
// the first fetch.
func (s *Set) Hydrate(cache *Cache) {
	if cache == nil {
		return
	}
	hydrate(cache, KeyLibrary, s.Library)
	hydrate(cache, KeyPoints, s.Points)
	hydrate(cache, KeyGoal, s.Goal)
	hydrate(cache, KeyStats, s.Stats)
}

func hydrate[T any](cache *Cache, key string, st *Store[T]) {
	var v T
	savedAt, ok, err := cache.Load(key, &v)
	if err != nil {
		logging.Store("%s: snapshot load failed: %v", key, err)
		return
	}
	if ok {
		st.Hydrate(v, savedAt)
	}
}

// Bind subscribes each store to its invalidation topic. Refreshes run on a
// fresh goroutine so a publisher is never blocked on backend round-trips.
// The returned function removes all subscriptions.
func (s *Set) Bind(b *bus.Bus) func() {
	bindings := []struct {
		topic   bus.Topic
		refresh func(context.Context) error
	}{
		{bus.TopicLibrary, func(ctx context.Context) error { return s.Library.Refresh(ctx) }},
		{bus.TopicPoints, func(ctx context.Context) error { return s.Points.Refresh(ctx) }},
		{bus.TopicGoal, func(ctx context.Context) error { return s.Goal.Refresh(ctx) }},
		{bus.TopicStats, func(ctx context.Context) error { return s.Stats.Refresh(ctx) }},
	}

	cancels := make([]func(), 0, len(bindings))
	for _, bd := range bindings {
		refresh := bd.refresh
		cancels = append(cancels, b.Subscribe(bd.topic, func(topic bus.Topic) {
			go func() {
				_ = refresh(context.Background())
			}()
		}))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// RefreshAll fetches every store once, sequentially. Used at startup and by
// the coarse periodic poll; each call still coalesces with any in-flight
// refresh of the same store.
func (s *Set) RefreshAll(ctx context.Context) {
	_ = s.Library.Refresh(ctx)
	_ = s.Points.Refresh(ctx)
	_ = s.Goal.Refresh(ctx)
	_ = s.Stats.Refresh(ctx)
}

// Reset clears all stores. Called on logout and on auth expiry.
func (s *Set) Reset() {
	s.Library.Reset()
	s.Points.Reset()
	s.Goal.Reset()
	s.Stats.Reset()
}
