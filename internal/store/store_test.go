package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestRefreshSuccess(t *testing.T) {
	st := New("test", func(ctx context.Context) (int, error) { return 42, nil })

	if got := st.Get(); got.State != StateEmpty || got.HasValue {
		t.Fatalf("fresh store state = %v hasValue = %v", got.State, got.HasValue)
	}

	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := st.Get()
	if snap.State != StateReady || !snap.HasValue || snap.Value != 42 {
		t.Fatalf("snapshot = %+v, want ready 42", snap)
	}
	if snap.FetchedAt.IsZero() {
		t.Fatal("FetchedAt not set")
	}
}

func TestRefreshKeepsStaleValueOnFailure(t *testing.T) {
	var fail atomic.Bool
	st := New("test", func(ctx context.Context) (string, error) {
		if fail.Load() {
			return "", errors.New("backend down")
		}
		return "good", nil
	})

	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	fail.Store(true)
	if err := st.Refresh(context.Background()); err == nil {
		t.Fatal("second Refresh should fail")
	}

	snap := st.Get()
	if snap.State != StateFailed {
		t.Fatalf("state = %v, want failed", snap.State)
	}
	if !snap.HasValue || snap.Value != "good" {
		t.Fatalf("stale value lost: %+v", snap)
	}
	if snap.Err == nil {
		t.Fatal("Err not set on failure")
	}

	// Recovery clears the error.
	fail.Store(false)
	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("third Refresh: %v", err)
	}
	snap = st.Get()
	if snap.State != StateReady || snap.Err != nil {
		t.Fatalf("after recovery: %+v", snap)
	}
}

func TestConcurrentRefreshCoalesces(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	gate := make(chan struct{})
	st := New("test", func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-gate
		return 7, nil
	})

	const n = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := st.Refresh(context.Background()); err != nil {
				t.Errorf("Refresh: %v", err)
			}
		}()
	}

	close(start)
	// Let every goroutine reach the in-flight call before it resolves.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch ran %d times, want 1", got)
	}
	if snap := st.Get(); snap.Value != 7 {
		t.Fatalf("value = %d, want 7", snap.Value)
	}
}

func TestSubscribeNotifiedInOrder(t *testing.T) {
	st := New("test", func(ctx context.Context) (int, error) { return 1, nil })

	var order []string
	st.Subscribe(func() { order = append(order, "a") })
	st.Subscribe(func() { order = append(order, "b") })

	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// One loading notification and one ready notification per subscriber.
	want := []string{"a", "b", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("notifications = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("notifications = %v, want %v", order, want)
		}
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	st := New("test", func(ctx context.Context) (int, error) { return 1, nil })

	calls := 0
	cancel := st.Subscribe(func() { calls++ })
	cancel()
	cancel()

	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if calls != 0 {
		t.Fatalf("handler ran %d times after unsubscribe", calls)
	}
}

func TestHydrateOnlyWhileEmpty(t *testing.T) {
	st := New("test", func(ctx context.Context) (int, error) { return 2, nil })

	savedAt := time.Now().Add(-time.Hour)
	st.Hydrate(1, savedAt)

	snap := st.Get()
	if snap.State != StateReady || snap.Value != 1 || !snap.FetchedAt.Equal(savedAt) {
		t.Fatalf("hydrated snapshot = %+v", snap)
	}

	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	st.Hydrate(99, time.Now())

	if snap := st.Get(); snap.Value != 2 {
		t.Fatalf("hydrate clobbered fetched value: %+v", snap)
	}
}

func TestReset(t *testing.T) {
	st := New("test", func(ctx context.Context) (int, error) { return 5, nil })
	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	notified := false
	st.Subscribe(func() { notified = true })
	st.Reset()

	snap := st.Get()
	if snap.State != StateEmpty || snap.HasValue || snap.Value != 0 {
		t.Fatalf("after reset: %+v", snap)
	}
	if !notified {
		t.Fatal("reset did not notify subscribers")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if _, ok, err := cache.Load("missing", &payload{}); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := cache.Save("p", payload{Name: "x", Count: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cache.Save("p", payload{Name: "y", Count: 4}); err != nil {
		t.Fatalf("Save (overwrite): %v", err)
	}

	var got payload
	savedAt, ok, err := cache.Load("p", &got)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.Name != "y" || got.Count != 4 {
		t.Fatalf("Load = %+v, want latest write", got)
	}
	if savedAt.IsZero() {
		t.Fatal("saved_at not recorded")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := cache.Load("p", &got); ok {
		t.Fatal("snapshot survived Clear")
	}
}
