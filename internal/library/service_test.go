package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"verso/internal/api"
	"verso/internal/bus"
)

// topicRecorder subscribes to every topic and records what was published.
type topicRecorder struct {
	got []bus.Topic
}

func recordTopics(b *bus.Bus) *topicRecorder {
	rec := &topicRecorder{}
	for _, tp := range []bus.Topic{bus.TopicLibrary, bus.TopicPoints, bus.TopicGoal, bus.TopicStats} {
		tp := tp
		b.Subscribe(tp, func(bus.Topic) { rec.got = append(rec.got, tp) })
	}
	return rec
}

func (r *topicRecorder) assert(t *testing.T, want ...bus.Topic) {
	t.Helper()
	if len(r.got) != len(want) {
		t.Fatalf("published topics %v, want %v", r.got, want)
	}
	for i := range want {
		if r.got[i] != want[i] {
			t.Fatalf("published topics %v, want %v", r.got, want)
		}
	}
}

func TestAddBookPublishesAllTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/my-books" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := bus.New()
	rec := recordTopics(b)
	svc := NewService(api.New(srv.URL), b)

	err := svc.AddBook(context.Background(), api.AddBookRequest{BookID: 7, Status: api.StatusWantToRead})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	rec.assert(t, bus.TopicLibrary, bus.TopicPoints, bus.TopicGoal, bus.TopicStats)
}

func TestFailedMutationPublishesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Book already in your library"})
	}))
	defer srv.Close()

	b := bus.New()
	rec := recordTopics(b)
	svc := NewService(api.New(srv.URL), b)

	err := svc.AddBook(context.Background(), api.AddBookRequest{BookID: 7, Status: api.StatusRead})
	if err == nil {
		t.Fatal("AddBook should fail on 409")
	}
	rec.assert(t) // nothing
}

func TestUpdateProgressAutoFinishes(t *testing.T) {
	var statusUpdates []string
	mux := http.NewServeMux()
	mux.HandleFunc("/my-books/7/progress", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProgressUpdate{CurrentPage: 300, Percentage: 100})
	})
	mux.HandleFunc("/my-books/7", func(w http.ResponseWriter, r *http.Request) {
		var upd api.UpdateBookRequest
		json.NewDecoder(r.Body).Decode(&upd)
		if upd.Status != nil {
			statusUpdates = append(statusUpdates, *upd.Status)
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := bus.New()
	rec := recordTopics(b)
	svc := NewService(api.New(srv.URL), b)

	out, err := svc.UpdateProgress(context.Background(), 7, 300, 300)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if out.Percentage != 100 {
		t.Fatalf("percentage = %d, want 100", out.Percentage)
	}
	if len(statusUpdates) != 1 || statusUpdates[0] != api.StatusRead {
		t.Fatalf("status updates = %v, want one move to read", statusUpdates)
	}
	rec.assert(t, bus.TopicLibrary, bus.TopicPoints, bus.TopicGoal, bus.TopicStats)
}

func TestUpdateProgressBelowTotalKeepsStatus(t *testing.T) {
	statusTouched := false
	mux := http.NewServeMux()
	mux.HandleFunc("/my-books/7/progress", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProgressUpdate{CurrentPage: 150, Percentage: 50})
	})
	mux.HandleFunc("/my-books/7", func(w http.ResponseWriter, r *http.Request) {
		statusTouched = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := NewService(api.New(srv.URL), bus.New())
	if _, err := svc.UpdateProgress(context.Background(), 7, 150, 300); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if statusTouched {
		t.Fatal("status updated before the book was finished")
	}
}

func TestAutoFinishFailureStillPublishes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/my-books/7/progress", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProgressUpdate{CurrentPage: 300, Percentage: 100})
	})
	mux.HandleFunc("/my-books/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := bus.New()
	rec := recordTopics(b)
	svc := NewService(api.New(srv.URL), b)

	// The page update landed; the follow-up status move failing must not
	// turn the whole mutation into a failure.
	if _, err := svc.UpdateProgress(context.Background(), 7, 300, 300); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	rec.assert(t, bus.TopicLibrary, bus.TopicPoints, bus.TopicGoal, bus.TopicStats)
}

func TestSetGoalPublishesGoalOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("goal"); got != "24" {
			t.Errorf("goal query = %q, want 24", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := bus.New()
	rec := recordTopics(b)
	svc := NewService(api.New(srv.URL), b)

	if err := svc.SetGoal(context.Background(), 24, 2026); err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	rec.assert(t, bus.TopicGoal)
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		current, total, want int
	}{
		{0, 300, 0},
		{150, 300, 50},
		{299, 300, 100}, // rounds up
		{300, 300, 100},
		{450, 300, 100}, // clamped
		{100, 0, 0},     // unknown total
		{-5, 300, 0},
	}
	for _, c := range cases {
		if got := ProgressPercent(c.current, c.total); got != c.want {
			t.Errorf("ProgressPercent(%d, %d) = %d, want %d", c.current, c.total, got, c.want)
		}
	}
}
