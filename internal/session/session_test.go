package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"verso/internal/api"
)

// newTestBackend wires a Manager to an httptest backend the way main does:
// the manager is the gateway's token source and auth-expiry hook.
func newTestBackend(t *testing.T, handler http.Handler) (*Manager, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := NewManager(t.TempDir())
	client := api.New(srv.URL,
		api.WithTokenSource(m),
		api.WithAuthExpiredHook(m.Expire),
	)
	m.Bind(client)
	return m, srv
}

func TestLoginStoresTokenAndFetchesUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"bad credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-abc","token_type":"bearer"}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":1,"username":"alice","email":"a@example.com","created_at":"2024-01-01T00:00:00"}`))
	})

	m, _ := newTestBackend(t, mux)

	if err := m.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated session")
	}
	if got := m.CurrentUser(); got == nil || got.Username != "alice" {
		t.Fatalf("expected current user alice, got %+v", got)
	}
}

func TestLoginPersistsTokenToDisk(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-disk","token_type":"bearer"}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"username":"alice","email":"a@example.com","created_at":"2024-01-01T00:00:00"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	m := NewManager(dir)
	client := api.New(srv.URL, api.WithTokenSource(m), api.WithAuthExpiredHook(m.Expire))
	m.Bind(client)

	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A fresh manager over the same dir restores the token.
	restored := NewManager(dir)
	if restored.Token() != "tok-disk" {
		t.Fatalf("expected restored token, got %q", restored.Token())
	}

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file should be 0600, got %o", perm)
	}
}

func TestConcurrent401ExpiresOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-old","token_type":"bearer"}`))
	})
	var loggedIn atomic.Bool
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if loggedIn.CompareAndSwap(false, true) {
			w.Write([]byte(`{"id":1,"username":"alice","email":"a@example.com","created_at":"2024-01-01T00:00:00"}`))
			return
		}
		// Everything after login fails with 401.
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	})

	m, _ := newTestBackend(t, mux)

	var teardowns int32
	m.OnExpire(func() { atomic.AddInt32(&teardowns, 1) })

	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.FetchUser(context.Background())
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&teardowns); n != 1 {
		t.Fatalf("expected exactly one teardown, got %d", n)
	}
	if m.IsAuthenticated() {
		t.Error("session should be cleared after 401")
	}
	if m.CurrentUser() != nil {
		t.Error("current user should be cleared after 401")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"username":"alice","email":"a@example.com","created_at":"2024-01-01T00:00:00"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	m := NewManager(dir)
	client := api.New(srv.URL, api.WithTokenSource(m))
	m.Bind(client)

	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	m.Logout()

	if m.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); !os.IsNotExist(err) {
		t.Error("session file should be removed on logout")
	}
}

func TestReLoginReArmsExpiry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"username":"alice","email":"a@example.com","created_at":"2024-01-01T00:00:00"}`))
	})

	m, _ := newTestBackend(t, mux)

	var teardowns int32
	m.OnExpire(func() { atomic.AddInt32(&teardowns, 1) })

	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	m.Expire()
	m.Expire() // second expiry in the same epoch is a no-op

	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("re-login: %v", err)
	}
	m.Expire()

	if n := atomic.LoadInt32(&teardowns); n != 2 {
		t.Fatalf("expected one teardown per epoch (2 total), got %d", n)
	}
}
