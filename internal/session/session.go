// Package session owns the client's single authenticated session: the bearer
// token, the current user, and the forced-teardown policy for expired auth.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"verso/internal/api"
	"verso/internal/logging"
)

const sessionFile = "session.json"

// state is the persisted shape of a session.
type state struct {
	Token   string `json:"token"`
	SavedAt int64  `json:"savedAt"` // unix milliseconds
}

// Manager holds the one live session per client. It is the gateway's token
// source and its auth-expiry hook: a 401 anywhere tears the session down
// exactly once, no matter how many calls fail concurrently.
type Manager struct {
	mu       sync.RWMutex
	dir      string
	token    string
	user     *api.User
	expired  bool // torn down since the last successful login
	client   *api.Client
	onExpire []func()
}

// NewManager loads any persisted session from dir (typically ~/.verso).
// A missing or unreadable file just means logged-out.
func NewManager(dir string) *Manager {
	m := &Manager{dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Get(logging.CategorySession).Warn("could not read session file: %v", err)
		}
		return m
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		logging.Get(logging.CategorySession).Warn("corrupt session file, ignoring: %v", err)
		return m
	}

	m.token = st.Token
	if m.token != "" {
		logging.Session("restored session from disk")
	}
	return m
}

// Bind attaches the gateway the manager drives auth flows through.
// Separate from construction because the gateway needs the manager as its
// token source first.
func (m *Manager) Bind(c *api.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = c
}

// Token implements api.TokenSource. Readers always see the latest value.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsAuthenticated reports whether a session token is present.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// CurrentUser returns the fetched profile, or nil before FetchUser succeeds.
func (m *Manager) CurrentUser() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// OnExpire registers a callback for forced session teardown. Callbacks run
// at most once per authenticated epoch.
func (m *Manager) OnExpire(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = append(m.onExpire, fn)
}

// Login authenticates, persists the token, and fetches the user profile.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	c := m.gateway()
	if c == nil {
		return fmt.Errorf("session: no gateway bound")
	}

	tok, err := c.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	m.adopt(tok.AccessToken)
	logging.Session("logged in as %s", username)

	return m.FetchUser(ctx)
}

// Register creates an account, persists its token, and fetches the profile.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) error {
	c := m.gateway()
	if c == nil {
		return fmt.Errorf("session: no gateway bound")
	}

	tok, err := c.Register(ctx, req)
	if err != nil {
		return err
	}
	m.adopt(tok.AccessToken)
	logging.Session("registered as %s", req.Username)

	return m.FetchUser(ctx)
}

// VerifyEmail confirms an email address; the backend answers with a fresh
// session token, which replaces any current one.
func (m *Manager) VerifyEmail(ctx context.Context, token string) error {
	c := m.gateway()
	if c == nil {
		return fmt.Errorf("session: no gateway bound")
	}

	tok, err := c.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}
	m.adopt(tok.AccessToken)
	return m.FetchUser(ctx)
}

// FetchUser refreshes CurrentUser from GET /auth/me. A 401 here has already
// torn the session down via the gateway hook.
func (m *Manager) FetchUser(ctx context.Context) error {
	c := m.gateway()
	if c == nil {
		return fmt.Errorf("session: no gateway bound")
	}

	u, err := c.Me(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return nil
}

// UpdateProfile edits the profile and keeps CurrentUser in sync.
func (m *Manager) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) error {
	c := m.gateway()
	if c == nil {
		return fmt.Errorf("session: no gateway bound")
	}

	u, err := c.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return nil
}

// Logout clears the session deliberately.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.expired = false
	m.mu.Unlock()

	m.removeFile()
	logging.Session("logged out")
}

// Expire is the forced teardown path for 401 responses. It clears the token
// and runs OnExpire callbacks at most once per authenticated epoch, even
// when several calls fail with 401 concurrently.
func (m *Manager) Expire() {
	m.mu.Lock()
	if m.token == "" || m.expired {
		m.mu.Unlock()
		return
	}
	m.expired = true
	m.token = ""
	m.user = nil
	callbacks := make([]func(), len(m.onExpire))
	copy(callbacks, m.onExpire)
	m.mu.Unlock()

	m.removeFile()
	logging.Session("session expired, token cleared")

	for _, fn := range callbacks {
		fn()
	}
}

// adopt installs a new token and re-arms expiry for the new epoch.
func (m *Manager) adopt(token string) {
	m.mu.Lock()
	m.token = token
	m.expired = false
	m.mu.Unlock()

	m.persist(token)
}

func (m *Manager) gateway() *api.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

func (m *Manager) persist(token string) {
	if m.dir == "" {
		return
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		logging.Get(logging.CategorySession).Error("could not create state dir: %v", err)
		return
	}

	data, err := json.MarshalIndent(state{
		Token:   token,
		SavedAt: time.Now().UnixMilli(),
	}, "", "  ")
	if err != nil {
		return
	}

	// Token file is a credential; keep it owner-only.
	if err := os.WriteFile(filepath.Join(m.dir, sessionFile), data, 0600); err != nil {
		logging.Get(logging.CategorySession).Error("could not persist session: %v", err)
	}
}

func (m *Manager) removeFile() {
	if m.dir == "" {
		return
	}
	if err := os.Remove(filepath.Join(m.dir, sessionFile)); err != nil && !os.IsNotExist(err) {
		logging.Get(logging.CategorySession).Warn("could not remove session file: %v", err)
	}
}
