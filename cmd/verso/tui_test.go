package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"verso/cmd/verso/config"
	"verso/cmd/verso/ui"
	"verso/internal/api"
	"verso/internal/bus"
	"verso/internal/importer"
	"verso/internal/library"
	"verso/internal/store"
)

func testApp(t *testing.T) *app {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	b := bus.New()
	stores := store.NewSet(client, nil)
	return &app{
		client:   client,
		bus:      b,
		stores:   stores,
		library:  library.NewService(client, b),
		importer: importer.New(client, b),
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDigitKeysSwitchTabs(t *testing.T) {
	m := newAppModel(testApp(t))

	next, _ := m.Update(key("3"))
	m = next.(appModel)
	if m.active != tabDiscover {
		t.Fatalf("active = %d, want discover", m.active)
	}

	next, _ = m.Update(key("1"))
	m = next.(appModel)
	if m.active != tabHome {
		t.Fatalf("active = %d, want home", m.active)
	}
}

func TestShiftTabWrapsBackward(t *testing.T) {
	m := newAppModel(testApp(t))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(appModel)
	if m.active != tabImport {
		t.Fatalf("active = %d, want import (wrap from home)", m.active)
	}
}

func TestDigitsReachFocusedInput(t *testing.T) {
	m := newAppModel(testApp(t))
	m.active = tabDiscover

	// The search input has focus, so "2" is typed, not a tab switch.
	next, _ := m.Update(key("2"))
	m = next.(appModel)
	if m.active != tabDiscover {
		t.Fatalf("digit switched tabs while a text input was focused")
	}
}

func TestQuitKeyIgnoredWhileTyping(t *testing.T) {
	m := newAppModel(testApp(t))
	m.active = tabDiscover

	_, cmd := m.Update(key("q"))
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatalf("q quit the app while a text input was focused")
		}
	}
}

func TestAuthExpiredQuits(t *testing.T) {
	m := newAppModel(testApp(t))

	next, cmd := m.Update(authExpiredMsg{})
	m = next.(appModel)
	if !m.expired {
		t.Fatalf("expired flag not set")
	}
	if cmd == nil {
		t.Fatalf("auth expiry did not quit")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Fatalf("auth expiry did not quit")
	}
}

func TestThemeChangeRestylesRoot(t *testing.T) {
	m := newAppModel(testApp(t))
	if !m.styles.Theme.IsDark {
		t.Fatal("default theme should be dark")
	}

	next, _ := m.Update(themeChangedMsg{theme: config.Config{Theme: "light"}})
	m = next.(appModel)
	if m.styles.Theme.IsDark {
		t.Fatal("root styles kept the old theme")
	}
}

func TestResizeWithoutProgramBroadcastsDirectly(t *testing.T) {
	m := newAppModel(testApp(t))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(appModel)
	if m.width != 100 || m.height != 40 {
		t.Fatalf("size not recorded: %dx%d", m.width, m.height)
	}
}

func TestResizeDebouncedThroughProgram(t *testing.T) {
	m := newAppModel(testApp(t))
	m.resize = ui.NewResizeDebouncer(30 * time.Millisecond)

	sent := make(chan tea.Msg, 4)
	m.send = func(msg tea.Msg) { sent <- msg }

	// A drag burst: three sizes in quick succession.
	for _, w := range []int{90, 100, 110} {
		next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: 40})
		m = next.(appModel)
	}

	select {
	case msg := <-sent:
		rl, ok := msg.(relayoutMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		if rl.width != 110 || rl.height != 40 {
			t.Fatalf("relayout got %dx%d, want the last size 110x40", rl.width, rl.height)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced relayout never fired")
	}

	select {
	case msg := <-sent:
		t.Fatalf("burst produced a second relayout: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	// The settled size reaches the pages as one broadcast.
	next, _ := m.Update(relayoutMsg{width: 110, height: 40})
	m = next.(appModel)
	if m.width != 110 {
		t.Fatalf("width = %d", m.width)
	}
}

func TestViewShowsTabBar(t *testing.T) {
	m := newAppModel(testApp(t))
	m.width, m.height = 100, 40

	out := m.View()
	for _, name := range tabNames {
		if !strings.Contains(out, name) {
			t.Fatalf("tab bar missing %q", name)
		}
	}
}
