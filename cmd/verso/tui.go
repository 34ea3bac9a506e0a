package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"verso/cmd/verso/config"
	"verso/cmd/verso/ui"
	"verso/internal/logging"
)

// pollInterval is the coarse safety net for server-side changes the bus
// cannot see: points from social actions, circle challenge updates by
// other members. Event-driven invalidation handles everything local.
const pollInterval = 30 * time.Second

type tab int

const (
	tabHome tab = iota
	tabLibrary
	tabDiscover
	tabStats
	tabCircles
	tabImport
	tabCount
)

var tabNames = [tabCount]string{"Home", "Library", "Discover", "Stats", "Circles", "Import"}

type pollMsg struct{}

type themeChangedMsg struct{ theme config.Config }

type authExpiredMsg struct{}

// relayoutMsg carries the settled window size once a resize burst ends.
type relayoutMsg struct{ width, height int }

// appModel is the root bubbletea model: a tab bar over the page models.
// Every page gets every message it needs; the active one also gets keys.
type appModel struct {
	app    *app
	styles ui.Styles
	active tab
	width  int
	height int

	home     ui.HomePageModel
	library  ui.LibraryPageModel
	discover ui.DiscoverPageModel
	stats    ui.StatsPageModel
	circles  ui.CirclesPageModel
	imports  ui.ImportPageModel

	// send posts a message into the running program; resize coalesces
	// terminal resize bursts before the pages relayout. Both nil until
	// runTUI starts the program, so tests drive Update directly.
	send   func(tea.Msg)
	resize *ui.ResizeDebouncer

	expired bool
}

func newAppModel(a *app) appModel {
	styles := ui.NewStyles(ui.ThemeByName(a.cfg.Theme))
	deps := ui.Deps{
		Client:   a.client,
		Stores:   a.stores,
		Library:  a.library,
		Importer: a.importer,
	}
	return appModel{
		app:      a,
		styles:   styles,
		home:     ui.NewHomePageModel(deps, styles),
		library:  ui.NewLibraryPageModel(deps, styles),
		discover: ui.NewDiscoverPageModel(deps, styles),
		stats:    ui.NewStatsPageModel(deps, styles),
		circles:  ui.NewCirclesPageModel(deps, styles),
		imports:  ui.NewImportPageModel(deps, styles),
	}
}

// Init starts the initial fetches and the poll loop.
func (m appModel) Init() tea.Cmd {
	a := m.app
	return tea.Batch(
		func() tea.Msg {
			a.stores.RefreshAll(context.Background())
			return ui.StoresChangedMsg{}
		},
		m.home.Init(),
		m.stats.Init(),
		m.circles.Init(),
		m.discover.Init(),
		m.imports.Init(),
		pollTick(),
	)
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Update handles messages.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.send != nil && m.resize != nil {
			// Terminals emit a burst of sizes while dragging; relayout
			// the pages once it settles.
			send := m.send
			m.resize.Resize(msg.Width, msg.Height, func(w, h int) {
				send(relayoutMsg{width: w, height: h})
			})
			return m, nil
		}
		return m.broadcast(msg)

	case relayoutMsg:
		// All pages relayout, not just the visible one.
		return m.broadcast(tea.WindowSizeMsg{Width: msg.width, Height: msg.height})

	case authExpiredMsg:
		m.expired = true
		return m, tea.Quit

	case pollMsg:
		a := m.app
		cmds = append(cmds, func() tea.Msg {
			a.stores.RefreshAll(context.Background())
			return ui.StoresChangedMsg{}
		})
		cmds = append(cmds, pollTick())
		return m, tea.Batch(cmds...)

	case themeChangedMsg:
		m.styles = ui.NewStyles(ui.ThemeByName(msg.theme.Theme))
		logging.UI("theme switched to %s", msg.theme.Theme)
		// Pages hold their own Styles copy; hand them the rebuilt set.
		return m.broadcast(ui.StylesChangedMsg{Styles: m.styles})

	case ui.StoresChangedMsg:
		return m.broadcast(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "shift+tab":
			m.active = (m.active + tabCount - 1) % tabCount
			return m, nil
		}
		// Plain letters and digits belong to a focused text input.
		if !m.capturesText() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1", "2", "3", "4", "5", "6":
				m.active = tab(int(msg.String()[0] - '1'))
				return m, nil
			}
		}
	}

	// Non-key messages reach every page; keys only the active one.
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		return m.broadcast(msg)
	}
	return m.updateActive(msg)
}

// capturesText reports whether the visible page has a focused text input.
func (m appModel) capturesText() bool {
	switch m.active {
	case tabLibrary:
		return m.library.CapturesText()
	case tabDiscover:
		return m.discover.CapturesText()
	case tabImport:
		return m.imports.CapturesText()
	}
	return false
}

// broadcast routes a message to all pages.
func (m appModel) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.home, cmd = m.home.Update(msg)
	cmds = append(cmds, cmd)
	m.library, cmd = m.library.Update(msg)
	cmds = append(cmds, cmd)
	m.discover, cmd = m.discover.Update(msg)
	cmds = append(cmds, cmd)
	m.stats, cmd = m.stats.Update(msg)
	cmds = append(cmds, cmd)
	m.circles, cmd = m.circles.Update(msg)
	cmds = append(cmds, cmd)
	m.imports, cmd = m.imports.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// updateActive routes a message to the visible page only.
func (m appModel) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case tabHome:
		m.home, cmd = m.home.Update(msg)
	case tabLibrary:
		m.library, cmd = m.library.Update(msg)
	case tabDiscover:
		m.discover, cmd = m.discover.Update(msg)
	case tabStats:
		m.stats, cmd = m.stats.Update(msg)
	case tabCircles:
		m.circles, cmd = m.circles.Update(msg)
	case tabImport:
		m.imports, cmd = m.imports.Update(msg)
	}
	return m, cmd
}

// View renders the app.
func (m appModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.viewTabs())
	sb.WriteString("\n\n")

	switch m.active {
	case tabHome:
		sb.WriteString(m.home.View())
	case tabLibrary:
		sb.WriteString(m.library.View())
	case tabDiscover:
		sb.WriteString(m.discover.View())
	case tabStats:
		sb.WriteString(m.stats.View())
	case tabCircles:
		sb.WriteString(m.circles.View())
	case tabImport:
		sb.WriteString(m.imports.View())
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("1-6: tabs  ctrl+c: quit"))
	return sb.String()
}

func (m appModel) viewTabs() string {
	var parts []string
	for i := tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d %s", i+1, tabNames[i])
		if i == m.active {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return strings.Join(parts, "")
}

// runTUI starts the interactive interface.
func runTUI() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in; run: verso login")
	}

	model := newAppModel(a)
	model.resize = ui.NewResizeDebouncer(ui.DefaultResizeDuration)

	var p *tea.Program
	model.send = func(msg tea.Msg) { p.Send(msg) }
	p = tea.NewProgram(model, tea.WithAltScreen())

	// Store changes arrive on refresh goroutines; forward them into the
	// program loop.
	for _, cancel := range []func(){
		a.stores.Library.Subscribe(func() { p.Send(ui.StoresChangedMsg{}) }),
		a.stores.Points.Subscribe(func() { p.Send(ui.StoresChangedMsg{}) }),
		a.stores.Goal.Subscribe(func() { p.Send(ui.StoresChangedMsg{}) }),
		a.stores.Stats.Subscribe(func() { p.Send(ui.StoresChangedMsg{}) }),
	} {
		defer cancel()
	}

	a.session.OnExpire(func() { p.Send(authExpiredMsg{}) })

	// Live config reload: theme changes apply without a restart.
	cfgPath := filepath.Join(a.stateDir, "config.json")
	watcher, err := config.NewWatcher(cfgPath, func(cfg config.Config) {
		p.Send(themeChangedMsg{theme: cfg})
	})
	if err == nil {
		ctx, cancelWatch := context.WithCancel(context.Background())
		defer cancelWatch()
		if err := watcher.Start(ctx); err == nil {
			defer watcher.Stop()
		}
	} else {
		logging.Boot("config watcher unavailable: %v", err)
	}

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(appModel); ok && fm.expired {
		return fmt.Errorf("session expired; run: verso login")
	}
	return nil
}
