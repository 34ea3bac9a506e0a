package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"verso/internal/api"
	"verso/internal/library"
	"verso/internal/store"
)

// HomePageModel is the landing page: points, goal progress, the shelf
// summary, and the social feed. Everything except the feed comes straight
// from the stores; the feed is a one-shot fetch on each visit.
type HomePageModel struct {
	width  int
	height int
	deps   Deps
	styles Styles

	feed    []api.Activity
	feedErr error
	feedGen int

	recs        *api.Recommendations
	recsErr     error
	recsGen     int
	recsLoading bool

	renderer *glamour.TermRenderer
	render   *CachedRender
}

type feedMsg struct {
	gen  int
	feed []api.Activity
	err  error
}

type recsMsg struct {
	gen  int
	recs api.Recommendations
	err  error
}

// NewHomePageModel creates the home page.
func NewHomePageModel(deps Deps, styles Styles) HomePageModel {
	return HomePageModel{
		deps:     deps,
		styles:   styles,
		renderer: newMarkdownRenderer(styles),
		render:   NewCachedRender(nil),
	}
}

// newMarkdownRenderer builds the glamour renderer for the recommendation
// blurb, matched to the theme.
func newMarkdownRenderer(styles Styles) *glamour.TermRenderer {
	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}
	return renderer
}

// Init fetches the feed.
func (m HomePageModel) Init() tea.Cmd {
	return m.fetchFeed()
}

func (m HomePageModel) fetchFeed() tea.Cmd {
	gen := m.feedGen
	client := m.deps.Client
	return func() tea.Msg {
		feed, err := client.Feed(context.Background(), 20)
		return feedMsg{gen: gen, feed: feed, err: err}
	}
}

func (m HomePageModel) fetchRecommendations() tea.Cmd {
	gen := m.recsGen
	client := m.deps.Client
	return func() tea.Msg {
		recs, err := client.Recommendations(context.Background(), 5)
		return recsMsg{gen: gen, recs: recs, err: err}
	}
}

// Update handles messages.
func (m HomePageModel) Update(msg tea.Msg) (HomePageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.feedGen++
			return m, m.fetchFeed()
		case "g":
			m.recsGen++
			m.recsLoading = true
			m.render.Invalidate()
			return m, m.fetchRecommendations()
		}

	case feedMsg:
		// A newer fetch is in flight; this result is stale.
		if msg.gen != m.feedGen {
			return m, nil
		}
		m.feed = msg.feed
		m.feedErr = msg.err
		m.render.Invalidate()

	case recsMsg:
		if msg.gen != m.recsGen {
			return m, nil
		}
		m.recsLoading = false
		if msg.err != nil {
			m.recsErr = msg.err
		} else {
			m.recs = &msg.recs
			m.recsErr = nil
		}
		m.render.Invalidate()

	case StoresChangedMsg:
		m.render.Invalidate()

	case StylesChangedMsg:
		m.styles = msg.Styles
		m.renderer = newMarkdownRenderer(msg.Styles)
		m.render.Invalidate()
	}
	return m, nil
}

// View renders the page.
func (m HomePageModel) View() string {
	points := m.deps.Stores.Points.Get()
	goal := m.deps.Stores.Goal.Get()
	stats := m.deps.Stores.Stats.Get()

	key := []interface{}{
		m.width, int(points.State), points.Value.Points,
		int(goal.State), goal.Value.Progress, goalTarget(goal.Value), goalYear(goal.Value),
		int(stats.State), stats.Value.BooksRead, stats.Value.CurrentlyReading,
		stats.Value.WantToRead, stats.Value.BooksOwned, stats.Value.TotalPagesRead,
		m.feedGen, len(m.feed), m.feedErr != nil,
		m.recs != nil, m.recsErr != nil, m.recsLoading, m.recsGen,
	}
	return m.render.Render(key, func() string {
		var sb strings.Builder

		sb.WriteString(m.styles.Title.Render("Welcome back"))
		sb.WriteString("\n")

		sb.WriteString(m.viewPoints(points))
		sb.WriteString("\n")
		sb.WriteString(m.viewGoal(goal))
		sb.WriteString("\n")
		sb.WriteString(m.viewStats(stats))
		sb.WriteString("\n")
		sb.WriteString(m.viewFeed())
		sb.WriteString("\n")
		sb.WriteString(m.viewRecommendations())

		return sb.String()
	})
}

func (m HomePageModel) viewPoints(snap store.Snapshot[api.Points]) string {
	switch {
	case snap.HasValue:
		line := fmt.Sprintf("★ %d points", snap.Value.Points)
		if snap.State == store.StateFailed {
			line += m.styles.Muted.Render("  (offline, showing last known)")
		}
		return m.styles.Bold.Render(line) + "\n" +
			m.styles.Muted.Render("  earn: +5 add a book, +10 rate, +20 review, +1 like received")
	case snap.State == store.StateFailed:
		return m.styles.Error.Render("points unavailable")
	default:
		return m.styles.Muted.Render("loading points...")
	}
}

func (m HomePageModel) viewGoal(snap store.Snapshot[api.Goal]) string {
	if !snap.HasValue || !snap.Value.IsSet() {
		return m.styles.Muted.Render("No reading goal set. Try: verso goal set 24")
	}
	g := snap.Value
	pct := library.ProgressPercent(g.Progress, *g.Goal)
	bar := m.styles.RenderProgressBar(pct, 30)
	line := fmt.Sprintf("%s %s %d/%d books (%d%%)",
		m.styles.Bold.Render(fmt.Sprintf("%d goal:", *g.Year)), bar, g.Progress, *g.Goal, pct)
	if pct >= 100 {
		return line + "  " + m.styles.Success.Render("Goal complete!")
	}
	return line + "  " + m.styles.Muted.Render(fmt.Sprintf("%d to go", *g.Goal-g.Progress))
}

func (m HomePageModel) viewStats(snap store.Snapshot[api.ReadingStats]) string {
	if !snap.HasValue {
		return m.styles.Muted.Render("loading shelves...")
	}
	s := snap.Value
	return m.styles.Body.Render(fmt.Sprintf(
		"reading %d  ·  want to read %d  ·  read %d  ·  owned %d  ·  %d pages total",
		s.CurrentlyReading, s.WantToRead, s.BooksRead, s.BooksOwned, s.TotalPagesRead))
}

func (m HomePageModel) viewFeed() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Subtitle.Render("Friends are reading"))
	sb.WriteString("\n")

	if m.feedErr != nil {
		sb.WriteString(m.styles.Error.Render("feed unavailable: " + m.feedErr.Error()))
		return sb.String()
	}
	if len(m.feed) == 0 {
		sb.WriteString(m.styles.Muted.Render("Nothing here yet. Activity from readers you follow shows up here."))
		return sb.String()
	}

	for i, a := range m.feed {
		if i >= 10 {
			break
		}
		sb.WriteString(m.styles.Body.Render("  " + formatActivity(a)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m HomePageModel) viewRecommendations() string {
	switch {
	case m.recsLoading:
		return m.styles.Muted.Render("finding books for you...")
	case m.recsErr != nil:
		return m.styles.Error.Render("recommendations unavailable: " + m.recsErr.Error())
	case m.recs == nil:
		return m.styles.Muted.Render("Press g for book recommendations")
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Subtitle.Render("Recommended for you"))
	sb.WriteString("\n")
	for _, b := range m.recs.Books {
		line := fmt.Sprintf("  %s by %s", b.Title, b.Author)
		sb.WriteString(m.styles.Body.Render(line))
		sb.WriteString("\n")
	}
	if m.recs.Reasoning != "" {
		reasoning := m.recs.Reasoning
		if m.renderer != nil {
			if out, err := m.renderer.Render(reasoning); err == nil {
				reasoning = out
			}
		}
		sb.WriteString(reasoning)
	}
	return sb.String()
}

func goalTarget(g api.Goal) int {
	if g.Goal == nil {
		return 0
	}
	return *g.Goal
}

func goalYear(g api.Goal) int {
	if g.Year == nil {
		return 0
	}
	return *g.Year
}

// formatActivity turns a feed item into one line of text.
func formatActivity(a api.Activity) string {
	title := ""
	if a.Book != nil {
		title = fmt.Sprintf(" %q", a.Book.Title)
	}
	switch a.ActivityType {
	case "book_added":
		return fmt.Sprintf("%s added%s", a.User.Username, title)
	case "book_finished":
		return fmt.Sprintf("%s finished%s", a.User.Username, title)
	case "book_rated":
		return fmt.Sprintf("%s rated%s", a.User.Username, title)
	case "review_added":
		return fmt.Sprintf("%s reviewed%s", a.User.Username, title)
	case "goal_set":
		return fmt.Sprintf("%s set a reading goal", a.User.Username)
	default:
		if a.Content != nil {
			return fmt.Sprintf("%s: %s", a.User.Username, *a.Content)
		}
		return a.User.Username
	}
}
