package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"verso/internal/api"
)

// StatsPageModel shows the detailed statistics: monthly chart, genres,
// reading pace, and streaks. The payload is fetched on each visit; the
// coarse counts come from the stats store.
type StatsPageModel struct {
	width  int
	height int
	deps   Deps
	styles Styles

	gen      int
	loading  bool
	detailed api.DetailedStats
	streak   api.Streak
	loaded   bool
	loadErr  error

	render *CachedRender
}

type statsLoadedMsg struct {
	gen      int
	detailed api.DetailedStats
	streak   api.Streak
	err      error
}

// NewStatsPageModel creates the stats page.
func NewStatsPageModel(deps Deps, styles Styles) StatsPageModel {
	return StatsPageModel{
		deps:   deps,
		styles: styles,
		render: NewCachedRender(nil),
	}
}

// Init fetches the detailed payload.
func (m StatsPageModel) Init() tea.Cmd {
	return m.fetch()
}

func (m StatsPageModel) fetch() tea.Cmd {
	gen := m.gen
	client := m.deps.Client
	return func() tea.Msg {
		detailed, err := client.DetailedStats(context.Background())
		if err != nil {
			return statsLoadedMsg{gen: gen, err: err}
		}
		streak, err := client.ReadingStreak(context.Background())
		return statsLoadedMsg{gen: gen, detailed: detailed, streak: streak, err: err}
	}
}

// Update handles messages.
func (m StatsPageModel) Update(msg tea.Msg) (StatsPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.gen++
			m.loading = true
			return m, m.fetch()
		}

	case statsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		if msg.err == nil {
			m.detailed = msg.detailed
			m.streak = msg.streak
			m.loaded = true
		}
		m.render.Invalidate()

	case StoresChangedMsg:
		// Shelf counts changed; the detailed payload is now out of date.
		m.gen++
		return m, m.fetch()

	case StylesChangedMsg:
		m.styles = msg.Styles
		m.render.Invalidate()
	}
	return m, nil
}

// View renders the page.
func (m StatsPageModel) View() string {
	if m.loadErr != nil && !m.loaded {
		return m.styles.Error.Render("stats unavailable: " + m.loadErr.Error())
	}
	if !m.loaded {
		return m.styles.Muted.Render("crunching the numbers...")
	}

	// The payload is immutable per fetch, so the generation stands in for
	// every field it carries.
	key := []interface{}{m.width, m.gen}
	return m.render.Render(key, func() string {
		var sb strings.Builder
		sb.WriteString(m.styles.Title.Render("Reading Statistics"))
		sb.WriteString("\n")
		sb.WriteString(m.viewOverview())
		sb.WriteString("\n")
		sb.WriteString(m.viewStreak())
		sb.WriteString("\n")
		sb.WriteString(m.viewMonthly())
		sb.WriteString(m.viewGenres())
		return sb.String()
	})
}

func (m StatsPageModel) viewOverview() string {
	o := m.detailed.Overview
	t := NewSimpleTable("", []string{"Books", "Read", "Reading", "Want", "Pages", "Avg rating"})
	t.AddRow(
		strconv.Itoa(o.TotalBooks),
		strconv.Itoa(o.BooksRead),
		strconv.Itoa(o.CurrentlyReading),
		strconv.Itoa(o.WantToRead),
		strconv.Itoa(o.TotalPages),
		fmt.Sprintf("%.1f", o.AverageRatingGiven),
	)
	return t.View(m.styles)
}

func (m StatsPageModel) viewStreak() string {
	s := m.streak
	line := fmt.Sprintf("streak %d month(s), longest %d  ·  %d this month, %d this year",
		s.CurrentStreakMonths, s.LongestStreakMonths, s.BooksThisMonth, s.BooksThisYear)
	if s.MostProductiveMonth != nil {
		line += fmt.Sprintf("  ·  best: %s (%d)", s.MostProductiveMonth.Month, s.MostProductiveMonth.Count)
	}
	return m.styles.Body.Render(line) + "\n"
}

// viewMonthly draws a bar per month, most recent last.
func (m StatsPageModel) viewMonthly() string {
	if len(m.detailed.BooksByMonth) == 0 {
		return ""
	}

	months := make([]string, 0, len(m.detailed.BooksByMonth))
	maxCount := 1
	for month, count := range m.detailed.BooksByMonth {
		months = append(months, month)
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Strings(months)
	if len(months) > 12 {
		months = months[len(months)-12:]
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Subtitle.Render("Books per month"))
	sb.WriteString("\n")
	for _, month := range months {
		count := m.detailed.BooksByMonth[month]
		bar := strings.Repeat("▇", count*20/maxCount)
		sb.WriteString(fmt.Sprintf("  %s %s %d\n", month, m.styles.ProgressBar.Render(bar), count))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m StatsPageModel) viewGenres() string {
	if len(m.detailed.Genres) == 0 {
		return ""
	}

	type genreCount struct {
		name  string
		count int
	}
	genres := make([]genreCount, 0, len(m.detailed.Genres))
	for name, count := range m.detailed.Genres {
		genres = append(genres, genreCount{name, count})
	}
	sort.Slice(genres, func(i, j int) bool {
		if genres[i].count != genres[j].count {
			return genres[i].count > genres[j].count
		}
		return genres[i].name < genres[j].name
	})
	if len(genres) > 8 {
		genres = genres[:8]
	}

	t := NewSimpleTable("Top genres", []string{"Genre", "Books"})
	for _, g := range genres {
		t.AddRow(g.name, strconv.Itoa(g.count))
	}
	return t.View(m.styles)
}
