package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"verso/internal/api"
)

// CirclesPageModel lists the caller's reading circles and drills into one:
// members, leaderboard, active challenges. Detail fetches carry a generation
// number; flipping quickly between circles must never paint circle A's
// leaderboard under circle B's name.
type CirclesPageModel struct {
	width  int
	height int
	deps   Deps
	styles Styles

	circles    []api.Circle
	listErr    error
	listGen    int
	table      table.Model
	showDetail bool

	detailGen   int
	detail      api.CircleDetail
	leaderboard []api.LeaderboardRow
	challenges  []api.Challenge
	detailErr   error
	loading     bool
}

type circlesLoadedMsg struct {
	gen     int
	circles []api.Circle
	err     error
}

type circleDetailMsg struct {
	gen         int
	detail      api.CircleDetail
	leaderboard []api.LeaderboardRow
	challenges  []api.Challenge
	err         error
}

// NewCirclesPageModel creates the circles page.
func NewCirclesPageModel(deps Deps, styles Styles) CirclesPageModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Circle", Width: 30},
			{Title: "Members", Width: 8},
			{Title: "Created by", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	return CirclesPageModel{deps: deps, styles: styles, table: t}
}

// Init fetches the circle list.
func (m CirclesPageModel) Init() tea.Cmd {
	return m.fetchList()
}

func (m CirclesPageModel) fetchList() tea.Cmd {
	gen := m.listGen
	client := m.deps.Client
	return func() tea.Msg {
		circles, err := client.MyCircles(context.Background())
		return circlesLoadedMsg{gen: gen, circles: circles, err: err}
	}
}

func (m CirclesPageModel) fetchDetail(circleID int) tea.Cmd {
	gen := m.detailGen
	client := m.deps.Client
	return func() tea.Msg {
		detail, err := client.CircleDetail(context.Background(), circleID)
		if err != nil {
			return circleDetailMsg{gen: gen, err: err}
		}
		leaderboard, err := client.CircleLeaderboard(context.Background(), circleID)
		if err != nil {
			return circleDetailMsg{gen: gen, err: err}
		}
		challenges, err := client.Challenges(context.Background(), circleID, true)
		return circleDetailMsg{gen: gen, detail: detail, leaderboard: leaderboard, challenges: challenges, err: err}
	}
}

// Update handles messages.
func (m CirclesPageModel) Update(msg tea.Msg) (CirclesPageModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case circlesLoadedMsg:
		if msg.gen != m.listGen {
			return m, nil
		}
		m.circles = msg.circles
		m.listErr = msg.err
		rows := make([]table.Row, 0, len(m.circles))
		for _, c := range m.circles {
			rows = append(rows, table.Row{c.Name, strconv.Itoa(c.MemberCount), c.CreatorUsername})
		}
		m.table.SetRows(rows)
		return m, nil

	case circleDetailMsg:
		if msg.gen != m.detailGen {
			// Stale response for a circle the user already left.
			return m, nil
		}
		m.loading = false
		m.detailErr = msg.err
		if msg.err == nil {
			m.detail = msg.detail
			m.leaderboard = msg.leaderboard
			m.challenges = msg.challenges
		}
		return m, nil

	case StylesChangedMsg:
		m.styles = msg.Styles
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if !m.showDetail {
				if c := m.selectedCircle(); c != nil {
					m.showDetail = true
					m.loading = true
					m.detailErr = nil
					m.detailGen++
					return m, m.fetchDetail(c.ID)
				}
			}
			return m, nil
		case "esc":
			if m.showDetail {
				m.showDetail = false
				m.detailGen++ // in-flight detail fetches become stale
			}
			return m, nil
		case "r":
			if !m.showDetail {
				m.listGen++
				return m, m.fetchList()
			}
		}
	}

	if !m.showDetail {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *CirclesPageModel) selectedCircle() *api.Circle {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.circles) {
		return nil
	}
	return &m.circles[idx]
}

// View renders the page.
func (m CirclesPageModel) View() string {
	if m.showDetail {
		return m.viewDetail()
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Reading Circles"))
	sb.WriteString("\n")

	switch {
	case m.listErr != nil:
		sb.WriteString(m.styles.Error.Render("circles unavailable: " + m.listErr.Error()))
	case len(m.circles) == 0:
		sb.WriteString(m.styles.Muted.Render("No circles yet. Try: verso circles create"))
	default:
		sb.WriteString(m.table.View())
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("enter: open  r: reload"))
	return sb.String()
}

func (m CirclesPageModel) viewDetail() string {
	var sb strings.Builder

	if m.loading {
		return m.styles.Muted.Render("opening circle...")
	}
	if m.detailErr != nil {
		return m.styles.Error.Render("circle unavailable: " + m.detailErr.Error())
	}

	sb.WriteString(m.styles.Title.Render(m.detail.Name))
	sb.WriteString("\n")
	if m.detail.Description != nil {
		sb.WriteString(m.styles.Subtitle.Render(*m.detail.Description))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("invite code: %s", m.detail.InviteCode)))
	sb.WriteString("\n\n")

	if len(m.leaderboard) > 0 {
		t := NewSimpleTable("Leaderboard", []string{"#", "Reader", "Points", "Challenges"})
		for _, row := range m.leaderboard {
			name := row.Username
			if row.IsCurrentUser {
				name += " (you)"
			}
			t.AddRow(strconv.Itoa(row.Rank), name, strconv.Itoa(row.CirclePoints), strconv.Itoa(row.ChallengesCompleted))
		}
		sb.WriteString(t.View(m.styles))
	}

	if len(m.challenges) > 0 {
		sb.WriteString(m.styles.Subtitle.Render("Active challenges"))
		sb.WriteString("\n")
		for _, ch := range m.challenges {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", m.styles.Bold.Render(ch.Name), m.challengeProgress(ch)))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("esc: back"))
	return sb.String()
}

func (m CirclesPageModel) challengeProgress(ch api.Challenge) string {
	target := ""
	switch {
	case ch.TargetBookTitle != nil:
		target = "read " + *ch.TargetBookTitle
	case ch.TargetCount != nil:
		target = fmt.Sprintf("%d books", *ch.TargetCount)
	case ch.TargetGenre != nil:
		target = *ch.TargetGenre + " genre"
	}

	done := 0
	for _, p := range ch.Progress {
		if p.Completed {
			done++
		}
	}
	return m.styles.Muted.Render(fmt.Sprintf("%s · %d/%d done · ends %s", target, done, len(ch.Progress), ch.EndDate))
}
