package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"verso/internal/api"
)

// DiscoverPageModel searches the external book catalog. Keystrokes debounce
// into one search; every search carries a generation number and results from
// a superseded generation are dropped, so a slow early response can never
// overwrite the results of a later query.
type DiscoverPageModel struct {
	width  int
	height int
	deps   Deps
	styles Styles

	searchInput textinput.Model
	yearFrom    textinput.Model
	yearTo      textinput.Model
	focusIdx    int // 0 search, 1 yearFrom, 2 yearTo, 3 results

	gen       int
	searching bool
	results   []api.SearchResult
	searchErr error
	table     table.Model

	status      string
	statusIsErr bool
}

type searchTickMsg struct{ gen int }

type searchResultMsg struct {
	gen     int
	results []api.SearchResult
	err     error
}

// NewDiscoverPageModel creates the discover page.
func NewDiscoverPageModel(deps Deps, styles Styles) DiscoverPageModel {
	si := textinput.New()
	si.Placeholder = "Search books..."
	si.CharLimit = 100
	si.Width = 40
	si.Focus()

	yf := textinput.New()
	yf.Placeholder = "from"
	yf.CharLimit = 4
	yf.Width = 6

	yt := textinput.New()
	yt.Placeholder = "to"
	yt.CharLimit = 4
	yt.Width = 6

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Title", Width: 36},
			{Title: "Author", Width: 24},
			{Title: "Year", Width: 6},
			{Title: "Rating", Width: 6},
		}),
		table.WithHeight(12),
	)

	return DiscoverPageModel{
		deps:        deps,
		styles:      styles,
		searchInput: si,
		yearFrom:    yf,
		yearTo:      yt,
		table:       t,
	}
}

// Init initializes the model.
func (m DiscoverPageModel) Init() tea.Cmd {
	return textinput.Blink
}

// CapturesText reports whether a text input currently owns keystrokes.
func (m DiscoverPageModel) CapturesText() bool {
	return m.focusIdx < 3
}

// scheduleSearch bumps the generation and arms the debounce timer.
func (m *DiscoverPageModel) scheduleSearch() tea.Cmd {
	m.gen++
	gen := m.gen
	return tea.Tick(SearchDebounceDuration, func(time.Time) tea.Msg {
		return searchTickMsg{gen: gen}
	})
}

func (m DiscoverPageModel) runSearch() tea.Cmd {
	gen := m.gen
	query := strings.TrimSpace(m.searchInput.Value())
	yearFrom := atoiOrZero(m.yearFrom.Value())
	yearTo := atoiOrZero(m.yearTo.Value())
	client := m.deps.Client

	return func() tea.Msg {
		results, err := client.SearchExternal(context.Background(), query, 20, yearFrom, yearTo)
		return searchResultMsg{gen: gen, results: results, err: err}
	}
}

// Update handles messages.
func (m DiscoverPageModel) Update(msg tea.Msg) (DiscoverPageModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case searchTickMsg:
		// Only the latest scheduled search fires.
		if msg.gen != m.gen {
			return m, nil
		}
		if strings.TrimSpace(m.searchInput.Value()) == "" {
			m.results = nil
			m.searchErr = nil
			m.table.SetRows(nil)
			return m, nil
		}
		m.searching = true
		return m, m.runSearch()

	case searchResultMsg:
		if msg.gen != m.gen {
			// Response to a query the user has already replaced.
			return m, nil
		}
		m.searching = false
		m.results = msg.results
		m.searchErr = msg.err
		m.reloadRows()
		return m, nil

	case mutationDoneMsg:
		m.status = msg.status.Text
		m.statusIsErr = msg.status.IsErr
		return m, nil

	case StylesChangedMsg:
		m.styles = msg.Styles
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.focusIdx = (m.focusIdx + 1) % 4
			m.applyFocus()
			return m, nil
		case "a", "w", "o":
			if m.focusIdx == 3 {
				if r := m.selectedResult(); r != nil {
					return m, m.addResult(*r, statusForKey(msg.String()))
				}
				return m, nil
			}
		}
	}

	switch m.focusIdx {
	case 0:
		before := m.searchInput.Value()
		m.searchInput, cmd = m.searchInput.Update(msg)
		if m.searchInput.Value() != before {
			return m, tea.Batch(cmd, m.scheduleSearch())
		}
	case 1:
		before := m.yearFrom.Value()
		m.yearFrom, cmd = m.yearFrom.Update(msg)
		if m.yearFrom.Value() != before {
			return m, tea.Batch(cmd, m.scheduleSearch())
		}
	case 2:
		before := m.yearTo.Value()
		m.yearTo, cmd = m.yearTo.Update(msg)
		if m.yearTo.Value() != before {
			return m, tea.Batch(cmd, m.scheduleSearch())
		}
	case 3:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *DiscoverPageModel) applyFocus() {
	m.searchInput.Blur()
	m.yearFrom.Blur()
	m.yearTo.Blur()
	m.table.Blur()
	switch m.focusIdx {
	case 0:
		m.searchInput.Focus()
	case 1:
		m.yearFrom.Focus()
	case 2:
		m.yearTo.Focus()
	case 3:
		m.table.Focus()
	}
}

func (m *DiscoverPageModel) selectedResult() *api.SearchResult {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.results) {
		return nil
	}
	return &m.results[idx]
}

// addResult imports the external hit into the catalog, then shelves it.
func (m DiscoverPageModel) addResult(r api.SearchResult, status string) tea.Cmd {
	client := m.deps.Client
	svc := m.deps.Library
	return func() tea.Msg {
		book, err := client.ImportFromSearch(context.Background(), r)
		if err != nil {
			return mutationDoneMsg{statusErr(err)}
		}
		if err := svc.AddBook(context.Background(), api.AddBookRequest{BookID: book.ID, Status: status}); err != nil {
			return mutationDoneMsg{statusErr(err)}
		}
		return mutationDoneMsg{StatusMsg{Text: fmt.Sprintf("%q shelved as %s", book.Title, shelfLabel(status))}}
	}
}

func (m *DiscoverPageModel) reloadRows() {
	rows := make([]table.Row, 0, len(m.results))
	for _, r := range m.results {
		year := ""
		if r.PublishedYear != nil {
			year = strconv.Itoa(*r.PublishedYear)
		}
		rating := ""
		if r.AverageRating > 0 {
			rating = fmt.Sprintf("%.1f", r.AverageRating)
		}
		rows = append(rows, table.Row{r.Title, r.Author, year, rating})
	}
	m.table.SetRows(rows)
}

// View renders the page.
func (m DiscoverPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Discover"))
	sb.WriteString("\n")
	sb.WriteString(m.searchInput.View())
	sb.WriteString("   year " + m.yearFrom.View() + " - " + m.yearTo.View())
	sb.WriteString("\n\n")

	switch {
	case m.searching:
		sb.WriteString(m.styles.Muted.Render("searching..."))
		sb.WriteString("\n")
	case m.searchErr != nil:
		sb.WriteString(m.styles.Error.Render("search failed: " + m.searchErr.Error()))
		sb.WriteString("\n")
	case len(m.results) > 0:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}

	if m.status != "" {
		style := m.styles.Success
		if m.statusIsErr {
			style = m.styles.Error
		}
		sb.WriteString(style.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Muted.Render("tab: focus  a: add reading  w: want to read  o: owned"))
	return sb.String()
}

func statusForKey(key string) string {
	switch key {
	case "w":
		return api.StatusWantToRead
	case "o":
		return api.StatusOwned
	default:
		return api.StatusCurrentlyReading
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
