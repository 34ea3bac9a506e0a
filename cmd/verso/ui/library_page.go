package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"verso/internal/api"
	"verso/internal/library"
)

// shelf filter tabs, cycled with tab
var shelfFilters = []string{"", api.StatusCurrentlyReading, api.StatusWantToRead, api.StatusRead, api.StatusOwned}

// LibraryPageModel shows the caller's shelves and runs mutations on them.
// The entry list always comes from the library store; after a mutation the
// page waits for the invalidation round-trip instead of patching rows.
type LibraryPageModel struct {
	width  int
	height int
	deps   Deps
	styles Styles

	table       table.Model
	filterIdx   int
	entries     []api.LibraryEntry // entries behind the visible rows
	pageInput   textinput.Model
	editingPage bool
	status      string
	statusIsErr bool
}

type mutationDoneMsg struct {
	status StatusMsg
}

// NewLibraryPageModel creates the library page.
func NewLibraryPageModel(deps Deps, styles Styles) LibraryPageModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Title", Width: 34},
			{Title: "Author", Width: 22},
			{Title: "Shelf", Width: 18},
			{Title: "Progress", Width: 12},
			{Title: "Rating", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	pi := textinput.New()
	pi.Placeholder = "current page"
	pi.CharLimit = 6
	pi.Width = 12

	return LibraryPageModel{
		deps:      deps,
		styles:    styles,
		table:     t,
		pageInput: pi,
	}
}

// Init initializes the model.
func (m LibraryPageModel) Init() tea.Cmd {
	return nil
}

// CapturesText reports whether a text input currently owns keystrokes.
func (m LibraryPageModel) CapturesText() bool {
	return m.editingPage
}

// Update handles messages.
func (m LibraryPageModel) Update(msg tea.Msg) (LibraryPageModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(5, msg.Height-10))

	case StoresChangedMsg:
		m.reloadRows()

	case mutationDoneMsg:
		m.status = msg.status.Text
		m.statusIsErr = msg.status.IsErr

	case StylesChangedMsg:
		m.styles = msg.Styles

	case tea.KeyMsg:
		if m.editingPage {
			return m.updatePageEdit(msg)
		}
		switch msg.String() {
		case "tab":
			m.filterIdx = (m.filterIdx + 1) % len(shelfFilters)
			m.reloadRows()
			return m, nil
		case "p":
			if m.selected() != nil {
				m.editingPage = true
				m.pageInput.SetValue("")
				m.pageInput.Focus()
			}
			return m, nil
		case "f":
			if e := m.selected(); e != nil {
				return m, m.markRead(e.Book.ID)
			}
			return m, nil
		case "d":
			if e := m.selected(); e != nil {
				return m, m.remove(e.Book.ID)
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m LibraryPageModel) updatePageEdit(msg tea.KeyMsg) (LibraryPageModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editingPage = false
		m.pageInput.Blur()
		return m, nil
	case "enter":
		m.editingPage = false
		m.pageInput.Blur()
		e := m.selected()
		page, err := strconv.Atoi(strings.TrimSpace(m.pageInput.Value()))
		if e == nil || err != nil || page < 0 {
			m.status = "enter a page number"
			m.statusIsErr = true
			return m, nil
		}
		return m, m.setProgress(*e, page)
	}
	var cmd tea.Cmd
	m.pageInput, cmd = m.pageInput.Update(msg)
	return m, cmd
}

func (m *LibraryPageModel) selected() *api.LibraryEntry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}
	return &m.entries[idx]
}

// reloadRows rebuilds the table from the current store snapshot.
func (m *LibraryPageModel) reloadRows() {
	snap := m.deps.Stores.Library.Get()
	filter := shelfFilters[m.filterIdx]

	m.entries = m.entries[:0]
	rows := make([]table.Row, 0, len(snap.Value))
	for _, e := range snap.Value {
		if filter != "" && e.Status != filter {
			continue
		}
		m.entries = append(m.entries, e)
		rows = append(rows, table.Row{
			e.Book.Title,
			e.Book.Author,
			shelfLabel(e.Status),
			progressLabel(e),
			ratingLabel(e.Rating),
		})
	}
	m.table.SetRows(rows)
}

func (m LibraryPageModel) setProgress(e api.LibraryEntry, page int) tea.Cmd {
	svc := m.deps.Library
	total := 0
	if e.Book.PageCount != nil {
		total = *e.Book.PageCount
	}
	bookID := e.Book.ID
	return func() tea.Msg {
		out, err := svc.UpdateProgress(context.Background(), bookID, page, total)
		if err != nil {
			return mutationDoneMsg{statusErr(err)}
		}
		return mutationDoneMsg{StatusMsg{Text: fmt.Sprintf("progress saved: page %d (%d%%)", out.CurrentPage, out.Percentage)}}
	}
}

func (m LibraryPageModel) markRead(bookID int) tea.Cmd {
	svc := m.deps.Library
	return func() tea.Msg {
		status := api.StatusRead
		if err := svc.UpdateEntry(context.Background(), bookID, api.UpdateBookRequest{Status: &status}); err != nil {
			return mutationDoneMsg{statusErr(err)}
		}
		return mutationDoneMsg{StatusMsg{Text: "moved to read"}}
	}
}

func (m LibraryPageModel) remove(bookID int) tea.Cmd {
	svc := m.deps.Library
	return func() tea.Msg {
		if err := svc.RemoveEntry(context.Background(), bookID); err != nil {
			return mutationDoneMsg{statusErr(err)}
		}
		return mutationDoneMsg{StatusMsg{Text: "removed from library"}}
	}
}

// View renders the page.
func (m LibraryPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("My Library"))
	sb.WriteString("\n")
	sb.WriteString(m.viewFilterTabs())
	sb.WriteString("\n")
	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	if m.editingPage {
		sb.WriteString("Set page: " + m.pageInput.View())
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
	sb.WriteString(m.styles.Muted.Render("tab: shelf  p: progress  f: finish  d: delete"))
	return sb.String()
}

func (m LibraryPageModel) viewFilterTabs() string {
	var parts []string
	for i, f := range shelfFilters {
		label := "all"
		if f != "" {
			label = shelfLabel(f)
		}
		if i == m.filterIdx {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func shelfLabel(status string) string {
	switch status {
	case api.StatusWantToRead:
		return "want to read"
	case api.StatusCurrentlyReading:
		return "reading"
	case api.StatusRead:
		return "read"
	case api.StatusOwned:
		return "owned"
	}
	return status
}

func progressLabel(e api.LibraryEntry) string {
	if e.Status != api.StatusCurrentlyReading || e.CurrentPage == nil {
		return ""
	}
	total := 0
	if e.Book.PageCount != nil {
		total = *e.Book.PageCount
	}
	if total == 0 {
		return fmt.Sprintf("p. %d", *e.CurrentPage)
	}
	return fmt.Sprintf("%d%%", library.ProgressPercent(*e.CurrentPage, total))
}

func ratingLabel(r *float64) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%.1f★", *r)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
