package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"verso/internal/api"
	"verso/internal/importer"
)

// importStep is where the Goodreads import flow currently stands. The flow
// is strictly forward: pick a file, preview, confirm, see results. Esc backs
// out at any point before the import itself runs.
type importStep int

const (
	stepPickFile importStep = iota
	stepPreviewing
	stepPreview
	stepImporting
	stepResults
)

// ImportPageModel runs the Goodreads CSV import flow.
type ImportPageModel struct {
	width  int
	height int
	deps   Deps
	styles Styles

	step      importStep
	pathInput textinput.Model
	csv       string
	preview   api.ImportPreview
	result    api.ImportResult
	stepErr   error
}

type previewReadyMsg struct {
	csv     string
	preview api.ImportPreview
	err     error
}

type importDoneMsg struct {
	result api.ImportResult
	err    error
}

// NewImportPageModel creates the import page.
func NewImportPageModel(deps Deps, styles Styles) ImportPageModel {
	pi := textinput.New()
	pi.Placeholder = "path to goodreads_library_export.csv"
	pi.CharLimit = 256
	pi.Width = 60
	pi.Focus()

	return ImportPageModel{
		deps:      deps,
		styles:    styles,
		pathInput: pi,
	}
}

// Init initializes the model.
func (m ImportPageModel) Init() tea.Cmd {
	return textinput.Blink
}

// Step exposes the current flow position for the footer hints.
func (m ImportPageModel) Step() importStep {
	return m.step
}

// CapturesText reports whether a text input currently owns keystrokes.
func (m ImportPageModel) CapturesText() bool {
	return m.step == stepPickFile
}

func (m ImportPageModel) runPreview(path string) tea.Cmd {
	imp := m.deps.Importer
	return func() tea.Msg {
		csv, err := importer.ReadFile(path)
		if err != nil {
			return previewReadyMsg{err: err}
		}
		preview, err := imp.Preview(context.Background(), csv)
		return previewReadyMsg{csv: csv, preview: preview, err: err}
	}
}

func (m ImportPageModel) runImport() tea.Cmd {
	imp := m.deps.Importer
	csv := m.csv
	return func() tea.Msg {
		result, err := imp.Import(context.Background(), csv)
		return importDoneMsg{result: result, err: err}
	}
}

// Update handles messages.
func (m ImportPageModel) Update(msg tea.Msg) (ImportPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case previewReadyMsg:
		if m.step != stepPreviewing {
			return m, nil
		}
		if msg.err != nil {
			m.step = stepPickFile
			m.stepErr = msg.err
			m.pathInput.Focus()
			return m, nil
		}
		m.csv = msg.csv
		m.preview = msg.preview
		m.stepErr = nil
		m.step = stepPreview
		return m, nil

	case importDoneMsg:
		if m.step != stepImporting {
			return m, nil
		}
		m.result = msg.result
		m.stepErr = msg.err
		m.step = stepResults
		return m, nil

	case StylesChangedMsg:
		m.styles = msg.Styles
		return m, nil

	case tea.KeyMsg:
		switch m.step {
		case stepPickFile:
			if msg.String() == "enter" {
				path := strings.TrimSpace(m.pathInput.Value())
				if path == "" {
					return m, nil
				}
				m.step = stepPreviewing
				m.pathInput.Blur()
				return m, m.runPreview(path)
			}
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd

		case stepPreview:
			switch msg.String() {
			case "enter", "y":
				m.step = stepImporting
				return m, m.runImport()
			case "esc", "n":
				m.step = stepPickFile
				m.pathInput.Focus()
				return m, nil
			}

		case stepResults:
			if msg.String() == "enter" || msg.String() == "esc" {
				// Back to the start for another file.
				w, h := m.width, m.height
				m = NewImportPageModel(m.deps, m.styles)
				m.width, m.height = w, h
				return m, nil
			}
		}
	}
	return m, nil
}

// View renders the page.
func (m ImportPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Import from Goodreads"))
	sb.WriteString("\n")

	switch m.step {
	case stepPickFile:
		sb.WriteString(m.styles.Body.Render("Export your Goodreads library (My Books → Import/Export) and point me at the CSV."))
		sb.WriteString("\n\n")
		sb.WriteString(m.pathInput.View())
		sb.WriteString("\n")
		if m.stepErr != nil {
			sb.WriteString(m.styles.Error.Render(m.stepErr.Error()))
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.Muted.Render("enter: preview"))

	case stepPreviewing:
		sb.WriteString(m.styles.Muted.Render("reading export..."))

	case stepPreview:
		sb.WriteString(m.viewPreview())
		sb.WriteString(m.styles.Muted.Render("enter: import  esc: cancel"))

	case stepImporting:
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("importing %d books...", m.preview.Total)))

	case stepResults:
		sb.WriteString(m.viewResults())
		sb.WriteString(m.styles.Muted.Render("enter: import another file"))
	}
	return sb.String()
}

func (m ImportPageModel) viewPreview() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("%d books found", m.preview.Total)))
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  (%d with ratings, %d with reviews)", m.preview.WithRatings, m.preview.WithReviews)))
	sb.WriteString("\n\n")

	statuses := make([]string, 0, len(m.preview.ByStatus))
	for status := range m.preview.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	t := NewSimpleTable("", []string{"Shelf", "Books"})
	for _, status := range statuses {
		t.AddRow(shelfLabel(status), strconv.Itoa(m.preview.ByStatus[status]))
	}
	sb.WriteString(t.View(m.styles))

	if len(m.preview.SampleBooks) > 0 {
		sb.WriteString(m.styles.Subtitle.Render("Sample"))
		sb.WriteString("\n")
		for _, b := range m.preview.SampleBooks {
			sb.WriteString(fmt.Sprintf("  %s by %s\n", b.Title, b.Author))
		}
	}
	if len(m.preview.Errors) > 0 {
		sb.WriteString(m.styles.Warning.Render(fmt.Sprintf("%d row(s) could not be parsed", len(m.preview.Errors))))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m ImportPageModel) viewResults() string {
	var sb strings.Builder

	if m.stepErr != nil {
		sb.WriteString(m.styles.Error.Render("import failed: " + m.stepErr.Error()))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(m.styles.Success.Render(fmt.Sprintf("Imported %d of %d books", m.result.Imported, m.result.TotalParsed)))
	if m.result.Skipped > 0 {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  (%d already in your library)", m.result.Skipped)))
	}
	sb.WriteString("\n")

	for _, e := range m.result.Errors {
		sb.WriteString(m.styles.Warning.Render("  " + e))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
