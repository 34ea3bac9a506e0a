package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"verso/internal/api"
	"verso/internal/bus"
	"verso/internal/importer"
	"verso/internal/library"
	"verso/internal/store"
)

func testDeps(t *testing.T, handler http.Handler) Deps {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	b := bus.New()
	return Deps{
		Client:   client,
		Stores:   store.NewSet(client, nil),
		Library:  library.NewService(client, b),
		Importer: importer.New(client, b),
	}
}

func TestDiscoverStaleResultsDropped(t *testing.T) {
	model := NewDiscoverPageModel(testDeps(t, http.NewServeMux()), DefaultStyles())
	model.gen = 5

	// A response from generation 3 arrives after the user kept typing.
	model, _ = model.Update(searchResultMsg{
		gen:     3,
		results: []api.SearchResult{{Title: "Old Query Hit", Author: "Nobody"}},
	})
	if len(model.results) != 0 {
		t.Fatalf("stale results applied: %v", model.results)
	}

	// The current generation lands normally.
	model, _ = model.Update(searchResultMsg{
		gen:     5,
		results: []api.SearchResult{{Title: "Fresh Hit", Author: "Someone"}},
	})
	if len(model.results) != 1 || model.results[0].Title != "Fresh Hit" {
		t.Fatalf("fresh results not applied: %v", model.results)
	}
}

func TestDiscoverStaleTickDoesNotSearch(t *testing.T) {
	model := NewDiscoverPageModel(testDeps(t, http.NewServeMux()), DefaultStyles())
	model.gen = 4
	model.searchInput.SetValue("dune")

	// Tick from an earlier keystroke burst fires nothing.
	model, cmd := model.Update(searchTickMsg{gen: 2})
	if cmd != nil {
		t.Fatal("stale tick triggered a search")
	}
	if model.searching {
		t.Fatal("stale tick flipped searching state")
	}

	model, cmd = model.Update(searchTickMsg{gen: 4})
	if cmd == nil {
		t.Fatal("current tick did not trigger a search")
	}
	if !model.searching {
		t.Fatal("current tick did not flip searching state")
	}
}

func TestCircleDetailStaleGenerationDropped(t *testing.T) {
	model := NewCirclesPageModel(testDeps(t, http.NewServeMux()), DefaultStyles())
	model.showDetail = true
	model.detailGen = 7

	model, _ = model.Update(circleDetailMsg{
		gen:    6,
		detail: api.CircleDetail{Circle: api.Circle{Name: "Stale Circle"}},
	})
	if model.detail.Name == "Stale Circle" {
		t.Fatal("stale circle detail applied")
	}

	model, _ = model.Update(circleDetailMsg{
		gen:    7,
		detail: api.CircleDetail{Circle: api.Circle{Name: "Current Circle"}},
	})
	if model.detail.Name != "Current Circle" {
		t.Fatal("current circle detail not applied")
	}
}

func TestImportFlowSteps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/import/goodreads/preview", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ImportPreview{
			Total:    3,
			ByStatus: map[string]int{"read": 2, "want_to_read": 1},
		})
	})
	mux.HandleFunc("/import/goodreads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ImportResult{TotalParsed: 3, Imported: 3})
	})

	model := NewImportPageModel(testDeps(t, mux), DefaultStyles())
	if model.Step() != stepPickFile {
		t.Fatalf("initial step = %v", model.Step())
	}

	// File read succeeded, preview comes back.
	model.step = stepPreviewing
	model, _ = model.Update(previewReadyMsg{
		csv:     "Title,Author\nDune,Frank Herbert\n",
		preview: api.ImportPreview{Total: 3, ByStatus: map[string]int{"read": 3}},
	})
	if model.Step() != stepPreview {
		t.Fatalf("after preview msg, step = %v", model.Step())
	}
	if !strings.Contains(model.View(), "3 books found") {
		t.Fatal("preview not rendered")
	}

	// Confirm moves to importing, then results.
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if model.Step() != stepImporting {
		t.Fatalf("after confirm, step = %v", model.Step())
	}
	if cmd == nil {
		t.Fatal("confirm did not launch the import")
	}

	model, _ = model.Update(importDoneMsg{result: api.ImportResult{TotalParsed: 3, Imported: 3}})
	if model.Step() != stepResults {
		t.Fatalf("after import, step = %v", model.Step())
	}
	if !strings.Contains(model.View(), "Imported 3 of 3") {
		t.Fatal("results not rendered")
	}

	// Enter starts over.
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if model.Step() != stepPickFile {
		t.Fatalf("after results, step = %v", model.Step())
	}
}

func TestImportBadFileReturnsToPicker(t *testing.T) {
	model := NewImportPageModel(testDeps(t, http.NewServeMux()), DefaultStyles())
	model.step = stepPreviewing

	model, _ = model.Update(previewReadyMsg{err: errBadFile{}})
	if model.Step() != stepPickFile {
		t.Fatalf("step = %v, want back at picker", model.Step())
	}
	if !strings.Contains(model.View(), "not a goodreads export") {
		t.Fatal("error not shown")
	}
}

type errBadFile struct{}

func (errBadFile) Error() string { return "not a goodreads export" }

func TestImportStaleStepMessagesIgnored(t *testing.T) {
	model := NewImportPageModel(testDeps(t, http.NewServeMux()), DefaultStyles())

	// A preview result arriving while back at the picker is ignored.
	model, _ = model.Update(previewReadyMsg{preview: api.ImportPreview{Total: 9}})
	if model.Step() != stepPickFile {
		t.Fatalf("step = %v", model.Step())
	}

	// An import result without an import in flight is ignored too.
	model, _ = model.Update(importDoneMsg{result: api.ImportResult{Imported: 9}})
	if model.Step() != stepPickFile || model.result.Imported != 0 {
		t.Fatal("stray import result applied")
	}
}

func TestLibraryPageFilterAndRows(t *testing.T) {
	deps := testDeps(t, http.NewServeMux())

	entries := []api.LibraryEntry{
		{Status: api.StatusCurrentlyReading, Book: api.Book{ID: 1, Title: "Dune", Author: "Frank Herbert"}},
		{Status: api.StatusRead, Book: api.Book{ID: 2, Title: "Hyperion", Author: "Dan Simmons"}},
	}
	deps.Stores.Library.Hydrate(entries, time.Now())

	model := NewLibraryPageModel(deps, DefaultStyles())
	model, _ = model.Update(StoresChangedMsg{})
	if len(model.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(model.entries))
	}

	// "tab" narrows to currently reading.
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if len(model.entries) != 1 || model.entries[0].Book.Title != "Dune" {
		t.Fatalf("filtered entries = %v", model.entries)
	}
}

func TestHomePageRerendersAfterStatsRefresh(t *testing.T) {
	var wantToRead atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/stats/reading", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ReadingStats{
			BooksRead:  12,
			WantToRead: int(wantToRead.Load()),
		})
	})
	deps := testDeps(t, mux)

	model := NewHomePageModel(deps, DefaultStyles())
	if err := deps.Stores.Stats.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	model, _ = model.Update(StoresChangedMsg{})
	if !strings.Contains(model.View(), "want to read 0") {
		t.Fatal("initial stats not rendered")
	}

	// The count changes server-side and the store refreshes; the next View
	// must show the new number, not a memoized render.
	wantToRead.Store(5)
	if err := deps.Stores.Stats.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	model, _ = model.Update(StoresChangedMsg{})
	if view := model.View(); !strings.Contains(view, "want to read 5") {
		t.Fatalf("view is stale after store refresh: %q", view)
	}
}

func TestPagesAdoptNewStyles(t *testing.T) {
	deps := testDeps(t, http.NewServeMux())
	dark := NewStyles(DarkTheme())
	light := NewStyles(LightTheme())

	home := NewHomePageModel(deps, dark)
	home, _ = home.Update(StylesChangedMsg{Styles: light})
	if home.styles.Theme.IsDark {
		t.Fatal("home page kept the old theme")
	}
	if home.renderer == nil {
		t.Fatal("markdown renderer not rebuilt for the new theme")
	}

	lib := NewLibraryPageModel(deps, dark)
	lib, _ = lib.Update(StylesChangedMsg{Styles: light})
	if lib.styles.Theme.IsDark {
		t.Fatal("library page kept the old theme")
	}

	stats := NewStatsPageModel(deps, dark)
	stats, _ = stats.Update(StylesChangedMsg{Styles: light})
	if stats.styles.Theme.IsDark {
		t.Fatal("stats page kept the old theme")
	}
}

func TestHomePageViewShowsStoreData(t *testing.T) {
	deps := testDeps(t, http.NewServeMux())
	deps.Stores.Points.Hydrate(api.Points{Points: 250, Username: "alice"}, time.Now())
	goal, year := 24, 2026
	deps.Stores.Goal.Hydrate(api.Goal{Goal: &goal, Year: &year, Progress: 12}, time.Now())
	deps.Stores.Stats.Hydrate(api.ReadingStats{BooksRead: 12, CurrentlyReading: 2}, time.Now())

	model := NewHomePageModel(deps, DefaultStyles())
	view := model.View()

	if !strings.Contains(view, "250 points") {
		t.Fatal("points not rendered")
	}
	if !strings.Contains(view, "12/24") {
		t.Fatal("goal progress not rendered")
	}
}
