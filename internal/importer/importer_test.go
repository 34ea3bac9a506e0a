package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verso/internal/api"
	"verso/internal/bus"
)

const sampleCSV = "Title,Author,My Rating,Date Read,Exclusive Shelf\n" +
	"Dune,Frank Herbert,5,2024/01/15,read\n" +
	"Hyperion,Dan Simmons,,,to-read\n"

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goodreads_library_export.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFile(t *testing.T) {
	csv, err := ReadFile(writeExport(t, sampleCSV))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if csv != sampleCSV {
		t.Fatal("file content altered")
	}
}

func TestReadFileRejectsNonExport(t *testing.T) {
	_, err := ReadFile(writeExport(t, "id,name,price\n1,widget,9.99\n"))
	if err == nil || !strings.Contains(err.Error(), "Goodreads") {
		t.Fatalf("err = %v, want Goodreads header complaint", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestImportPublishesWhenRowsLanded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/import/goodreads" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("content type = %s, want text/plain", ct)
		}
		json.NewEncoder(w).Encode(api.ImportResult{
			TotalParsed: 2,
			Imported:    1,
			Skipped:     1,
			Errors:      []string{},
		})
	}))
	defer srv.Close()

	b := bus.New()
	var published []bus.Topic
	for _, tp := range bus.LibraryMutationTopics() {
		tp := tp
		b.Subscribe(tp, func(bus.Topic) { published = append(published, tp) })
	}

	imp := New(api.New(srv.URL), b)
	result, err := imp.Import(context.Background(), sampleCSV)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(published) != 4 {
		t.Fatalf("published %v, want all four topics", published)
	}
}

func TestImportAllSkippedPublishesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ImportResult{TotalParsed: 2, Imported: 0, Skipped: 2})
	}))
	defer srv.Close()

	b := bus.New()
	published := 0
	for _, tp := range bus.LibraryMutationTopics() {
		b.Subscribe(tp, func(bus.Topic) { published++ })
	}

	imp := New(api.New(srv.URL), b)
	if _, err := imp.Import(context.Background(), sampleCSV); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if published != 0 {
		t.Fatalf("published %d topics for a no-op import", published)
	}
}

func TestPreviewDoesNotPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ImportPreview{
			Total:    2,
			ByStatus: map[string]int{"read": 1, "want_to_read": 1},
		})
	}))
	defer srv.Close()

	b := bus.New()
	published := 0
	for _, tp := range bus.LibraryMutationTopics() {
		b.Subscribe(tp, func(bus.Topic) { published++ })
	}

	imp := New(api.New(srv.URL), b)
	preview, err := imp.Preview(context.Background(), sampleCSV)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.Total != 2 {
		t.Fatalf("preview = %+v", preview)
	}
	if published != 0 {
		t.Fatal("preview published topics")
	}
}
