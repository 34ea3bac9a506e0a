// Package importer handles Goodreads CSV exports. Parsing happens
// server-side; this package reads the file, runs a cheap sanity check so an
// obviously wrong file fails before the upload, and publishes invalidation
// topics when rows actually landed.
package importer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"verso/internal/api"
	"verso/internal/bus"
	"verso/internal/logging"
)

// MaxFileSize caps what the importer will read. Goodreads exports of even
// large libraries stay well under this.
const MaxFileSize = 10 << 20

// Importer previews and runs Goodreads imports through the gateway.
type Importer struct {
	client *api.Client
	bus    *bus.Bus
}

// New creates an Importer publishing on b.
func New(client *api.Client, b *bus.Bus) *Importer {
	return &Importer{client: client, bus: b}
}

// ReadFile loads a Goodreads export from disk and checks that it looks like
// one. The check is deliberately shallow: the server owns real parsing, this
// only catches picking the wrong file entirely.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read export: %w", err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("file is %d bytes, larger than the %d byte limit", info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read export: %w", err)
	}

	csv := string(data)
	if err := checkHeader(csv); err != nil {
		return "", err
	}
	return csv, nil
}

// checkHeader verifies the first line carries the Goodreads export columns.
func checkHeader(csv string) error {
	header, _, _ := strings.Cut(csv, "\n")
	if !strings.Contains(header, "Title") || !strings.Contains(header, "Author") {
		return fmt.Errorf("file does not look like a Goodreads export (missing Title/Author columns)")
	}
	return nil
}

// Preview asks the server what an import of csv would do. Read-only, so
// nothing is invalidated.
func (i *Importer) Preview(ctx context.Context, csv string) (api.ImportPreview, error) {
	return i.client.PreviewGoodreads(ctx, csv)
}

// Import runs the import. Topics are published only when at least one row
// landed; a fully skipped or failed import changed nothing server-side.
func (i *Importer) Import(ctx context.Context, csv string) (api.ImportResult, error) {
	result, err := i.client.ImportGoodreads(ctx, csv)
	if err != nil {
		return api.ImportResult{}, err
	}

	logging.Import("parsed %d, imported %d, skipped %d, %d error(s)",
		result.TotalParsed, result.Imported, result.Skipped, len(result.Errors))

	if result.Imported > 0 {
		i.bus.Publish(bus.LibraryMutationTopics()...)
	}
	return result, nil
}
