package api

import (
	"context"
	"net/http"
)

// PreviewGoodreads parses a Goodreads CSV export server-side and reports
// what an import would do. The body is the raw CSV text, not JSON.
func (c *Client) PreviewGoodreads(ctx context.Context, csv string) (ImportPreview, error) {
	var preview ImportPreview
	err := c.doText(ctx, http.MethodPost, "/import/goodreads/preview", csv, &preview)
	return preview, err
}

// ImportGoodreads imports a Goodreads CSV export. The result is partial by
// design: some rows import, some are skipped as duplicates, some fail with
// per-row errors.
func (c *Client) ImportGoodreads(ctx context.Context, csv string) (ImportResult, error) {
	var result ImportResult
	err := c.doText(ctx, http.MethodPost, "/import/goodreads", csv, &result)
	return result, err
}
