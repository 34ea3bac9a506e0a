package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// MyBooks lists the caller's library, optionally filtered by status.
func (c *Client) MyBooks(ctx context.Context, status string) ([]LibraryEntry, error) {
	var q url.Values
	if status != "" {
		q = url.Values{}
		q.Set("status", status)
	}
	var entries []LibraryEntry
	err := c.do(ctx, http.MethodGet, "/my-books", q, nil, &entries)
	return entries, err
}

// AddToLibrary creates a library entry for the caller.
func (c *Client) AddToLibrary(ctx context.Context, req AddBookRequest) error {
	return c.do(ctx, http.MethodPost, "/my-books", nil, req, nil)
}

// UpdateLibraryEntry edits the caller's entry for bookID.
func (c *Client) UpdateLibraryEntry(ctx context.Context, bookID int, upd UpdateBookRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/my-books/%d", bookID), nil, upd, nil)
}

// RemoveFromLibrary deletes the caller's entry for bookID.
func (c *Client) RemoveFromLibrary(ctx context.Context, bookID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/my-books/%d", bookID), nil, nil, nil)
}

// UpdateProgress sets the current page for bookID and returns the
// server-computed percentage.
func (c *Client) UpdateProgress(ctx context.Context, bookID, currentPage int) (ProgressUpdate, error) {
	var out ProgressUpdate
	path := fmt.Sprintf("/my-books/%d/progress", bookID)
	err := c.do(ctx, http.MethodPut, path, intQuery("current_page", currentPage), nil, &out)
	return out, err
}
