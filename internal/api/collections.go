package api

import (
	"context"
	"fmt"
	"net/http"
)

// Collections lists the caller's collections.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var cols []Collection
	err := c.do(ctx, http.MethodGet, "/collections", nil, nil, &cols)
	return cols, err
}

// CreateCollection creates a collection.
func (c *Client) CreateCollection(ctx context.Context, nc NewCollection) (Collection, error) {
	var col Collection
	err := c.do(ctx, http.MethodPost, "/collections", nil, nc, &col)
	return col, err
}

// AddBookToCollection places a catalog book into a collection.
func (c *Client) AddBookToCollection(ctx context.Context, collectionID, bookID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%d/books/%d", collectionID, bookID), nil, nil, nil)
}

// Recommendations fetches AI-generated book suggestions.
func (c *Client) Recommendations(ctx context.Context, count int) (Recommendations, error) {
	var recs Recommendations
	err := c.do(ctx, http.MethodGet, "/recommendations", intQuery("count", count), nil, &recs)
	return recs, err
}
