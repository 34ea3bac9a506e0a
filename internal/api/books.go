package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Books lists catalog books, optionally filtered by a search string.
func (c *Client) Books(ctx context.Context, search string) ([]Book, error) {
	var q url.Values
	if search != "" {
		q = url.Values{}
		q.Set("search", search)
	}
	var books []Book
	err := c.do(ctx, http.MethodGet, "/books", q, nil, &books)
	return books, err
}

// Book fetches one catalog book by id.
func (c *Client) Book(ctx context.Context, id int) (Book, error) {
	var b Book
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, nil, &b)
	return b, err
}

// CreateBook adds a book to the catalog directly.
func (c *Client) CreateBook(ctx context.Context, nb NewBook) (Book, error) {
	var b Book
	err := c.do(ctx, http.MethodPost, "/books", nil, nb, &b)
	return b, err
}

// SearchExternal queries the external book database through the backend.
// Rate limited client-side; yearFrom/yearTo of 0 mean unbounded.
func (c *Client) SearchExternal(ctx context.Context, query string, limit, yearFrom, yearTo int) ([]SearchResult, error) {
	if c.searchLimiter != nil {
		if err := c.searchLimiter.Wait(ctx); err != nil {
			return nil, networkError(err)
		}
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", fmt.Sprintf("%d", limit))
	if yearFrom > 0 {
		q.Set("year_from", fmt.Sprintf("%d", yearFrom))
	}
	if yearTo > 0 {
		q.Set("year_to", fmt.Sprintf("%d", yearTo))
	}

	var results []SearchResult
	err := c.do(ctx, http.MethodGet, "/books/search-external", q, nil, &results)
	return results, err
}

// ImportFromSearch copies an external search result into the catalog.
func (c *Client) ImportFromSearch(ctx context.Context, result SearchResult) (Book, error) {
	var b Book
	err := c.do(ctx, http.MethodPost, "/books/import-from-search", nil, result, &b)
	return b, err
}

// BookReviews lists reviews for one book.
func (c *Client) BookReviews(ctx context.Context, bookID, limit int) (BookReviews, error) {
	var out BookReviews
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d/reviews", bookID), intQuery("limit", limit), nil, &out)
	return out, err
}

// PopularBooks returns the most-rated catalog books.
func (c *Client) PopularBooks(ctx context.Context, limit int) ([]Book, error) {
	var books []Book
	err := c.do(ctx, http.MethodGet, "/books/popular/top", intQuery("limit", limit), nil, &books)
	return books, err
}

// TrendingBooks returns books with recent activity.
func (c *Client) TrendingBooks(ctx context.Context, limit int) ([]Book, error) {
	var books []Book
	err := c.do(ctx, http.MethodGet, "/books/trending", intQuery("limit", limit), nil, &books)
	return books, err
}
