package api

import (
	"context"
	"net/http"
)

// ReadingStats fetches the per-status summary counts.
func (c *Client) ReadingStats(ctx context.Context) (ReadingStats, error) {
	var s ReadingStats
	err := c.do(ctx, http.MethodGet, "/stats/reading", nil, nil, &s)
	return s, err
}

// DetailedStats fetches the full statistics payload for charts.
func (c *Client) DetailedStats(ctx context.Context) (DetailedStats, error) {
	var s DetailedStats
	err := c.do(ctx, http.MethodGet, "/stats/detailed", nil, nil, &s)
	return s, err
}

// ReadingStreak fetches reading consistency stats.
func (c *Client) ReadingStreak(ctx context.Context) (Streak, error) {
	var s Streak
	err := c.do(ctx, http.MethodGet, "/stats/reading-streak", nil, nil, &s)
	return s, err
}
