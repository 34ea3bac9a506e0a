package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SetReadingGoal sets the book count target for a year.
func (c *Client) SetReadingGoal(ctx context.Context, goal, year int) error {
	q := url.Values{}
	q.Set("goal", fmt.Sprintf("%d", goal))
	q.Set("year", fmt.Sprintf("%d", year))
	return c.do(ctx, http.MethodPost, "/reading-goal", q, nil, nil)
}

// ReadingGoal fetches the current goal and server-computed progress.
func (c *Client) ReadingGoal(ctx context.Context) (Goal, error) {
	var g Goal
	err := c.do(ctx, http.MethodGet, "/reading-goal", nil, nil, &g)
	return g, err
}

// MyPoints fetches the caller's points balance.
func (c *Client) MyPoints(ctx context.Context) (Points, error) {
	var p Points
	err := c.do(ctx, http.MethodGet, "/points", nil, nil, &p)
	return p, err
}
