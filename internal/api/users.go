package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SearchUsers finds users by username or name fragment.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]UserSummary, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", fmt.Sprintf("%d", limit))
	var users []UserSummary
	err := c.do(ctx, http.MethodGet, "/users/search", q, nil, &users)
	return users, err
}

// BrowseUsers pages through all users.
func (c *Client) BrowseUsers(ctx context.Context, limit, skip int) ([]UserSummary, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("skip", fmt.Sprintf("%d", skip))
	var users []UserSummary
	err := c.do(ctx, http.MethodGet, "/users/browse/all", q, nil, &users)
	return users, err
}

// UserProfile fetches another user's public profile.
func (c *Client) UserProfile(ctx context.Context, userID int) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/profile", userID), nil, nil, &p)
	return p, err
}

// UserBooks lists another user's public library, optionally by status.
func (c *Client) UserBooks(ctx context.Context, userID int, status string) ([]LibraryEntry, error) {
	var q url.Values
	if status != "" {
		q = url.Values{}
		q.Set("status", status)
	}
	var entries []LibraryEntry
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/books", userID), q, nil, &entries)
	return entries, err
}

// UserReviews lists another user's reviews.
func (c *Client) UserReviews(ctx context.Context, userID, limit int) ([]RecentReview, error) {
	var reviews []RecentReview
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/reviews", userID), intQuery("limit", limit), nil, &reviews)
	return reviews, err
}

// Follow starts following userID.
func (c *Client) Follow(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/follow", userID), nil, nil, nil)
}

// Unfollow stops following userID.
func (c *Client) Unfollow(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/follow", userID), nil, nil, nil)
}

// Feed fetches the activity feed of followed users.
func (c *Client) Feed(ctx context.Context, limit int) ([]Activity, error) {
	var feed []Activity
	err := c.do(ctx, http.MethodGet, "/feed", intQuery("limit", limit), nil, &feed)
	return feed, err
}
