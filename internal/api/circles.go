package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// MyCircles lists circles the caller belongs to.
func (c *Client) MyCircles(ctx context.Context) ([]Circle, error) {
	var circles []Circle
	err := c.do(ctx, http.MethodGet, "/circles", nil, nil, &circles)
	return circles, err
}

// DiscoverCircles lists public circles the caller could join.
func (c *Client) DiscoverCircles(ctx context.Context, limit int) ([]Circle, error) {
	var circles []Circle
	err := c.do(ctx, http.MethodGet, "/circles/discover", intQuery("limit", limit), nil, &circles)
	return circles, err
}

// CreateCircle creates a reading circle owned by the caller.
func (c *Client) CreateCircle(ctx context.Context, nc NewCircle) (Circle, error) {
	var circle Circle
	err := c.do(ctx, http.MethodPost, "/circles", nil, nc, &circle)
	return circle, err
}

// CircleDetail fetches one circle with members and the caller's role.
func (c *Client) CircleDetail(ctx context.Context, circleID int) (CircleDetail, error) {
	var detail CircleDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/circles/%d", circleID), nil, nil, &detail)
	return detail, err
}

// DeleteCircle removes a circle (admin only).
func (c *Client) DeleteCircle(ctx context.Context, circleID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/circles/%d", circleID), nil, nil, nil)
}

// JoinCircle joins a public circle.
func (c *Client) JoinCircle(ctx context.Context, circleID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/circles/%d/join", circleID), nil, nil, nil)
}

// JoinCircleByCode joins a circle using its invite code.
func (c *Client) JoinCircleByCode(ctx context.Context, inviteCode string) (Circle, error) {
	var circle Circle
	err := c.do(ctx, http.MethodPost, "/circles/join/"+url.PathEscape(inviteCode), nil, nil, &circle)
	return circle, err
}

// LeaveCircle leaves a circle.
func (c *Client) LeaveCircle(ctx context.Context, circleID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/circles/%d/leave", circleID), nil, nil, nil)
}

// Challenges lists a circle's challenges.
func (c *Client) Challenges(ctx context.Context, circleID int, activeOnly bool) ([]Challenge, error) {
	q := url.Values{}
	q.Set("active_only", fmt.Sprintf("%t", activeOnly))
	var challenges []Challenge
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/circles/%d/challenges", circleID), q, nil, &challenges)
	return challenges, err
}

// CreateChallenge adds a challenge to a circle.
func (c *Client) CreateChallenge(ctx context.Context, circleID int, nc NewChallenge) (Challenge, error) {
	var ch Challenge
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/circles/%d/challenges", circleID), nil, nc, &ch)
	return ch, err
}

// UpdateChallengeProgress sets the caller's progress value for a challenge.
func (c *Client) UpdateChallengeProgress(ctx context.Context, circleID, challengeID, value int) error {
	path := fmt.Sprintf("/circles/%d/challenges/%d/progress", circleID, challengeID)
	return c.do(ctx, http.MethodPut, path, intQuery("value", value), nil, nil)
}

// SyncChallengeFromLibrary recomputes the caller's challenge progress from
// their library server-side.
func (c *Client) SyncChallengeFromLibrary(ctx context.Context, circleID, challengeID int) error {
	path := fmt.Sprintf("/circles/%d/challenges/%d/sync", circleID, challengeID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// CircleActivityFeed lists recent activity inside a circle.
func (c *Client) CircleActivityFeed(ctx context.Context, circleID, limit int) ([]CircleActivity, error) {
	var feed []CircleActivity
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/circles/%d/activity", circleID), intQuery("limit", limit), nil, &feed)
	return feed, err
}

// CircleLeaderboard fetches the ranked member list.
func (c *Client) CircleLeaderboard(ctx context.Context, circleID int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/circles/%d/leaderboard", circleID), nil, nil, &rows)
	return rows, err
}
