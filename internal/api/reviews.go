package api

import (
	"context"
	"fmt"
	"net/http"
)

// RecentReviews lists the newest reviews across all users.
func (c *Client) RecentReviews(ctx context.Context, limit int) ([]RecentReview, error) {
	var reviews []RecentReview
	err := c.do(ctx, http.MethodGet, "/reviews/recent", intQuery("limit", limit), nil, &reviews)
	return reviews, err
}

// LikeReview likes reviewerID's review of bookID.
func (c *Client) LikeReview(ctx context.Context, bookID, reviewerID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/reviews/%d/%d/like", bookID, reviewerID), nil, nil, nil)
}

// UnlikeReview removes the caller's like.
func (c *Client) UnlikeReview(ctx context.Context, bookID, reviewerID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/reviews/%d/%d/like", bookID, reviewerID), nil, nil, nil)
}

// ReviewLikes fetches the like count for one review.
func (c *Client) ReviewLikes(ctx context.Context, bookID, reviewerID int) (LikeCount, error) {
	var out LikeCount
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reviews/%d/%d/likes", bookID, reviewerID), nil, nil, &out)
	return out, err
}
