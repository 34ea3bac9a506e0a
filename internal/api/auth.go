package api

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Token, error) {
	var tok Token
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &tok)
	return tok, err
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (Token, error) {
	var tok Token
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &tok)
	return tok, err
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u)
	return u, err
}

// UpdateProfile edits the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPut, "/auth/me", nil, upd, &u)
	return u, err
}

// VerifyEmail confirms an address with the emailed token and returns a
// fresh session token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (Token, error) {
	q := url.Values{}
	q.Set("token", token)
	var tok Token
	err := c.do(ctx, http.MethodPost, "/auth/verify-email", q, nil, &tok)
	return tok, err
}

// ResendVerification re-sends the verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	q := url.Values{}
	q.Set("email", email)
	return c.do(ctx, http.MethodPost, "/auth/resend-verification", q, nil, nil)
}
