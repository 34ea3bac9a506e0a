// Package api is the typed gateway to the Verso backend.
//
// Every domain operation becomes one authenticated HTTP call. The gateway
// attaches the bearer token from its token source, normalizes every failure
// into *Error, and reports 401s to the auth-expiry hook so the session can
// tear itself down. It never retries: calls are user-triggered and the
// backend does not guarantee idempotency.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"verso/internal/logging"
)

// DefaultTimeout bounds every request. The backend is an external dependency
// that can hang; a stuck call must surface as a failure, not a frozen UI.
const DefaultTimeout = 15 * time.Second

// TokenSource yields the current bearer token, or "" when unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a func to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is the remote data gateway.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthExpired func()
	searchLimiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource wires the session's token into outgoing requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthExpiredHook registers the callback invoked on every 401.
func WithAuthExpiredHook(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// WithSearchLimiter overrides the external-search rate limiter.
func WithSearchLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.searchLimiter = l }
}

// New creates a gateway for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		// External search proxies a third-party book API; keep the
		// client from hammering it on every keystroke.
		searchLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one JSON request. body is marshalled when non-nil; out is
// decoded into when non-nil. All failures come back as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindClient, Message: fmt.Sprintf("encode request: %v", err), cause: err}
		}
		reader = bytes.NewReader(data)
	}
	return c.send(ctx, method, path, query, reader, "application/json", out)
}

// doText performs one request with a raw text body (Goodreads CSV uploads).
func (c *Client) doText(ctx context.Context, method, path string, text string, out interface{}) error {
	return c.send(ctx, method, path, nil, strings.NewReader(text), "text/plain", out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Kind: KindClient, Message: fmt.Sprintf("build request: %v", err), cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	reqID := uuid.NewString()[:8]
	timer := logging.StartTimer(logging.CategoryAPI, method+" "+path)
	logging.APIDebug("[%s] -> %s %s", reqID, method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timer.Stop()
		logging.Get(logging.CategoryAPI).Error("[%s] %s %s failed: %v", reqID, method, path, err)
		return networkError(err)
	}
	defer resp.Body.Close()
	timer.StopWithThreshold(5 * time.Second)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		logging.APIDebug("[%s] <- %d %s", reqID, resp.StatusCode, path)
		if resp.StatusCode == http.StatusUnauthorized && c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return statusError(resp.StatusCode, extractDetail(data))
	}

	logging.APIDebug("[%s] <- %d (%d bytes)", reqID, resp.StatusCode, len(data))

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: "malformed response body",
			cause:   err,
		}
	}
	return nil
}

// extractDetail pulls the human-readable message out of a backend error
// payload. The backend wraps messages as {"detail": "..."}; validation
// failures arrive as {"detail": [{"msg": "...", ...}, ...]}.
func extractDetail(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var msg string
	if err := json.Unmarshal(envelope.Detail, &msg); err == nil {
		return msg
	}

	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil && len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				parts = append(parts, f.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return string(envelope.Detail)
}

// intQuery builds a url.Values with a single integer parameter.
func intQuery(key string, val int) url.Values {
	q := url.Values{}
	q.Set(key, fmt.Sprintf("%d", val))
	return q
}
