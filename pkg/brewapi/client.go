// Package brewapi wraps the storefront REST backend. Each resource gets
// a small typed client surface; the backend owns all state, these calls
// only move snapshots of it.
package brewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 2048
)

// TokenSource supplies the bearer token attached to authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront backend API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	onUnauthorized func(context.Context)
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithTokenSource attaches a session whose token is sent as a bearer
// credential on every request.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithUnauthorizedHook registers a callback fired whenever the backend
// answers 401, before the typed error is returned to the caller.
func WithUnauthorizedHook(hook func(context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// New builds a backend client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "backend base url is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}

// do executes one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		// An unauthenticated call is still allowed; the backend decides
		// which endpoints require credentials.
		if token, tokenErr := c.tokens.Token(ctx); tokenErr == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.errorFromResponse(ctx, resp, method, path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s %s response", method, path))
	}
	return nil
}

func (c *Client) errorFromResponse(ctx context.Context, resp *http.Response, method, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	detail := backendErrorDetail(raw)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or missing")
	case resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied by backend")
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", strings.Trim(path, "/")))
	case resp.StatusCode < http.StatusInternalServerError:
		err := pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("backend rejected %s %s", method, path))
		if detail != "" {
			err = err.WithDetails(detail)
		}
		return err
	default:
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, detail),
			fmt.Sprintf("%s %s failed", method, path),
		)
	}
}

// backendErrorDetail pulls the human message out of DRF-style error
// payloads, falling back to the trimmed raw body.
func backendErrorDetail(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return trimmed
}
