// Package backend is the HTTP gateway to the REST API and the chatbot service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

const (
	defaultTimeout              = 15 * time.Second
	errorBodyReadLimit    int64 = 64 * 1024
	responseBodyReadLimit int64 = 8 * 1024 * 1024
)

// RequestIDHeader correlates storefront and backend logs for one shopper request.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID makes every backend call made under ctx carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// TokenSource returns the bearer token for the current request, or "" when the
// visitor is anonymous.
type TokenSource func(ctx context.Context) (string, error)

// UnauthorizedHandler runs whenever the backend answers 401.
type UnauthorizedHandler func(ctx context.Context)

// Observer records upstream round trips.
type Observer interface {
	ObserveUpstream(upstream, method string, status int, duration time.Duration)
}

// Client performs JSON requests against one backend.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	name           string
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	observer       Observer
	logg           *logger.Logger
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

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithName labels the upstream in logs and metrics.
func WithName(name string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.name = trimmed
		}
	}
}

func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) { c.logg = logg }
}

// NewClient builds a client rooted at baseURL, e.g. http://localhost:8000/api/v1.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", baseURL, err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmed,
		name:       "api",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Name returns the upstream label.
func (c *Client) Name() string { return c.name }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.buildURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return fmt.Errorf("loading access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, start)
		c.logFailure(ctx, method, path, 0, err)
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(method, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		apiErr := newStatusError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		c.logFailure(ctx, method, path, resp.StatusCode, apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(c.name, method, status, time.Since(start))
	}
}

func (c *Client) logFailure(ctx context.Context, method, path string, status int, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithUpstream(ctx, c.name)
	ctx = c.logg.WithFields(ctx, map[string]any{
		"upstream_method": method,
		"upstream_path":   path,
		"upstream_status": status,
	})
	if status >= 500 || status == 0 {
		c.logg.Error(ctx, "upstream.request_failed", err)
		return
	}
	c.logg.Warn(ctx, "upstream.request_rejected")
}
