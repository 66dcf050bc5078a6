// Package gateway is the typed client for the storefront REST backend.
// Response payloads are normalized here so callers only see model types.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds backend connection settings
type Config struct {
	// BaseURL is the backend root including the /api prefix
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the default gateway configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5000/api",
		Timeout: 30 * time.Second,
	}
}

// Client is an HTTP client for the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new backend client
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a client with a caller-supplied transport
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "gateway")),
	}
}

type cookiesKey struct{}

// WithCookies attaches backend auth cookies to outgoing requests made with ctx
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

// CookiesFrom returns the cookies attached with WithCookies
func CookiesFrom(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cookies
}

// request describes one backend call
type request struct {
	method string
	path   string
	query  url.Values

	// body is JSON-encoded unless contentType is set, in which case it must be an io.Reader
	body        any
	contentType string
}

// response is what the gateway keeps from a backend reply
type response struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (c *Client) send(ctx context.Context, r request) (*response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	contentType := r.contentType
	switch b := r.body.(type) {
	case nil:
	case io.Reader:
		bodyReader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for _, cookie := range CookiesFrom(ctx) {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, r.method, r.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	c.logger.Debug("backend request",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, resp.Status, body)
	}
	return &response{status: resp.StatusCode, body: body, cookies: resp.Cookies()}, nil
}

// do performs a request and decodes a JSON reply into result, if any
func (c *Client) do(ctx context.Context, r request, result any) (*response, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	if result != nil && resp.status != http.StatusNoContent && len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, result); err != nil {
			return nil, fmt.Errorf("failed to parse %s %s response: %w", r.method, r.path, err)
		}
	}
	return resp, nil
}

// Ping checks that the backend answers at all
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.send(ctx, request{method: http.MethodGet, path: "/genres"})
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}
