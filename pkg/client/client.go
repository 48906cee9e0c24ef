package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the default base URL for the Quickwit REST API.
const DefaultBaseURL = "http://localhost:7280"

// Observer receives one callback per completed backend call.
// route is the path template (e.g. "/api/v1/indexes/{id}/describe"), status
// is 0 when the transport failed before a response arrived.
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration, err error)
}

// Client is a Quickwit REST API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithObserver registers an observer notified after every request.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a new Quickwit API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs a GET request against path (which may carry a raw query
// string) and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, route, path string, result any) error {
	start := time.Now()
	status := 0
	var err error
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRequest(http.MethodGet, route, status, time.Since(start), err)
		}
	}()

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if reqErr != nil {
		err = fmt.Errorf("creating request: %w", reqErr)
		return err
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", "GET"),
			slog.String("path", path),
			slog.String("error", doErr.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		err = &NetworkError{Path: path, Err: doErr}
		return err
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode >= 400 {
		err = c.parseError(resp)
		slog.Debug("HTTP request returned error",
			slog.String("method", "GET"),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return err
	}

	if decErr := json.NewDecoder(resp.Body).Decode(result); decErr != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(decErr, &netErr) || errors.Is(decErr, context.Canceled) || errors.Is(decErr, context.DeadlineExceeded) {
			err = &NetworkError{Path: path, Err: decErr}
		} else {
			err = &DecodeError{Path: path, Err: decErr}
		}
		return err
	}

	slog.Debug("HTTP request completed",
		slog.String("method", "GET"),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}

// parseError extracts an APIError from an error response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		if errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
