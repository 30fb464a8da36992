package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Result is the normalized envelope every billing endpoint response is
// mapped into, regardless of gateway.
type Result struct {
	OK     bool
	Status int
	Error  string
	Data   map[string]any
}

// Client is the HTTP client for the backend billing API. All mutating
// calls identify the acting user through the x-user-id header.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger attaches a logger for request diagnostics.
func WithClientLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a billing API client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends a JSON request and normalizes the response into a Result.
// Transport failures are returned as errors; non-2xx responses come back
// as Result{OK: false} with the message extracted from the body.
func (c *Client) post(ctx context.Context, path, userID string, body any) (*Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("billing: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing: %s: %w", path, err)
	}
	defer resp.Body.Close()

	return normalize(resp)
}

// get mirrors post for read-only endpoints.
func (c *Client) get(ctx context.Context, path, userID string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("billing: build request: %w", err)
	}
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing: %s: %w", path, err)
	}
	defer resp.Body.Close()

	return normalize(resp)
}

// normalize maps an HTTP response into the uniform Result envelope. The
// error message is drawn from the detail, error, and message body fields
// in that precedence order.
func normalize(resp *http.Response) (*Result, error) {
	result := &Result{
		Status: resp.StatusCode,
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("billing: read response: %w", err)
	}
	if len(payload) > 0 {
		// Non-JSON bodies are tolerated; the envelope then carries no data.
		_ = json.Unmarshal(payload, &result.Data)
	}

	if !result.OK {
		result.Error = errorMessage(result.Data)
		if result.Error == "" {
			result.Error = http.StatusText(resp.StatusCode)
		}
	}
	return result, nil
}

func errorMessage(data map[string]any) string {
	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// asError converts a failed Result into a ProviderError. Successful
// results yield nil.
func (r *Result) asError() error {
	if r.OK {
		return nil
	}
	return &ProviderError{Status: r.Status, Message: r.Error}
}

// stringField reads a string value out of the result data.
func (r *Result) stringField(key string) string {
	if r.Data == nil {
		return ""
	}
	v, _ := r.Data[key].(string)
	return v
}
