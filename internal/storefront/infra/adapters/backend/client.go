// Package backend is the HTTP adapter to the food-ordering API. It implements
// the order gateway, profile and menu ports over JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jcmexdev/food-storefront/internal/pkg/credential"
	"github.com/jcmexdev/food-storefront/internal/pkg/requestmeta"
	"github.com/jcmexdev/food-storefront/internal/pkg/telemetry"
)

// maxErrorBody bounds how much of a failed response is kept in APIError.
const maxErrorBody = 64 << 10

// APIError is returned for any non-2xx response. Body holds the raw payload.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a client for the API rooted at baseURL. Outgoing calls
// carry a client span and the W3C trace headers.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: telemetry.HTTPTransport(nil),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call sends a JSON request and decodes a JSON response into out. A nil out
// discards the body. It reports false when the body was JSON null.
func (c *Client) call(ctx context.Context, method, path, token string, headers http.Header, in, out any) (bool, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("backend: %s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", credential.Header(token))
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	requestmeta.Propagate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("backend: %s %s: read body: %w", method, path, err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, fmt.Errorf("backend: %s %s: decode: %w", method, path, err)
	}
	return true, nil
}
