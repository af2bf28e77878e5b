// Package transport sends HTTP requests to the Instagram API and decodes the
// JSON object each endpoint returns.
package transport

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

	igerrors "igauth/pkg/errors"
	"igauth/pkg/logger"
	"igauth/pkg/ratelimit"
)

// Document is a decoded JSON object. Numbers are kept as json.Number.
type Document = map[string]any

const bodyPreviewLimit = 200

// Client performs requests with the configured headers, an optional rate
// limiter, and status-code classification.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of the default *http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.headers["User-Agent"] = ua
		}
	}
}

// WithLimiter throttles every request through l.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client. Without options it uses a 30 second timeout and
// discards logs.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers: map[string]string{
			"Accept": "application/json",
		},
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHeader sets a header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// HTTPClient returns the underlying *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Using returns a copy of c that sends requests through hc. A nil hc
// returns c itself.
func (c *Client) Using(hc *http.Client) *Client {
	if hc == nil || hc == c.httpClient {
		return c
	}
	clone := *c
	clone.httpClient = hc
	return &clone
}

// GetJSON performs a GET request and decodes the JSON response.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (Document, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil)
}

// PostForm performs a form-encoded POST and decodes the JSON response.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (Document, error) {
	if form == nil {
		form = url.Values{}
	}
	return c.Do(ctx, http.MethodPost, rawURL, form)
}

// DeleteJSON performs a DELETE request and decodes the JSON response.
func (c *Client) DeleteJSON(ctx context.Context, rawURL string) (Document, error) {
	return c.Do(ctx, http.MethodDelete, rawURL, nil)
}

// Do sends one request. A non-nil form is sent as the urlencoded body.
// Transport failures, non-2xx statuses and undecodable bodies are returned as
// *errors.Error values; nothing is retried.
func (c *Client) Do(ctx context.Context, method, rawURL string, form url.Values) (Document, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &igerrors.Error{
			Type:    igerrors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Err:     err,
		}
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, igerrors.Network(err)
		}
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, igerrors.Network(fmt.Errorf("read response body: %w", err))
	}

	if err := c.checkResponseStatus(req, resp, data); err != nil {
		return nil, err
	}

	return c.decode(req, resp.StatusCode, data)
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	redacted := logger.RedactURL(req.URL.String())
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    redacted,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      redacted,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, igerrors.Network(err)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, time.Since(start))
	return resp, nil
}

func (c *Client) checkResponseStatus(req *http.Request, resp *http.Response, data []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := igerrors.FromStatus(resp.StatusCode, data)
	c.logger.WarnWithFields("API returned error status", map[string]interface{}{
		"method":       req.Method,
		"url":          logger.RedactURL(req.URL.String()),
		"status_code":  resp.StatusCode,
		"error_type":   string(apiErr.Type),
		"body_preview": preview(data),
	})
	return apiErr
}

func (c *Client) decode(req *http.Request, status int, data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		c.logger.ErrorWithFields("failed to decode JSON response", map[string]interface{}{
			"url":          logger.RedactURL(req.URL.String()),
			"error":        err.Error(),
			"body_preview": preview(data),
		})
		return nil, igerrors.Parsing(status, err)
	}
	if doc == nil {
		err := fmt.Errorf("expected a JSON object, got %q", preview(data))
		return nil, igerrors.Parsing(status, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		err := fmt.Errorf("unexpected data after JSON object: %q", preview(data))
		return nil, igerrors.Parsing(status, err)
	}
	return doc, nil
}

func preview(data []byte) string {
	if len(data) > bodyPreviewLimit {
		return string(data[:bodyPreviewLimit]) + "..."
	}
	return string(data)
}
