package instagram

import (
	"context"
	"net/url"
	"strings"

	"igauth/internal/transport"
	"igauth/pkg/logger"
)

// Document is a decoded JSON response. Numbers are json.Number values.
type Document = transport.Document

// Params are optional query parameters. Empty values are dropped.
type Params map[string]string

// Client calls the Instagram REST endpoints with a user's access token.
// Every method issues exactly one request and never retries.
type Client struct {
	baseURL    string
	apiVersion string
	encoding   Encoding
	transport  *transport.Client
	logger     logger.Logger
}

// NewClient creates a resource client.
func NewClient(opts ...Option) *Client {
	s := newSettings(opts)
	return &Client{
		baseURL:    strings.TrimRight(s.baseURL, "/"),
		apiVersion: s.apiVersion,
		encoding:   s.encoding,
		transport:  transport.New(s.transport...),
		logger:     s.logger,
	}
}

// URL resolves template against the client's base URL and version.
func (c *Client) URL(token, template string, values ...string) string {
	return ResolveURL(c.baseURL, c.apiVersion, template, token, values...)
}

func (c *Client) get(ctx context.Context, token, template string, values ...string) (Document, error) {
	return c.transport.GetJSON(ctx, c.URL(token, template, values...))
}

func (c *Client) getWithParams(ctx context.Context, token string, params Params, template string, values ...string) (Document, error) {
	u := AppendQuery(c.URL(token, template, values...), "&", params.nonEmpty(), c.encoding)
	return c.transport.GetJSON(ctx, u)
}

func (c *Client) post(ctx context.Context, token string, form url.Values, template string, values ...string) (Document, error) {
	return c.transport.PostForm(ctx, c.URL(token, template, values...), form)
}

func (c *Client) delete(ctx context.Context, token, template string, values ...string) (Document, error) {
	return c.transport.DeleteJSON(ctx, c.URL(token, template, values...))
}

func (p Params) nonEmpty() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
