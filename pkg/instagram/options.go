package instagram

import (
	"net/http"
	"time"

	"igauth/internal/transport"
	"igauth/pkg/logger"
	"igauth/pkg/ratelimit"
)

const (
	// DefaultBaseURL is the Instagram API host.
	DefaultBaseURL = "https://api.instagram.com"
	// DefaultAPIVersion is the API version prefix of every resource path.
	DefaultAPIVersion = "v1"
	// ScopeSeparator joins scopes in the authorization URL.
	ScopeSeparator = " "
)

// Option configures a Provider or a Client.
type Option func(*settings)

type settings struct {
	baseURL    string
	apiVersion string
	encoding   Encoding
	transport  []transport.Option
	logger     logger.Logger
}

func newSettings(opts []Option) *settings {
	s := &settings{
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
		encoding:   EncodingLegacy,
		logger:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transport = append(s.transport, transport.WithLogger(s.logger))
	return s
}

// WithBaseURL points the provider or client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithAPIVersion sets the version path segment.
func WithAPIVersion(v string) Option {
	return func(s *settings) {
		if v != "" {
			s.apiVersion = v
		}
	}
}

// WithQueryEncoding selects how extra query parameters are encoded.
func WithQueryEncoding(enc Encoding) Option {
	return func(s *settings) {
		s.encoding = enc
	}
}

// WithHTTPClient sets the *http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.transport = append(s.transport, transport.WithHTTPClient(hc))
	}
}

// WithTimeout sets the request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.transport = append(s.transport, transport.WithTimeout(d))
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.transport = append(s.transport, transport.WithUserAgent(ua))
	}
}

// WithLimiter throttles requests on the client side.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *settings) {
		if l != nil {
			s.transport = append(s.transport, transport.WithLimiter(l))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
