package oauth

import (
	"net/http"
	"time"

	"igauth/internal/transport"
	"igauth/pkg/logger"
	"igauth/pkg/ratelimit"
)

// Option configures a Flow.
type Option func(*options)

type options struct {
	httpClient *http.Client
	transport  []transport.Option
	state      StateGenerator
	logger     logger.Logger
}

func defaultOptions() *options {
	return &options{
		state:  RandomState,
		logger: logger.NewNopLogger(),
	}
}

// WithHTTPClient sets the HTTP client used for the token exchange. The client
// is also handed to the Provider through the request context, so the
// identity fetch uses the same transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout sets the timeout of the token exchange client. It has no
// effect when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.transport = append(o.transport, transport.WithTimeout(d))
		}
	}
}

// WithUserAgent sets the User-Agent header of the token exchange.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.transport = append(o.transport, transport.WithUserAgent(ua))
	}
}

// WithLimiter throttles the token exchange. Pass the limiter the Provider
// uses so both calls draw from one budget.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(o *options) {
		if l != nil {
			o.transport = append(o.transport, transport.WithLimiter(l))
		}
	}
}

// WithStateGenerator replaces the nonce generator.
func WithStateGenerator(gen StateGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.state = gen
		}
	}
}

// WithLogger sets the logger used by the flow.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
