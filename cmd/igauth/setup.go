package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"igauth/pkg/auth"
	"igauth/pkg/config"
	"igauth/pkg/instagram"
	"igauth/pkg/logger"
	"igauth/pkg/oauth"
	"igauth/pkg/ratelimit"
	"igauth/pkg/ui"
)

// oauthConfig derives the flow configuration from the instagram section.
func oauthConfig(cfg *config.Config) oauth.Config {
	return oauth.Config{
		ClientID:       cfg.Instagram.ClientID,
		ClientSecret:   cfg.Instagram.ClientSecret,
		RedirectURL:    cfg.Instagram.RedirectURL,
		Scopes:         cfg.Instagram.Scopes,
		ScopeSeparator: instagram.ScopeSeparator,
		Stateless:      cfg.Instagram.Stateless,
		Parameters:     cfg.Instagram.Parameters,
	}
}

// newLimiter returns the configured client-side limiter, or nil.
func newLimiter(cfg *config.Config) ratelimit.Limiter {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerHour <= 0 {
		return nil
	}
	return ratelimit.PerHour(cfg.RateLimit.RequestsPerHour)
}

func instagramOptions(cfg *config.Config, log logger.Logger, limiter ratelimit.Limiter) []instagram.Option {
	return []instagram.Option{
		instagram.WithBaseURL(cfg.Instagram.BaseURL),
		instagram.WithAPIVersion(cfg.Instagram.APIVersion),
		instagram.WithTimeout(cfg.HTTP.Timeout),
		instagram.WithUserAgent(cfg.HTTP.UserAgent),
		instagram.WithLimiter(limiter),
		instagram.WithLogger(log),
	}
}

// newFlow validates cfg and builds the authorization flow. The token
// exchange and the identity fetch share the HTTP settings and one limiter.
func newFlow(cfg *config.Config) (*oauth.Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	log := logger.GetLogger().WithField("component", "oauth")
	limiter := newLimiter(cfg)
	provider := instagram.NewProvider(instagramOptions(cfg, log, limiter)...)
	return oauth.NewFlow(oauthConfig(cfg), provider,
		oauth.WithTimeout(cfg.HTTP.Timeout),
		oauth.WithUserAgent(cfg.HTTP.UserAgent),
		oauth.WithLimiter(limiter),
		oauth.WithLogger(log),
	)
}

// newProvider builds the provider alone, for commands that already hold a
// token. The client registration is not required.
func newProvider(cfg *config.Config) *instagram.Provider {
	log := logger.GetLogger().WithField("component", "oauth")
	return instagram.NewProvider(instagramOptions(cfg, log, newLimiter(cfg))...)
}

// newClient builds the REST client. Only the API location matters here, so
// the client registration is not validated.
func newClient(cfg *config.Config) *instagram.Client {
	log := logger.GetLogger().WithField("component", "api")
	return instagram.NewClient(instagramOptions(cfg, log, newLimiter(cfg))...)
}

// ensureSecret prompts for the client secret when no other source set it.
func ensureSecret(cfg *config.Config, p *ui.Prompter) error {
	if cfg.Instagram.ClientSecret != "" {
		return nil
	}
	secret, err := p.Secret("Client secret: ")
	if err != nil {
		return fmt.Errorf("failed to read client secret: %w", err)
	}
	cfg.Instagram.ClientSecret = secret
	return nil
}

// errStateRequired is returned for a bare code when the flow checks state.
var errStateRequired = errors.New("paste the full redirect URL; its state parameter is required")

// parseCallbackInput accepts the full redirect URL or its query string. A
// bare authorization code is accepted only when stateless is set, since it
// carries no state to verify.
func parseCallbackInput(input string, stateless bool) (oauth.Callback, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return oauth.Callback{}, errors.New("empty callback")
	}

	if strings.Contains(input, "://") {
		u, err := url.Parse(input)
		if err != nil {
			return oauth.Callback{}, fmt.Errorf("invalid callback URL: %w", err)
		}
		return oauth.CallbackFromValues(u.Query()), nil
	}

	if strings.Contains(input, "=") {
		values, err := url.ParseQuery(strings.TrimPrefix(input, "?"))
		if err != nil {
			return oauth.Callback{}, fmt.Errorf("invalid callback query: %w", err)
		}
		return oauth.CallbackFromValues(values), nil
	}

	if !stateless {
		return oauth.Callback{}, errStateRequired
	}
	return oauth.Callback{Code: input}, nil
}

// callbackPrompt is the prompt for the pasted callback.
func callbackPrompt(stateless bool) string {
	if stateless {
		return "\nPaste the redirect URL or code: "
	}
	return "\nPaste the full redirect URL: "
}

// parseParams turns repeated key=value flags into query parameters.
func parseParams(pairs []string) (instagram.Params, error) {
	params := make(instagram.Params, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[k] = v
	}
	return params, nil
}

// resolveToken picks the access token: an explicit value, the record stored
// for user, or the default record.
func resolveToken(m *auth.Manager, explicit, user string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	var (
		rec *auth.TokenRecord
		err error
	)
	if user != "" {
		rec, err = m.Load(user)
	} else {
		rec, err = m.LoadDefault()
	}
	if err != nil {
		return "", fmt.Errorf("no access token available, run 'igauth authorize' first: %w", err)
	}
	return rec.AccessToken, nil
}
