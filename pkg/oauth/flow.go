package oauth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"

	"igauth/internal/transport"
	igerrors "igauth/pkg/errors"
	"igauth/pkg/logger"
	"igauth/pkg/session"
)

// Redirect is where the user agent must be sent to authorize the client.
type Redirect struct {
	URL string
	// State is the nonce stored in the session, empty when stateless.
	State string
}

// Write sends a 302 redirect to the authorization URL.
func (r *Redirect) Write(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, r.URL, http.StatusFound)
}

// Flow runs the authorization-code flow for one client registration.
// Configure it once at startup; its methods are safe for concurrent use as
// long as Stateless is not called concurrently with them.
type Flow struct {
	cfg       Config
	provider  Provider
	transport *transport.Client
	opts      *options
	log       logger.Logger
}

// NewFlow validates cfg and returns a Flow for provider.
func NewFlow(cfg Config, provider Provider, opts ...Option) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrMissingProvider
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger.WithField("provider", provider.Name())

	topts := append(o.transport,
		transport.WithHTTPClient(o.httpClient),
		transport.WithLogger(log),
	)

	return &Flow{
		cfg:       cfg.clone(),
		provider:  provider,
		transport: transport.New(topts...),
		opts:      o,
		log:       log,
	}, nil
}

// Stateless disables state generation and verification for all subsequent
// calls and returns the Flow.
func (f *Flow) Stateless() *Flow {
	f.cfg.Stateless = true
	return f
}

// IsStateless reports whether state handling is disabled.
func (f *Flow) IsStateless() bool {
	return f.cfg.Stateless
}

// Config returns a copy of the flow's configuration.
func (f *Flow) Config() Config {
	return f.cfg.clone()
}

// Provider returns the provider the flow was built with.
func (f *Flow) Provider() Provider {
	return f.provider
}

// Authenticate builds the authorization redirect. Unless the flow is
// stateless, a fresh nonce is stored in store under StateKey, replacing any
// pending one. store may be nil for stateless flows.
func (f *Flow) Authenticate(ctx context.Context, store session.Store) (*Redirect, error) {
	if f.cfg.Stateless {
		return &Redirect{URL: f.provider.AuthCodeURL(f.cfg, "")}, nil
	}
	if store == nil {
		return nil, ErrMissingStore
	}

	state, err := f.opts.state()
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, StateKey, state); err != nil {
		return nil, fmt.Errorf("oauth: store state: %w", err)
	}

	f.log.Debug("authorization state stored")

	return &Redirect{
		URL:   f.provider.AuthCodeURL(f.cfg, state),
		State: state,
	}, nil
}

// RetrieveUser completes the flow for a callback. The stored nonce is
// consumed whatever the outcome; on mismatch an error matching
// errors.ErrInvalidState is returned before any network call.
func (f *Flow) RetrieveUser(ctx context.Context, store session.Store, cb Callback) (*Identity, error) {
	if !f.cfg.Stateless {
		if err := f.verifyState(ctx, store, cb.State); err != nil {
			return nil, err
		}
	}

	if cb.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrAuthorizationDenied, cb.Error, cb.ErrorDescription)
	}
	if cb.Code == "" {
		return nil, ErrMissingCode
	}

	ctx = contextWithHTTPClient(ctx, f.opts.httpClient)

	tok, err := f.ExchangeCode(ctx, cb.Code)
	if err != nil {
		return nil, err
	}

	identity, err := f.fetchIdentity(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	identity.attachToken(tok)

	f.log.InfoWithFields("user authorized", map[string]interface{}{
		"user_id": identity.ID,
	})
	return identity, nil
}

// UserFromToken fetches the identity for an access token obtained earlier.
// No state check and no token exchange take place.
func (f *Flow) UserFromToken(ctx context.Context, accessToken string) (*Identity, error) {
	ctx = contextWithHTTPClient(ctx, f.opts.httpClient)

	identity, err := FetchIdentity(ctx, f.provider, accessToken)
	if err != nil {
		f.log.WithError(err).Warn("identity fetch failed")
		return nil, err
	}
	return identity, nil
}

// FetchIdentity fetches and maps the identity behind accessToken using
// provider alone. It needs no client registration; the result carries
// accessToken and no refresh token or expiry.
func FetchIdentity(ctx context.Context, provider Provider, accessToken string) (*Identity, error) {
	if provider == nil {
		return nil, ErrMissingProvider
	}
	raw, err := provider.FetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	identity := provider.MapIdentity(raw)
	identity.attachToken(&TokenResponse{AccessToken: accessToken})
	return identity, nil
}

// ExchangeCode posts the authorization code to the token endpoint.
func (f *Flow) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"client_id":     {f.cfg.ClientID},
		"client_secret": {f.cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {f.cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	f.log.DebugWithFields("exchanging authorization code", map[string]interface{}{
		"token_url": f.provider.TokenURL(),
	})

	doc, err := f.transport.PostForm(ctx, f.provider.TokenURL(), form)
	if err != nil {
		f.log.WithError(err).Warn("token exchange failed")
		return nil, err
	}
	return tokenFromDocument(doc), nil
}

func (f *Flow) verifyState(ctx context.Context, store session.Store, state string) error {
	if store == nil {
		return ErrMissingStore
	}

	stored, ok, err := store.Pull(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("oauth: pull state: %w", err)
	}

	if !ok || stored == "" {
		f.log.Warn("callback without pending authorization state")
		return igerrors.InvalidState("no pending authorization state")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(state)) != 1 {
		f.log.Warn("callback state does not match pending authorization state")
		return igerrors.InvalidState("state mismatch")
	}
	return nil
}

func (f *Flow) fetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	raw, err := f.provider.FetchUser(ctx, accessToken)
	if err != nil {
		f.log.WithError(err).Warn("identity fetch failed")
		return nil, err
	}
	return f.provider.MapIdentity(raw), nil
}
