package oauth

import (
	"errors"
	"maps"
	"slices"
)

// DefaultScopeSeparator joins scopes when neither the Config nor the
// Provider specify one.
const DefaultScopeSeparator = ","

// StateKey is the session key under which the pending nonce is stored.
const StateKey = "state"

// Config describes one OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// ScopeSeparator overrides the provider's separator when non-empty.
	ScopeSeparator string
	Stateless      bool
	// Parameters are added verbatim to the authorization URL.
	Parameters map[string]string
}

// Validate reports every missing required field.
func (c Config) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, ErrMissingClientID)
	}
	if c.ClientSecret == "" {
		errs = append(errs, ErrMissingClientSecret)
	}
	if c.RedirectURL == "" {
		errs = append(errs, ErrMissingRedirectURL)
	}
	return errors.Join(errs...)
}

func (c Config) clone() Config {
	c.Scopes = slices.Clone(c.Scopes)
	c.Parameters = maps.Clone(c.Parameters)
	return c
}
