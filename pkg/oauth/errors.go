package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrMissingRedirectURL is returned when the redirect URL is not provided.
	ErrMissingRedirectURL = errors.New("oauth: missing redirect URL")

	// ErrMissingProvider is returned when NewFlow or FetchIdentity is given a
	// nil Provider.
	ErrMissingProvider = errors.New("oauth: missing provider")

	// ErrMissingStore is returned when a stateful flow is given a nil session store.
	ErrMissingStore = errors.New("oauth: missing session store")

	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("oauth: missing authorization code")

	// ErrAuthorizationDenied is returned when the provider redirected back
	// with an error instead of a code, typically because the user declined.
	ErrAuthorizationDenied = errors.New("oauth: authorization denied")
)
