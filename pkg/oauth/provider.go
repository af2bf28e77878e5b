package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Provider supplies the provider-specific parts of the flow.
type Provider interface {
	// Name returns the provider identifier, e.g. "instagram".
	Name() string

	// AuthCodeURL builds the authorization URL. state is empty when the
	// flow is stateless and must then be omitted from the URL.
	AuthCodeURL(cfg Config, state string) string

	// TokenURL is the endpoint the authorization code is posted to.
	TokenURL() string

	// FetchUser returns the provider's user object for the access token,
	// already unwrapped from any response envelope.
	FetchUser(ctx context.Context, accessToken string) (map[string]any, error)

	// MapIdentity converts a user object to an Identity. It never fails;
	// missing fields are left nil.
	MapIdentity(raw map[string]any) *Identity
}

// contextWithHTTPClient stores client under the x/oauth2 context key so
// providers can pick it up with HTTPClientFromContext.
func contextWithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// HTTPClientFromContext returns the client installed by a Flow configured
// with WithHTTPClient, or nil.
func HTTPClientFromContext(ctx context.Context) *http.Client {
	client, _ := ctx.Value(oauth2.HTTPClient).(*http.Client)
	return client
}
