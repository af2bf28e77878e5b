package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"igauth/internal/transport"
	igerrors "igauth/pkg/errors"
	"igauth/pkg/oauth"
)

// Provider implements oauth.Provider for Instagram.
type Provider struct {
	baseURL    string
	apiVersion string
	transport  *transport.Client
}

var _ oauth.Provider = (*Provider)(nil)

// NewProvider creates the Instagram provider.
func NewProvider(opts ...Option) *Provider {
	s := newSettings(opts)
	return &Provider{
		baseURL:    strings.TrimRight(s.baseURL, "/"),
		apiVersion: s.apiVersion,
		transport:  transport.New(s.transport...),
	}
}

// Name implements oauth.Provider.
func (p *Provider) Name() string {
	return "instagram"
}

// Endpoint returns the x/oauth2 endpoint description of the provider.
func (p *Provider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.baseURL + "/oauth/authorize/",
		TokenURL:  p.TokenURL(),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// AuthCodeURL implements oauth.Provider. Scopes are joined with a single
// space unless cfg overrides the separator; cfg.Parameters are appended.
func (p *Provider) AuthCodeURL(cfg oauth.Config, state string) string {
	sep := cfg.ScopeSeparator
	if sep == "" {
		sep = ScopeSeparator
	}

	oc := oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURL,
		Endpoint:    p.Endpoint(),
	}
	keys := make([]string, 0, len(cfg.Parameters))
	for k := range cfg.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// scope is sent even when empty; oauth2.Config.Scopes would drop it.
	params := make([]oauth2.AuthCodeOption, 0, len(keys)+1)
	params = append(params, oauth2.SetAuthURLParam("scope", strings.Join(cfg.Scopes, sep)))
	for _, k := range keys {
		params = append(params, oauth2.SetAuthURLParam(k, cfg.Parameters[k]))
	}

	return oc.AuthCodeURL(state, params...)
}

// TokenURL implements oauth.Provider.
func (p *Provider) TokenURL() string {
	return p.baseURL + "/oauth/access_token"
}

// FetchUser implements oauth.Provider. It returns the "data" object of
// GET /{version}/users/self.
func (p *Provider) FetchUser(ctx context.Context, accessToken string) (map[string]any, error) {
	u := ResolveURL(p.baseURL, p.apiVersion, "users/self", accessToken)

	doc, err := p.transport.Using(oauth.HTTPClientFromContext(ctx)).GetJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	data, ok := doc["data"].(map[string]any)
	if !ok {
		return nil, igerrors.Parsing(http.StatusOK, errors.New(`response has no "data" object`))
	}
	return data, nil
}

// MapIdentity implements oauth.Provider.
func (p *Provider) MapIdentity(raw map[string]any) *oauth.Identity {
	return MapIdentity(raw)
}

// MapIdentity maps an Instagram user object to an Identity.
func MapIdentity(raw map[string]any) *oauth.Identity {
	return &oauth.Identity{
		ID:                idString(raw["id"]),
		Username:          oauth.StringField(raw, "username"),
		FullName:          oauth.StringField(raw, "full_name"),
		Email:             oauth.StringField(raw, "email"),
		ProfilePictureURL: oauth.StringField(raw, "profile_picture"),
		Website:           oauth.StringField(raw, "website"),
		Raw:               raw,
	}
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
