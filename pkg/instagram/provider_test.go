package instagram_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igerrors "igauth/pkg/errors"
	"igauth/pkg/instagram"
	"igauth/pkg/oauth"
	"igauth/pkg/session"
)

type apiServer struct {
	*httptest.Server
	calls     atomic.Int32
	userBody  string
	lastToken string
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	s := &apiServer{
		userBody: `{"data":{"id":"1574083","username":"snoopdogg","full_name":"Snoop Dogg","profile_picture":"https://img/1.jpg","website":"","bio":"x"}}`,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		switch r.URL.Path {
		case "/oauth/access_token":
			_ = r.ParseForm()
			if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"code":400,"error_type":"OAuthException"}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"IGQVJ-token","user":{"id":"1574083"}}`)
		case "/v1/users/self":
			s.lastToken = r.URL.Query().Get("access_token")
			_, _ = io.WriteString(w, s.userBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func providerConfig() oauth.Config {
	return oauth.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://example.com/callback",
		Scopes:       []string{"basic", "public_content"},
	}
}

func TestAuthCodeURL(t *testing.T) {
	p := instagram.NewProvider()

	cfg := providerConfig()
	cfg.Parameters = map[string]string{"hl": "en"}
	raw := p.AuthCodeURL(cfg, "nonce")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "api.instagram.com", u.Host)
	assert.Equal(t, "/oauth/authorize/", u.Path)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "basic public_content", q.Get("scope"))
	assert.Equal(t, "nonce", q.Get("state"))
	assert.Equal(t, "en", q.Get("hl"))
	assert.Empty(t, q.Get("client_secret"))
}

func TestAuthCodeURLWithoutState(t *testing.T) {
	p := instagram.NewProvider()
	u, err := url.Parse(p.AuthCodeURL(providerConfig(), ""))
	require.NoError(t, err)
	_, ok := u.Query()["state"]
	assert.False(t, ok)
}

func TestAuthCodeURLAlwaysSendsScope(t *testing.T) {
	p := instagram.NewProvider()
	cfg := providerConfig()
	cfg.Scopes = nil

	raw := p.AuthCodeURL(cfg, "st")
	assert.Contains(t, raw, "scope=")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	scope, ok := u.Query()["scope"]
	require.True(t, ok)
	assert.Equal(t, []string{""}, scope)
	assert.Equal(t, "st", u.Query().Get("state"))
}

func TestAuthCodeURLCustomSeparator(t *testing.T) {
	p := instagram.NewProvider()
	cfg := providerConfig()
	cfg.ScopeSeparator = ","
	u, err := url.Parse(p.AuthCodeURL(cfg, "s"))
	require.NoError(t, err)
	assert.Equal(t, "basic,public_content", u.Query().Get("scope"))
}

func TestEndpoints(t *testing.T) {
	p := instagram.NewProvider(instagram.WithBaseURL("http://localhost:1234/"))
	assert.Equal(t, "instagram", p.Name())
	assert.Equal(t, "http://localhost:1234/oauth/access_token", p.TokenURL())
	assert.Equal(t, "http://localhost:1234/oauth/authorize/", p.Endpoint().AuthURL)
}

func TestFetchUser(t *testing.T) {
	srv := newAPIServer(t)
	p := instagram.NewProvider(instagram.WithBaseURL(srv.URL))

	raw, err := p.FetchUser(context.Background(), "tok en")
	require.NoError(t, err)
	assert.Equal(t, "snoopdogg", raw["username"])
	assert.Equal(t, "tok en", srv.lastToken)
}

func TestFetchUserWithoutData(t *testing.T) {
	srv := newAPIServer(t)
	srv.userBody = `{"meta":{"code":200}}`
	p := instagram.NewProvider(instagram.WithBaseURL(srv.URL))

	_, err := p.FetchUser(context.Background(), "tok")
	assert.Equal(t, igerrors.ErrorTypeParsing, igerrors.TypeOf(err))
}

func TestMapIdentity(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, id *oauth.Identity)
	}{
		{
			name: "full profile",
			raw: map[string]any{
				"id":              "1574083",
				"username":        "snoopdogg",
				"full_name":       "Snoop Dogg",
				"profile_picture": "https://img/1.jpg",
				"website":         "https://snoop.com",
			},
			check: func(t *testing.T, id *oauth.Identity) {
				assert.Equal(t, "1574083", id.ID)
				require.NotNil(t, id.Username)
				assert.Equal(t, "snoopdogg", *id.Username)
				require.NotNil(t, id.FullName)
				assert.Equal(t, "Snoop Dogg", *id.FullName)
				require.NotNil(t, id.ProfilePictureURL)
				assert.Equal(t, "https://img/1.jpg", *id.ProfilePictureURL)
				require.NotNil(t, id.Website)
				assert.Nil(t, id.Email)
			},
		},
		{
			name: "id only",
			raw:  map[string]any{"id": "foo"},
			check: func(t *testing.T, id *oauth.Identity) {
				assert.Equal(t, "foo", id.ID)
				assert.Nil(t, id.Username)
				assert.Nil(t, id.FullName)
				assert.Nil(t, id.Email)
				assert.Nil(t, id.ProfilePictureURL)
				assert.Nil(t, id.Website)
			},
		},
		{
			name: "numeric id",
			raw:  map[string]any{"id": json.Number("1574083")},
			check: func(t *testing.T, id *oauth.Identity) {
				assert.Equal(t, "1574083", id.ID)
			},
		},
		{
			name: "float id",
			raw:  map[string]any{"id": float64(42)},
			check: func(t *testing.T, id *oauth.Identity) {
				assert.Equal(t, "42", id.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := instagram.MapIdentity(tt.raw)
			assert.Equal(t, tt.raw, id.Raw)
			tt.check(t, id)
		})
	}
}

func TestFlowWithInstagramProvider(t *testing.T) {
	srv := newAPIServer(t)
	p := instagram.NewProvider(instagram.WithBaseURL(srv.URL))
	flow, err := oauth.NewFlow(providerConfig(), p)
	require.NoError(t, err)

	store := session.NewMemoryStore()
	ctx := context.Background()

	redirect, err := flow.Authenticate(ctx, store)
	require.NoError(t, err)
	u, err := url.Parse(redirect.URL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.Len(t, state, oauth.StateLength)

	identity, err := flow.RetrieveUser(ctx, store, oauth.Callback{Code: "abc", State: state})
	require.NoError(t, err)
	assert.Equal(t, "1574083", identity.ID)
	assert.Equal(t, "IGQVJ-token", identity.AccessToken)
	assert.Equal(t, "IGQVJ-token", srv.lastToken)
	require.NotNil(t, identity.Username)
	assert.Equal(t, "snoopdogg", *identity.Username)
	assert.Equal(t, int32(2), srv.calls.Load())
}

func TestFlowRejectsForgedStateWithoutNetwork(t *testing.T) {
	srv := newAPIServer(t)
	p := instagram.NewProvider(instagram.WithBaseURL(srv.URL))
	flow, err := oauth.NewFlow(providerConfig(), p)
	require.NoError(t, err)

	store := session.NewMemoryStore()
	ctx := context.Background()
	_, err = flow.Authenticate(ctx, store)
	require.NoError(t, err)

	_, err = flow.RetrieveUser(ctx, store, oauth.Callback{Code: "abc", State: "forged"})
	assert.ErrorIs(t, err, igerrors.ErrInvalidState)
	assert.Zero(t, srv.calls.Load())
}
