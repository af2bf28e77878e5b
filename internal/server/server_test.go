package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igerrors "igauth/pkg/errors"
	"igauth/pkg/instagram"
	"igauth/pkg/logger"
	"igauth/pkg/oauth"
)

// fakeInstagram serves the token and users/self endpoints.
type fakeInstagram struct {
	*httptest.Server
	calls     atomic.Int32
	tokenCode int
}

func newFakeInstagram(t *testing.T) *fakeInstagram {
	t.Helper()
	f := &fakeInstagram{tokenCode: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		switch r.URL.Path {
		case "/oauth/access_token":
			w.WriteHeader(f.tokenCode)
			if f.tokenCode != http.StatusOK {
				_, _ = io.WriteString(w, `{"error_type":"OAuthException","code":400}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"IGQVJ-access-token"}`)
		case "/v1/users/self":
			_, _ = io.WriteString(w, `{"data":{"id":"1574083","username":"snoopdogg"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

type harness struct {
	api    *fakeInstagram
	srv    *httptest.Server
	client *http.Client
	logger *logger.TestLogger
	seen   []*oauth.Identity
}

func newHarness(t *testing.T, stateless bool, hook func(*harness) IdentityHandler) *harness {
	t.Helper()
	h := &harness{api: newFakeInstagram(t), logger: logger.NewTestLogger()}

	cfg := oauth.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Scopes:       []string{"basic"},
		Stateless:    stateless,
	}
	flow, err := oauth.NewFlow(cfg, instagram.NewProvider(instagram.WithBaseURL(h.api.URL)))
	require.NoError(t, err)

	onIdentity := func(_ context.Context, id *oauth.Identity) error {
		h.seen = append(h.seen, id)
		return nil
	}
	if hook != nil {
		onIdentity = hook(h)
	}

	s, err := New(flow, Options{OnIdentity: onIdentity, Logger: h.logger})
	require.NoError(t, err)

	h.srv = httptest.NewServer(s.Handler())
	t.Cleanup(h.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}
	return h
}

func (h *harness) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) login(t *testing.T) string {
	t.Helper()
	resp := h.get(t, "/login")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize/", loc.Path)
	return loc.Query().Get("state")
}

func TestLoginAndCallback(t *testing.T) {
	h := newHarness(t, false, nil)

	state := h.login(t)
	require.Len(t, state, oauth.StateLength)
	assert.Zero(t, h.api.calls.Load())

	resp := h.get(t, "/callback?code=abc&state="+state)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1574083", body["id"])
	assert.Equal(t, "snoopdogg", body["username"])
	assert.Equal(t, "IGQVJ-access-token", body["access_token"])

	require.Len(t, h.seen, 1)
	assert.Equal(t, "IGQVJ-access-token", h.seen[0].AccessToken)

	// replaying the same callback fails: the state was consumed
	resp = h.get(t, "/callback?code=abc&state="+state)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(2), h.api.calls.Load())

	for _, msg := range h.logger.GetMessages() {
		if u, ok := msg.Fields["url"].(string); ok {
			assert.NotContains(t, u, "code=abc")
		}
	}
}

func TestCallbackForgedState(t *testing.T) {
	h := newHarness(t, false, nil)
	h.login(t)

	resp := h.get(t, "/callback?code=abc&state=forged")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, h.api.calls.Load())
	assert.Empty(t, h.seen)
}

func TestCallbackWithoutSession(t *testing.T) {
	h := newHarness(t, false, nil)

	resp := h.get(t, "/callback?code=abc&state=whatever")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, h.api.calls.Load())
}

func TestCallbackDenied(t *testing.T) {
	h := newHarness(t, true, nil)

	resp := h.get(t, "/callback?error=access_denied&error_reason=user_denied")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, h.api.calls.Load())
}

func TestCallbackTokenEndpointError(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.tokenCode = http.StatusBadRequest

	resp := h.get(t, "/callback?code=abc")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.True(t, h.logger.HasMessage("authorization failed"))
}

func TestStatelessLogin(t *testing.T) {
	h := newHarness(t, true, nil)

	resp := h.get(t, "/login")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.NotContains(t, resp.Header.Get("Location"), "state=")

	resp = h.get(t, "/callback?code=abc")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIdentityHookError(t *testing.T) {
	h := newHarness(t, true, func(*harness) IdentityHandler {
		return func(context.Context, *oauth.Identity) error {
			return errors.New("keyring locked")
		}
	})

	resp := h.get(t, "/callback?code=abc")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, false, nil)

	resp := h.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestCallbackStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, callbackStatus(igerrors.InvalidState("x")))
	assert.Equal(t, http.StatusBadRequest, callbackStatus(oauth.ErrMissingCode))
	assert.Equal(t, http.StatusBadGateway, callbackStatus(igerrors.Network(io.EOF)))
	assert.Equal(t, http.StatusBadGateway, callbackStatus(igerrors.FromStatus(http.StatusServiceUnavailable, nil)))
	assert.Equal(t, http.StatusGatewayTimeout, callbackStatus(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, callbackStatus(errors.New("other")))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	flow, err := oauth.NewFlow(oauth.Config{
		ClientID:     "c",
		ClientSecret: "s",
		RedirectURL:  "http://localhost/callback",
	}, instagram.NewProvider())
	require.NoError(t, err)

	s, err := New(flow, Options{})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewRejectsNilFlow(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}
