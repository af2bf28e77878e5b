// Package server runs the local HTTP endpoint that starts the authorization
// flow and receives the provider's callback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	chisession "gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	igerrors "igauth/pkg/errors"
	"igauth/pkg/logger"
	"igauth/pkg/oauth"
	"igauth/pkg/session"
)

// IdentityHandler receives every identity authorized through the callback.
// An error turns the callback response into a 500.
type IdentityHandler func(ctx context.Context, id *oauth.Identity) error

// Options configures a Server.
type Options struct {
	// CookieName names the session cookie. Defaults to "igauth_session".
	CookieName    string
	SecureCookies bool
	// SessionTTL bounds how long a pending state survives. Defaults to 10m.
	SessionTTL time.Duration

	// Redis, when set, holds pending states instead of the in-memory
	// session provider. Keys are KeyPrefix + session ID + ":state".
	Redis     redis.UniversalClient
	KeyPrefix string

	OnIdentity IdentityHandler
	Logger     logger.Logger
}

// Server serves /login, /callback and /health.
type Server struct {
	flow   *oauth.Flow
	opts   Options
	log    logger.Logger
	router chi.Router
}

// New builds the router. It fails only if the session middleware cannot be
// initialized.
func New(flow *oauth.Flow, opts Options) (*Server, error) {
	if flow == nil {
		return nil, errors.New("server: nil flow")
	}
	if opts.CookieName == "" {
		opts.CookieName = "igauth_session"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	s := &Server{
		flow: flow,
		opts: opts,
		log:  opts.Logger.WithField("component", "server"),
	}

	sessioner, err := chisession.Sessioner(chisession.Options{
		Provider:    "memory",
		CookieName:  opts.CookieName,
		Secure:      opts.SecureCookies,
		Gclifetime:  int64(opts.SessionTTL / time.Second),
		Maxlifetime: int64(opts.SessionTTL / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.logRequests)
	r.Use(sessioner)

	r.Get("/login", s.handleLogin)
	r.Get("/callback", s.handleCallback)
	r.Get("/health", s.handleHealth)

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.LogComponentStart(s.log, "callback server", map[string]interface{}{
		"addr":      ln.Addr().String(),
		"stateless": s.flow.IsStateless(),
		"backend":   s.backend(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.log.Info("callback server stopped")
		return nil
	}
}

func (s *Server) backend() string {
	if s.opts.Redis != nil {
		return "redis"
	}
	return "memory"
}

// stateStore returns the pending-state store for the request's session.
func (s *Server) stateStore(r *http.Request) (session.Store, error) {
	if s.opts.Redis == nil {
		return session.FromRequest(r)
	}

	raw := chisession.GetSession(r)
	if raw == nil {
		return nil, session.ErrNoSession
	}
	opts := []session.RedisOption{session.WithTTL(s.opts.SessionTTL)}
	if s.opts.KeyPrefix != "" {
		opts = append(opts, session.WithKeyPrefix(s.opts.KeyPrefix))
	}
	return session.NewRedisStore(s.opts.Redis, raw.ID(), opts...), nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	store, err := s.stateStore(r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "session unavailable", err)
		return
	}

	redirect, err := s.flow.Authenticate(r.Context(), store)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to start authorization", err)
		return
	}

	redirect.Write(w, r)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	store, err := s.stateStore(r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "session unavailable", err)
		return
	}

	identity, err := s.flow.RetrieveUser(r.Context(), store, oauth.CallbackFromRequest(r))
	if err != nil {
		s.fail(w, callbackStatus(err), "authorization failed", err)
		return
	}

	if s.opts.OnIdentity != nil {
		if err := s.opts.OnIdentity(r.Context(), identity); err != nil {
			s.fail(w, http.StatusInternalServerError, "failed to handle identity", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, identity.JSON())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "igauth",
	})
}

// callbackStatus maps a RetrieveUser error to a response status.
func callbackStatus(err error) int {
	switch {
	case errors.Is(err, igerrors.ErrInvalidState),
		errors.Is(err, oauth.ErrMissingCode),
		errors.Is(err, oauth.ErrAuthorizationDenied):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var apiErr *igerrors.Error
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	fields := map[string]interface{}{
		"status": status,
		"error":  err.Error(),
	}
	if status >= 500 {
		s.log.ErrorWithFields(msg, fields)
	} else {
		s.log.WarnWithFields(msg, fields)
	}
	writeJSON(w, status, map[string]string{
		"error":   msg,
		"details": err.Error(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.LogRequest(s.log, r.Method, r.URL.String(), ww.Status(), time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
