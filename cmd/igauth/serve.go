package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"igauth/internal/server"
	"igauth/pkg/config"
	"igauth/pkg/logger"
	"igauth/pkg/oauth"
	"igauth/pkg/session"
)

var (
	serveAddr      string
	serveBackend   string
	serveStateless bool
	serveNoSave    bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local callback server",
	Long: `Serve /login, /callback and /health.

Visiting /login redirects to Instagram; Instagram redirects back to /callback,
which verifies the state, exchanges the code and responds with the identity
as JSON. The token is stored like 'igauth authorize' does unless --no-save is
given. The registered redirect URL must point at this server's /callback.`,
	Example: `  igauth serve --addr 127.0.0.1:8080
  igauth serve --session-backend redis`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address")
	serveCmd.Flags().StringVar(&serveBackend, "session-backend", "", "pending state backend (memory, redis)")
	serveCmd.Flags().BoolVar(&serveStateless, "stateless", false, "skip state generation and verification")
	serveCmd.Flags().BoolVar(&serveNoSave, "no-save", false, "do not store obtained tokens")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]interface{}{
		"addr":            serveAddr,
		"session-backend": serveBackend,
		"stateless":       serveStateless,
	})
	if err != nil {
		return err
	}

	flow, err := newFlow(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		CookieName:    cfg.Session.CookieName,
		SecureCookies: cfg.Server.SecureCookies,
		SessionTTL:    cfg.Session.TTL,
		KeyPrefix:     cfg.Session.KeyPrefix,
		Logger:        logger.GetLogger(),
	}

	if cfg.Session.Backend == config.BackendRedis {
		client, err := session.OpenRedis(ctx, cfg.Session.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Redis = client
	}

	if !serveNoSave {
		scopes := cfg.Instagram.Scopes
		opts.OnIdentity = func(_ context.Context, id *oauth.Identity) error {
			return saveIdentity(id, scopes)
		}
	}

	srv, err := server.New(flow, opts)
	if err != nil {
		return err
	}

	out.Info("Listening on", "http://"+cfg.Server.Addr)
	out.Info("Start authorization at", fmt.Sprintf("http://%s/login", cfg.Server.Addr))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
