package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Instagram.ClientID = "client"
	cfg.Instagram.ClientSecret = "secret"
	cfg.Instagram.RedirectURL = "http://localhost:8080/callback"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.instagram.com", cfg.Instagram.BaseURL)
	assert.Equal(t, "v1", cfg.Instagram.APIVersion)
	assert.Equal(t, []string{"basic"}, cfg.Instagram.Scopes)
	assert.False(t, cfg.Instagram.Stateless)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerHour)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGAUTH_INSTAGRAM_CLIENT_ID", "env-client")
	t.Setenv("IGAUTH_INSTAGRAM_SCOPES", "basic,likes,comments")
	t.Setenv("IGAUTH_INSTAGRAM_STATELESS", "true")
	t.Setenv("IGAUTH_INSTAGRAM_PARAMETERS", "hl:en,display:touch")
	t.Setenv("IGAUTH_HTTP_TIMEOUT", "5s")
	t.Setenv("IGAUTH_SESSION_BACKEND", "redis")
	t.Setenv("IGAUTH_SESSION_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("IGAUTH_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-client", cfg.Instagram.ClientID)
	assert.Equal(t, []string{"basic", "likes", "comments"}, cfg.Instagram.Scopes)
	assert.True(t, cfg.Instagram.Stateless)
	assert.Equal(t, map[string]string{"hl": "en", "display": "touch"}, cfg.Instagram.Parameters)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Session.RedisURL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// untouched by env
	assert.Equal(t, "https://api.instagram.com", cfg.Instagram.BaseURL)
}

func TestLoadFromEnvInvalidValue(t *testing.T) {
	t.Setenv("IGAUTH_HTTP_TIMEOUT", "soon")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
instagram:
  client_id: file-client
  client_secret: file-secret
  redirect_url: http://localhost:9000/cb
  scopes: [basic, public_content]
session:
  backend: memory
  ttl: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-client", cfg.Instagram.ClientID)
	assert.Equal(t, []string{"basic", "public_content"}, cfg.Instagram.Scopes)
	assert.Equal(t, 2*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "v1", cfg.Instagram.APIVersion)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("instagram: [unclosed"), 0600))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing client id", func(c *Config) { c.Instagram.ClientID = "" }, "client_id is required"},
		{"missing client secret", func(c *Config) { c.Instagram.ClientSecret = "" }, "client_secret is required"},
		{"missing redirect", func(c *Config) { c.Instagram.RedirectURL = "" }, "redirect_url is required"},
		{"relative redirect", func(c *Config) { c.Instagram.RedirectURL = "callback" }, "redirect_url is invalid"},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, "timeout must be positive"},
		{"rate limit without budget", func(c *Config) { c.RateLimit.RequestsPerHour = 0 }, "requests per hour"},
		{"rate limit disabled ignores budget", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RequestsPerHour = 0
		}, ""},
		{"redis without url", func(c *Config) { c.Session.Backend = BackendRedis }, "redis_url is required"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }, "unknown session backend"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	err := DefaultConfig().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
	assert.Contains(t, err.Error(), "client_secret")
	assert.Contains(t, err.Error(), "redirect_url")
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := validConfig()
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Instagram, loaded.Instagram)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := validConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"client-id": "flag-client",
		"scopes":    []string{"likes"},
		"stateless": true,
		"addr":      ":9999",
		"log-level": "",
	})

	assert.Equal(t, "flag-client", cfg.Instagram.ClientID)
	assert.Equal(t, []string{"likes"}, cfg.Instagram.Scopes)
	assert.True(t, cfg.Instagram.Stateless)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
instagram:
  client_id: file-client
  client_secret: file-secret
  redirect_url: http://localhost:9000/cb
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("IGAUTH_INSTAGRAM_CLIENT_SECRET", "env-secret")

	cfg, err := Load(path, map[string]interface{}{"redirect-url": "http://localhost:1234/cb"})
	require.NoError(t, err)

	assert.Equal(t, "file-client", cfg.Instagram.ClientID)
	assert.Equal(t, "env-secret", cfg.Instagram.ClientSecret)
	assert.Equal(t, "http://localhost:1234/cb", cfg.Instagram.RedirectURL)
}
