package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "IGAUTH_"

// Config holds all configuration options for igauth
type Config struct {
	Instagram InstagramConfig `yaml:"instagram" json:"instagram" envPrefix:"INSTAGRAM_"`
	HTTP      HTTPConfig      `yaml:"http" json:"http" envPrefix:"HTTP_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Session   SessionConfig   `yaml:"session" json:"session" envPrefix:"SESSION_"`
	Server    ServerConfig    `yaml:"server" json:"server" envPrefix:"SERVER_"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging" envPrefix:"LOG_"`
}

// InstagramConfig holds the OAuth client registration and API location.
type InstagramConfig struct {
	ClientID     string            `yaml:"client_id" json:"client_id" env:"CLIENT_ID"`
	ClientSecret string            `yaml:"client_secret" json:"-" env:"CLIENT_SECRET"`
	RedirectURL  string            `yaml:"redirect_url" json:"redirect_url" env:"REDIRECT_URL"`
	Scopes       []string          `yaml:"scopes" json:"scopes" env:"SCOPES" envSeparator:","`
	BaseURL      string            `yaml:"base_url" json:"base_url" env:"BASE_URL"`
	APIVersion   string            `yaml:"api_version" json:"api_version" env:"API_VERSION"`
	Stateless    bool              `yaml:"stateless" json:"stateless" env:"STATELESS"`
	Parameters   map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty" env:"PARAMETERS"`
}

// HTTPConfig holds transport settings shared by the OAuth flow and the API client.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"TIMEOUT"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" env:"USER_AGENT"`
}

// RateLimitConfig holds client-side throttling configuration
type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled" json:"enabled" env:"ENABLED"`
	RequestsPerHour int  `yaml:"requests_per_hour" json:"requests_per_hour" env:"REQUESTS_PER_HOUR"`
}

// SessionConfig selects where the pending authorization state lives.
type SessionConfig struct {
	Backend    string        `yaml:"backend" json:"backend" env:"BACKEND"`
	RedisURL   string        `yaml:"redis_url" json:"redis_url" env:"REDIS_URL"`
	KeyPrefix  string        `yaml:"key_prefix" json:"key_prefix" env:"KEY_PREFIX"`
	TTL        time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`
	CookieName string        `yaml:"cookie_name" json:"cookie_name" env:"COOKIE_NAME"`
}

// ServerConfig holds the callback server settings
type ServerConfig struct {
	Addr          string `yaml:"addr" json:"addr" env:"ADDR"`
	SecureCookies bool   `yaml:"secure_cookies" json:"secure_cookies" env:"SECURE_COOKIES"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" env:"LEVEL"`
	File  string `yaml:"file" json:"file" env:"FILE"`
}

// Session backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			Scopes:     []string{"basic"},
			BaseURL:    "https://api.instagram.com",
			APIVersion: "v1",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "igauth/1.0",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			RequestsPerHour: 500,
		},
		Session: SessionConfig{
			Backend:    BackendMemory,
			KeyPrefix:  "igauth:session:",
			TTL:        10 * time.Minute,
			CookieName: "igauth_session",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv overrides fields from IGAUTH_* environment variables.
// Variables that are unset leave the current value untouched.
func (c *Config) LoadFromEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. An empty path searches
// the default locations; finding nothing there is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath is where `config init` writes and the last place searched.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "igauth", "config.yaml")
}

func findConfigFile() string {
	locations := []string{
		".igauth.yaml",
		".igauth.yml",
		DefaultPath(),
		filepath.Join(os.Getenv("HOME"), ".config", "igauth", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.ClientID == "" {
		errs = append(errs, errors.New("instagram client_id is required"))
	}
	if c.Instagram.ClientSecret == "" {
		errs = append(errs, errors.New("instagram client_secret is required"))
	}
	if c.Instagram.RedirectURL == "" {
		errs = append(errs, errors.New("instagram redirect_url is required"))
	} else if _, err := url.ParseRequestURI(c.Instagram.RedirectURL); err != nil {
		errs = append(errs, fmt.Errorf("instagram redirect_url is invalid: %w", err))
	}
	if c.Instagram.BaseURL == "" {
		errs = append(errs, errors.New("instagram base_url is required"))
	}
	if c.Instagram.APIVersion == "" {
		errs = append(errs, errors.New("instagram api_version is required"))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerHour <= 0 {
		errs = append(errs, errors.New("requests per hour must be positive"))
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("session redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend: %q", c.Session.Backend))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML, readable by the owner only.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags applies flag values that were explicitly set.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["client-id"].(string); ok && v != "" {
		c.Instagram.ClientID = v
	}
	if v, ok := flags["client-secret"].(string); ok && v != "" {
		c.Instagram.ClientSecret = v
	}
	if v, ok := flags["redirect-url"].(string); ok && v != "" {
		c.Instagram.RedirectURL = v
	}
	if v, ok := flags["scopes"].([]string); ok && len(v) > 0 {
		c.Instagram.Scopes = v
	}
	if v, ok := flags["stateless"].(bool); ok && v {
		c.Instagram.Stateless = true
	}
	if v, ok := flags["addr"].(string); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := flags["session-backend"].(string); ok && v != "" {
		c.Session.Backend = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources.
// Precedence: flags > environment > .env files > config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	cfg, err := LoadUnvalidated(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated is Load without the final Validate step.
func LoadUnvalidated(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables already present in the environment.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igauth.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	return cfg, nil
}
