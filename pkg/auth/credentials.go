package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/oauth2"

	"igauth/pkg/logger"
	"igauth/pkg/oauth"
)

// TokenRecord is an access token obtained through the authorization flow,
// persisted so later commands can call the API without re-authorizing.
type TokenRecord struct {
	Username     string    `json:"username"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at"`
}

// RecordFromIdentity builds a TokenRecord from a completed authorization.
func RecordFromIdentity(id *oauth.Identity, scopes []string, now time.Time) (*TokenRecord, error) {
	if id == nil || id.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}

	rec := &TokenRecord{
		UserID:      id.ID,
		AccessToken: id.AccessToken,
		Scopes:      append([]string(nil), scopes...),
		ObtainedAt:  now,
	}
	if id.Username != nil {
		rec.Username = *id.Username
	}
	if id.RefreshToken != nil {
		rec.RefreshToken = *id.RefreshToken
	}
	if id.ExpiresIn != nil {
		rec.ExpiresIn = *id.ExpiresIn
	}
	return rec, nil
}

// Key is the name the record is stored under: the username, or the user ID
// when the provider returned no username.
func (r *TokenRecord) Key() string {
	if r.Username != "" {
		return r.Username
	}
	return r.UserID
}

// ExpiresAt returns when the token expires, or the zero time if the provider
// did not say.
func (r *TokenRecord) ExpiresAt() time.Time {
	if r.ExpiresIn <= 0 {
		return time.Time{}
	}
	return r.ObtainedAt.Add(time.Duration(r.ExpiresIn) * time.Second)
}

// Expired reports whether the token is known to be expired at now.
func (r *TokenRecord) Expired(now time.Time) bool {
	exp := r.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// OAuth2Token converts the record for use with golang.org/x/oauth2.
func (r *TokenRecord) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: r.RefreshToken,
		Expiry:       r.ExpiresAt(),
	}
}

// TokenStore is the interface for storing and retrieving token records
type TokenStore interface {
	// Save stores rec under rec.Key(), replacing any previous record
	Save(rec *TokenRecord) error

	// Load gets the record stored under key
	Load(key string) (*TokenRecord, error)

	// List returns all stored records
	List() ([]*TokenRecord, error)

	// Delete removes the record stored under key
	Delete(key string) error

	// Exists checks if a record is stored under key
	Exists(key string) bool
}

// Manager handles token storage with fallback mechanisms
type Manager struct {
	stores []TokenStore
	log    logger.Logger
}

// NewManager creates a manager backed by the system keyring when available,
// an encrypted file in the config directory, and the environment.
func NewManager(log logger.Logger) (*Manager, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return NewManagerInDir(configDir, log)
}

// NewManagerInDir is NewManager with an explicit directory for the encrypted
// token file and its passphrase.
func NewManagerInDir(dir string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	var stores []TokenStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	} else {
		log.WithError(err).Debug("system keyring unavailable")
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(dir, "tokens.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores, log: log}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order.
func NewManagerWithStores(log logger.Logger, stores ...TokenStore) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{stores: stores, log: log}
}

// Save stores rec in the first store that accepts it.
func (m *Manager) Save(rec *TokenRecord) error {
	if rec == nil || rec.Key() == "" {
		return errors.New("username or user ID is required")
	}
	if rec.AccessToken == "" {
		return errors.New("access token is required")
	}
	if rec.ObtainedAt.IsZero() {
		rec.ObtainedAt = time.Now()
	}

	var lastErr error
	for _, store := range m.stores {
		err := store.Save(rec)
		if err == nil {
			m.log.InfoWithFields("access token saved", map[string]interface{}{
				"key":   rec.Key(),
				"token": logger.Redact(rec.AccessToken),
				"store": fmt.Sprintf("%T", store),
			})
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to save token: %w", lastErr)
	}
	return errors.New("no available token stores")
}

// Load gets the record from the first store that has it.
func (m *Manager) Load(key string) (*TokenRecord, error) {
	for _, store := range m.stores {
		if rec, err := store.Load(key); err == nil && rec != nil {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, key)
}

// LoadDefault returns the environment token if set, else the most recently
// obtained stored token.
func (m *Manager) LoadDefault() (*TokenRecord, error) {
	for _, store := range m.stores {
		if envStore, ok := store.(*EnvironmentStore); ok {
			if rec, err := envStore.Load(""); err == nil {
				return rec, nil
			}
		}
	}

	records, err := m.List()
	if err == nil && len(records) > 0 {
		return records[0], nil
	}

	return nil, ErrCredentialsNotFound
}

// List returns the records of all stores, newest first. When several stores
// hold the same key the most recent record wins.
func (m *Manager) List() ([]*TokenRecord, error) {
	byKey := make(map[string]*TokenRecord)

	for _, store := range m.stores {
		records, err := store.List()
		if err != nil {
			m.log.WithError(err).Debug("token store list failed")
			continue
		}
		for _, rec := range records {
			if existing, ok := byKey[rec.Key()]; !ok || rec.ObtainedAt.After(existing.ObtainedAt) {
				byKey[rec.Key()] = rec
			}
		}
	}

	result := make([]*TokenRecord, 0, len(byKey))
	for _, rec := range byKey {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ObtainedAt.Equal(result[j].ObtainedAt) {
			return result[i].Key() < result[j].Key()
		}
		return result[i].ObtainedAt.After(result[j].ObtainedAt)
	})

	return result, nil
}

// Delete removes the record from all stores
func (m *Manager) Delete(key string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(key); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if deleted {
		m.log.WithField("key", key).Info("access token deleted")
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete token: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, key)
}

// DeleteAll removes all stored records
func (m *Manager) DeleteAll() error {
	records, err := m.List()
	if err != nil {
		return err
	}

	for _, rec := range records {
		_ = m.Delete(rec.Key())
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igauth")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igauth")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igauth")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igauth")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeRecord returns a copy of rec with the tokens masked.
func SanitizeRecord(rec *TokenRecord) *TokenRecord {
	if rec == nil {
		return nil
	}

	out := *rec
	out.AccessToken = logger.Redact(rec.AccessToken)
	if rec.RefreshToken != "" {
		out.RefreshToken = logger.Redact(rec.RefreshToken)
	}
	out.Scopes = append([]string(nil), rec.Scopes...)
	return &out
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("token not found")
	ErrInvalidCredentials  = errors.New("invalid token record")
	ErrStoreUnavailable    = errors.New("token store unavailable")
)
