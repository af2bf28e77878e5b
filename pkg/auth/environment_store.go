package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore.
const (
	AccessTokenEnv = "IGAUTH_ACCESS_TOKEN"
	UsernameEnv    = "IGAUTH_USERNAME"
)

// EnvironmentStore implements TokenStore over IGAUTH_ACCESS_TOKEN.
// It is read-only and holds at most one record.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Save is not supported for environment variables
func (e *EnvironmentStore) Save(rec *TokenRecord) error {
	return ErrStoreUnavailable
}

// Load returns the environment token. An empty key matches it; otherwise key
// must equal IGAUTH_USERNAME, which defaults to "default".
func (e *EnvironmentStore) Load(key string) (*TokenRecord, error) {
	token := os.Getenv(AccessTokenEnv)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	username := os.Getenv(UsernameEnv)
	if username == "" {
		username = "default"
	}
	if key != "" && key != username {
		return nil, ErrCredentialsNotFound
	}

	return &TokenRecord{
		Username:    username,
		AccessToken: token,
		ObtainedAt:  time.Now(),
	}, nil
}

// List returns a single record if the environment token is set
func (e *EnvironmentStore) List() ([]*TokenRecord, error) {
	rec, err := e.Load("")
	if err != nil {
		return []*TokenRecord{}, nil
	}
	return []*TokenRecord{rec}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(key string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment token matches key
func (e *EnvironmentStore) Exists(key string) bool {
	_, err := e.Load(key)
	return err == nil
}
