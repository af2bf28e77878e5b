package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "igauth"
	keyringPrefix  = "token_"
	// keyringIndex lists the stored keys, since the keyring cannot enumerate.
	keyringIndex = "index"
)

// KeyringStore implements TokenStore using the system keychain
type KeyringStore struct {
	service string
	mu      sync.Mutex
}

// NewKeyringStore creates a keyring store, failing if no keychain is reachable.
func NewKeyringStore() (*KeyringStore, error) {
	return newKeyringStore(keyringService)
}

func newKeyringStore(service string) (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(service, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(service, testKey)

	return &KeyringStore{service: service}, nil
}

// Save stores rec in the keychain
func (k *KeyringStore) Save(rec *TokenRecord) error {
	if rec == nil || rec.Key() == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(k.service, keyringPrefix+rec.Key(), string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	keys, err := k.index()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if key == rec.Key() {
			return nil
		}
	}
	return k.writeIndex(append(keys, rec.Key()))
}

// Load gets the record stored under key
func (k *KeyringStore) Load(key string) (*TokenRecord, error) {
	if key == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(k.service, keyringPrefix+key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var rec TokenRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}

	return &rec, nil
}

// List returns the records named in the index. Entries removed behind the
// store's back are skipped.
func (k *KeyringStore) List() ([]*TokenRecord, error) {
	k.mu.Lock()
	keys, err := k.index()
	k.mu.Unlock()
	if err != nil {
		return nil, err
	}

	records := make([]*TokenRecord, 0, len(keys))
	for _, key := range keys {
		rec, err := k.Load(key)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the record stored under key
func (k *KeyringStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidCredentials
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	err := keyring.Delete(k.service, keyringPrefix+key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	keys, err := k.index()
	if err != nil {
		return err
	}
	kept := keys[:0]
	for _, existing := range keys {
		if existing != key {
			kept = append(kept, existing)
		}
	}
	return k.writeIndex(kept)
}

// Exists checks if a record is stored under key
func (k *KeyringStore) Exists(key string) bool {
	if key == "" {
		return false
	}

	_, err := keyring.Get(k.service, keyringPrefix+key)
	return err == nil
}

func (k *KeyringStore) index() ([]string, error) {
	data, err := keyring.Get(k.service, keyringIndex)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	return keys, nil
}

func (k *KeyringStore) writeIndex(keys []string) error {
	if len(keys) == 0 {
		err := keyring.Delete(k.service, keyringIndex)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to clear keyring index: %w", err)
		}
		return nil
	}

	sort.Strings(keys)
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := keyring.Set(k.service, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to write keyring index: %w", err)
	}
	return nil
}
