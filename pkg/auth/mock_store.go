package auth

import (
	"sync"
)

// MockStore implements TokenStore in memory for tests
type MockStore struct {
	records map[string]*TokenRecord
	mu      sync.RWMutex

	// Error injection for testing
	SaveError   error
	LoadError   error
	ListError   error
	DeleteError error
}

// NewMockStore creates a new mock token store
func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string]*TokenRecord),
	}
}

// Save stores a copy of rec
func (m *MockStore) Save(rec *TokenRecord) error {
	if m.SaveError != nil {
		return m.SaveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec == nil || rec.Key() == "" {
		return ErrInvalidCredentials
	}

	cp := *rec
	m.records[rec.Key()] = &cp

	return nil
}

// Load returns a copy of the record stored under key
func (m *MockStore) Load(key string) (*TokenRecord, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if key == "" {
		return nil, ErrInvalidCredentials
	}

	rec, exists := m.records[key]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	cp := *rec
	return &cp, nil
}

// List returns copies of all records
func (m *MockStore) List() ([]*TokenRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*TokenRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		records = append(records, &cp)
	}

	return records, nil
}

// Delete removes the record stored under key
func (m *MockStore) Delete(key string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if key == "" {
		return ErrInvalidCredentials
	}

	if _, exists := m.records[key]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.records, key)
	return nil
}

// Exists checks if a record is stored under key
func (m *MockStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.records[key]
	return exists
}

// Count returns the number of stored records
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}

// NewMockManager creates a Manager over a single MockStore
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	return NewManagerWithStores(nil, mockStore), mockStore
}
