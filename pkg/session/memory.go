package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	puts   int
	pulls  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.puts++
	return nil
}

func (m *MemoryStore) Pull(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pulls++
	value, ok := m.values[key]
	delete(m.values, key)
	return value, ok, nil
}

// Peek returns the value under key without removing it.
func (m *MemoryStore) Peek(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	return value, ok
}

// PutCount returns how many times Put has been called.
func (m *MemoryStore) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// PullCount returns how many times Pull has been called.
func (m *MemoryStore) PullCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulls
}

// Len returns the number of stored values.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
