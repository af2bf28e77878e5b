package session

import (
	"context"
	"fmt"
	"net/http"

	chisession "gitea.com/go-chi/session"
)

// rawStore is the subset of the go-chi/session store used here.
type rawStore interface {
	Set(key, value interface{}) error
	Get(key interface{}) interface{}
	Delete(key interface{}) error
}

// ChiStore adapts a go-chi/session store to Store.
type ChiStore struct {
	raw rawStore
}

// NewChiStore wraps a go-chi/session store.
func NewChiStore(raw rawStore) *ChiStore {
	return &ChiStore{raw: raw}
}

// FromRequest returns the store attached to r by the go-chi/session
// middleware.
func FromRequest(r *http.Request) (*ChiStore, error) {
	raw := chisession.GetSession(r)
	if raw == nil {
		return nil, ErrNoSession
	}
	return NewChiStore(raw), nil
}

func (c *ChiStore) Put(_ context.Context, key, value string) error {
	if err := c.raw.Set(key, value); err != nil {
		return fmt.Errorf("session: set %q: %w", key, err)
	}
	return nil
}

// Pull deletes the key even when the stored value is not a string.
func (c *ChiStore) Pull(_ context.Context, key string) (string, bool, error) {
	stored := c.raw.Get(key)
	if err := c.raw.Delete(key); err != nil {
		return "", false, fmt.Errorf("session: delete %q: %w", key, err)
	}
	if stored == nil {
		return "", false, nil
	}
	value, ok := stored.(string)
	return value, ok, nil
}
