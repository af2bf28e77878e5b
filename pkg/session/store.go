package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned when a request carries no session middleware store.
var ErrNoSession = errors.New("session: no session attached to request")

// Store holds string values for a single end-user session.
type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Pull returns the value stored under key and removes it.
	// ok is false when nothing was stored.
	Pull(ctx context.Context, key string) (value string, ok bool, err error)
}
