package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "igauth:session:"
	defaultRedisTTL    = 10 * time.Minute
)

// RedisOption configures a RedisStore
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
	ttl    time.Duration
}

// WithKeyPrefix sets the prefix prepended to every Redis key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithTTL sets how long a stored value survives without being pulled.
func WithTTL(ttl time.Duration) RedisOption {
	return func(o *redisOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// RedisStore is a Store backed by Redis. Keys have the form
// {prefix}{sessionID}:{key}.
type RedisStore struct {
	client    redis.UniversalClient
	sessionID string
	opts      redisOptions
}

// NewRedisStore creates a store for one session ID on the given client.
func NewRedisStore(client redis.UniversalClient, sessionID string, opts ...RedisOption) *RedisStore {
	o := redisOptions{prefix: defaultRedisPrefix, ttl: defaultRedisTTL}
	for _, opt := range opts {
		opt(&o)
	}

	return &RedisStore{
		client:    client,
		sessionID: sessionID,
		opts:      o,
	}
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.opts.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Pull uses GETDEL so that concurrent callbacks cannot both observe the value.
func (s *RedisStore) Pull(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.GetDel(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session: redis getdel: %w", err)
	}
	return value, true, nil
}

func (s *RedisStore) key(key string) string {
	return s.opts.prefix + s.sessionID + ":" + key
}

// OpenRedis parses a redis:// URL, connects, and pings the server.
func OpenRedis(ctx context.Context, url string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return client, nil
}
