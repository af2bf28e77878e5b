package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisTestURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("IGAUTH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("IGAUTH_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisStorePullOnce(t *testing.T) {
	ctx := context.Background()
	client, err := OpenRedis(ctx, redisTestURL(t))
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, "sess-"+time.Now().Format("150405.000000"),
		WithKeyPrefix("igauth:test:"),
		WithTTL(time.Minute),
	)

	require.NoError(t, store.Put(ctx, "state", "nonce"))

	value, ok, err := store.Pull(ctx, "state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nonce", value)

	_, ok, err = store.Pull(ctx, "state")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreKeyLayout(t *testing.T) {
	store := NewRedisStore(nil, "abc", WithKeyPrefix("p:"))
	assert.Equal(t, "p:abc:state", store.key("state"))
	assert.Equal(t, defaultRedisTTL, store.opts.ttl)

	store = NewRedisStore(nil, "abc", WithTTL(-time.Second))
	assert.Equal(t, defaultRedisTTL, store.opts.ttl)
	assert.Equal(t, defaultRedisPrefix+"abc:state", store.key("state"))
}

func TestOpenRedisInvalidURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
