package services_test

import (
	"context"
	"os"
	"testing"
	"time"

	"jurnal/internal/services"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when REDIS_TEST_ADDR is set, e.g. 127.0.0.1:6379.
func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	store := services.NewRedisSessionStore(rdb, time.Minute)

	sid, err := store.Issue(ctx, "alice")
	require.NoError(t, err)

	userID, err := store.Resolve(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	ttl, err := rdb.TTL(ctx, "session:"+sid).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Revoke(ctx, sid))
	_, err = store.Resolve(ctx, sid)
	assert.ErrorIs(t, err, services.ErrSessionInvalid)

	_, err = store.Resolve(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, services.ErrSessionInvalid)
}
