package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisSessionStore keeps sessions server-side in Redis under session:<id>,
// where id is a random UUID handed to the browser.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a new RedisSessionStore.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}

// Issue stores a new session for userID.
func (s *RedisSessionStore) Issue(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(sid), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sid, nil
}

// Resolve looks up the user id stored for sid.
func (s *RedisSessionStore) Resolve(ctx context.Context, sid string) (string, error) {
	if _, err := uuid.Parse(sid); err != nil {
		return "", fmt.Errorf("%w: malformed session id", ErrSessionInvalid)
	}

	userID, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionInvalid
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return userID, nil
}

// Revoke deletes the session.
func (s *RedisSessionStore) Revoke(ctx context.Context, sid string) error {
	if err := s.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ SessionStore = (*RedisSessionStore)(nil)
