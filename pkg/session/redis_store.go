package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store backed by Redis. It is the analogue of
// persistent storage: survives restarts and is probed after the in-memory
// store.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. The key should be scoped to
// the installation (e.g. "storefront:session:<device>"). A zero ttl stores
// sessions without expiration; the token expiry still applies on read.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client is required")
	}
	if key == "" {
		key = "storefront:session"
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context) (*Session, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if !s.IsValid() {
		// Expired payloads are cleaned up eagerly so the next probe is cheap.
		_ = r.client.Del(ctx, r.key).Err()
		return nil, ErrSessionExpired
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, s *Session) error {
	if s == nil || s.Token == nil {
		return ErrInvalidSession
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}
	if err := r.client.Set(ctx, r.key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
