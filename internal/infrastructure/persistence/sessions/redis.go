package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
)

const (
	sessionKeyPrefix = "ussd:session:"
	defaultTTL       = 24 * time.Hour
)

// RedisStore persists sessions in Redis so several gateway nodes can share
// conversation state. Keys expire after the configured TTL; the TTL is
// refreshed on every read so active conversations stay alive.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store over the given client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Store persists the session, overwriting any previous state and resetting
// the TTL.
func (r *RedisStore) Store(ctx context.Context, s *session.Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.SessionID, err)
	}
	if err := r.client.Set(ctx, r.key(s.SessionID), val, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", s.SessionID, err)
	}
	return nil
}

// Retrieve loads a session by id, refreshing the TTL. A miss is (nil, nil).
func (r *RedisStore) Retrieve(ctx context.Context, sessionID string) (*session.Session, error) {
	key := r.key(sessionID)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session %s: %w", sessionID, err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}

	// Keep active conversations alive; a failed refresh is not fatal.
	_ = r.client.Expire(ctx, key, r.ttl).Err()

	return &s, nil
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}
