package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps sessions in Redis as JSON values so in-progress
// flows survive a bot restart. A zero TTL means sessions never
// expire on their own.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func (r *RedisStore) Get(userID int64) (*Session, error) {
	ctx := context.Background()
	data, err := r.Client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session for user %d: %w", userID, err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session for user %d: %w", userID, err)
	}
	return &s, nil
}

func (r *RedisStore) Put(userID int64, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session for user %d: %w", userID, err)
	}
	ctx := context.Background()
	if err := r.Client.Set(ctx, sessionKey(userID), data, r.TTL).Err(); err != nil {
		return fmt.Errorf("failed to write session for user %d: %w", userID, err)
	}
	return nil
}

func (r *RedisStore) Delete(userID int64) error {
	ctx := context.Background()
	if err := r.Client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session for user %d: %w", userID, err)
	}
	return nil
}
