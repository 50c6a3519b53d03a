package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"legalai-assistant/internal/model"
)

const sessionKeyPrefix = "legalai:session:"

// RedisSessionStore keeps established sessions under a fixed key prefix,
// expiring them with the token's own lifetime when it has one.
type RedisSessionStore struct {
	client     *redisv9.Client
	defaultTTL time.Duration
}

func NewRedisSessionStore(client *redisv9.Client, defaultTTL time.Duration) *RedisSessionStore {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Hour
	}
	return &RedisSessionStore{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

func (s *RedisSessionStore) Put(ctx context.Context, session *model.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}

	ttl := s.defaultTTL
	if !session.ExpiresAt.IsZero() {
		if remaining := time.Until(session.ExpiresAt); remaining > 0 && remaining < ttl {
			ttl = remaining
		}
	}

	if err := s.client.Set(ctx, sessionKey(session.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*model.Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session failed: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, false, fmt.Errorf("unmarshal session failed: %w", err)
	}
	session.Token = token
	return &session, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
