package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, identity domain.Identity) (string, error) {
	data, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("marshal identity failed: %w", err)
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set failed: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrSessionNotFound
	}

	data, err := s.client.GetEx(ctx, sessionKey(token), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Identity{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("redis getex failed: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal identity failed: %w", err)
	}
	return identity, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
