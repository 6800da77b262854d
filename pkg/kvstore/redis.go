package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps slots onto plain Redis keys.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
