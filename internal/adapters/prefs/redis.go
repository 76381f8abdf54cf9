package prefs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// RedisStore implements domain.PrefStore over Redis with JSON values.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore builds a Redis-backed preference store.
// Requires WithRedisClient.
func NewRedisStore(opts ...StoreOption) (*RedisStore, error) {
	config := &storeConfig{keyPrefix: "prefs:"}
	for _, opt := range opts {
		opt(config)
	}

	if config.redisClient == nil {
		return nil, ErrInvalidConfig
	}

	return &RedisStore{
		client: config.redisClient,
		ttl:    config.redisTTL,
		prefix: config.keyPrefix,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string, dst any) error {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return domain.ErrPrefNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dst)
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
