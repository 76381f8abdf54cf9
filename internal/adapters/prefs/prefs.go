// Package prefs implements the persisted preference store: key -> JSON
// value, with in-memory and Redis drivers.
package prefs

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

var (
	ErrInvalidConfig    = errors.New("invalid prefs configuration")
	ErrInvalidStoreType = errors.New("invalid prefs store type")
)

// StoreOption is a functional option for configuring a preference store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	redisTTL    time.Duration
	keyPrefix   string
}

// WithRedisClient sets the Redis client for the Redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for Redis keys. Zero means no expiry:
// preferences outlive sessions.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// WithKeyPrefix namespaces all keys, for shared Redis instances.
func WithKeyPrefix(prefix string) StoreOption {
	return func(c *storeConfig) {
		c.keyPrefix = prefix
	}
}
