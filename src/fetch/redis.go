package fetch

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds connection settings for the Redis-backed store.
type RedisConfig struct {
	Addr     string // Redis address, default "localhost:6379"
	Password string // Redis password, default ""
	DB       int    // Redis database number, default 0
	Prefix   string // Key prefix, default "quizparty:fetch:"
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "quizparty:fetch:",
	}
}

// RedisConfigFromEnv loads Redis configuration from environment variables.
// Falls back to defaults for any missing values.
func RedisConfigFromEnv() *RedisConfig {
	cfg := DefaultRedisConfig()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.DB = db
		}
	}
	if prefix := os.Getenv("REDIS_FETCH_PREFIX"); prefix != "" {
		cfg.Prefix = prefix
	}
	return cfg
}

// RedisStore is a Store backed by Redis, for sharing fetched snapshots
// between processes. Values are JSON-encoded on Set and come back from Get
// as json.RawMessage; expiry is delegated to the server via SET EX.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store from the given config.
func NewRedisStore(cfg *RedisConfig, logger zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		logger: logger.With().Str("component", "redis-store").Logger(),
	}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get returns the JSON-encoded value under key, if present and unexpired.
func (s *RedisStore) Get(ctx context.Context, key string) (any, bool) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	return json.RawMessage(data), true
}

// Set stores val under key with the given TTL. Unencodable values are
// dropped with a log entry; the cache is best effort.
func (s *RedisStore) Set(ctx context.Context, key string, val any, ttl time.Duration) {
	data, err := json.Marshal(val)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("value not encodable, skipping cache")
		return
	}
	if err := s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Delete removes the entry under key.
func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("redis del failed")
	}
}

// Clear removes every entry under this store's prefix.
func (s *RedisStore) Clear(ctx context.Context) {
	keys, err := s.client.Keys(ctx, s.prefix+"*").Result()
	if err != nil {
		s.logger.Debug().Err(err).Msg("redis keys failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("redis del failed")
	}
}
