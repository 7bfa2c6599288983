package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"listingsvc/application/ports"
	pkgerrors "listingsvc/pkg/errors"
)

// RedisStore implements CacheStore on a shared Redis instance. Expiry is
// delegated to Redis itself (SET with EX); a key at or past its TTL is
// simply gone, so the absent-at-expiry rule is inherited from the engine.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig holds connection settings for the cache engine
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore creates a store backed by the given Redis instance
func NewRedisStore(cfg RedisConfig, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// NewRedisStoreWithClient wraps an existing client, mainly for tests
func NewRedisStoreWithClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Get retrieves a value. A missing key is (nil, false, nil); only an
// unreachable engine produces an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.NewCacheUnavailableError("get", err)
	}
	return value, true, nil
}

// Set stores a value with the given TTL
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return pkgerrors.NewCacheUnavailableError("set", err)
	}
	return nil
}

// Delete removes a key and reports whether it existed
func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, pkgerrors.NewCacheUnavailableError("delete", err)
	}
	return removed > 0, nil
}

// Stats reads the engine-wide counters from the INFO command. The hit and
// miss counts are cumulative since server startup and cover every key on
// the instance.
func (s *RedisStore) Stats(ctx context.Context) (ports.CacheStats, error) {
	info, err := s.client.Info(ctx, "stats", "memory", "clients").Result()
	if err != nil {
		return ports.CacheStats{}, pkgerrors.NewStatsUnavailableError(err)
	}
	return parseInfoStats(info), nil
}

// Ping verifies connectivity to the cache engine
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return pkgerrors.NewCacheUnavailableError("ping", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
