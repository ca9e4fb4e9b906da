package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applot "github.com/inmobiliaria/backend/internal/application/lot"
	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/infrastructure/config"
)

// RedisAvailabilityCache caches lot availability lookups in Redis. Entries
// expire on their own; status changes invalidate them eagerly through the
// event bus.
type RedisAvailabilityCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// NewRedisAvailabilityCache creates a cache with its own Redis client
func NewRedisAvailabilityCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisAvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAvailabilityCache{
		client:     client,
		ownsClient: true,
		ttl:        ttl,
		logger:     logger,
	}, nil
}

// NewRedisAvailabilityCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisAvailabilityCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func availabilityKey(lotID uuid.UUID) string {
	return fmt.Sprintf("lot:availability:%s", lotID)
}

// Get retrieves a cached availability. The second return value reports
// whether the entry was present.
func (c *RedisAvailabilityCache) Get(ctx context.Context, lotID uuid.UUID) (lot.Availability, bool, error) {
	value, err := c.client.Get(ctx, availabilityKey(lotID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get availability from cache: %w", err)
	}

	availability := lot.Availability(value)
	if !availability.IsValid() {
		// Corrupted entry, drop it and report a miss
		_ = c.client.Del(ctx, availabilityKey(lotID))
		c.logger.Warn("dropped corrupted availability cache entry",
			zap.String("lot_id", lotID.String()),
			zap.String("value", value),
		)
		return "", false, nil
	}
	return availability, true, nil
}

// Set stores an availability with the configured TTL
func (c *RedisAvailabilityCache) Set(ctx context.Context, lotID uuid.UUID, availability lot.Availability) error {
	if err := c.client.Set(ctx, availabilityKey(lotID), availability.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in cache: %w", err)
	}
	return nil
}

// Invalidate removes the cached availability of a lot
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, lotID uuid.UUID) error {
	if err := c.client.Del(ctx, availabilityKey(lotID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability in cache: %w", err)
	}
	return nil
}

// Close releases the Redis client when the cache owns it
func (c *RedisAvailabilityCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisAvailabilityCache implements AvailabilityCache
var _ applot.AvailabilityCache = (*RedisAvailabilityCache)(nil)
