package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Cache decorates a Provider with a Redis cache keyed by rounded coordinates.
type Cache struct {
	next   Provider
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache wraps a provider with a Redis cache.
func NewCache(next Provider, client rueidis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("weather_cache"),
	}
}

// CacheKey returns the Redis key for a coordinate.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather:%.2f:%.2f", lat, lon)
}

// Weather returns a cached summary or fetches and stores a fresh one.
// Redis failures are logged and bypassed.
func (c *Cache) Weather(ctx context.Context, lat, lon float64) (string, error) {
	key := CacheKey(lat, lon)

	cached, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
	switch {
	case err == nil:
		c.logger.Debug("Weather cache hit", zap.String("key", key))
		return cached, nil
	case !rueidis.IsRedisNil(err):
		c.logger.Warn("Failed to read weather cache", zap.String("key", key), zap.Error(err))
	}

	summary, err := c.next.Weather(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	cmd := c.client.B().Set().Key(key).Value(summary).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Warn("Failed to write weather cache", zap.String("key", key), zap.Error(err))
	}

	return summary, nil
}
