package geo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 24 * time.Hour

// Resolver is anything that can turn a building name into a location.
type Resolver interface {
	Lookup(ctx context.Context, building string) (*Location, error)
}

// Cache is the subset of *redis.Client used for caching lookups.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedLookup keeps successful lookups in Redis. Misses and errors are not cached,
// and a broken cache only costs a remote call.
type CachedLookup struct {
	next   Resolver
	cache  Cache
	logger *zap.Logger
}

func NewCachedLookup(next Resolver, cache Cache, logger *zap.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, logger: logger}
}

func (c *CachedLookup) Lookup(ctx context.Context, building string) (*Location, error) {
	key := cacheKey(building)

	raw, err := c.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		var loc Location
		if jsonErr := json.Unmarshal([]byte(raw), &loc); jsonErr == nil {
			return &loc, nil
		}
		c.logger.Warn("Corrupted geocoder cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Geocoder cache read failed", zap.String("key", key), zap.Error(err))
	}

	loc, err := c.next.Lookup(ctx, building)
	if err != nil || loc == nil {
		return loc, err
	}

	payload, err := json.Marshal(loc)
	if err == nil {
		err = c.cache.Set(ctx, key, payload, cacheTTL).Err()
	}
	if err != nil {
		c.logger.Warn("Geocoder cache write failed", zap.String("key", key), zap.Error(err))
	}

	return loc, nil
}

func cacheKey(building string) string {
	return "geo:building:" + strings.ToLower(strings.TrimSpace(building))
}
