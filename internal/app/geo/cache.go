package geo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "geo:"

// CachedLocator keeps resolved locations in Redis. Cache failures fall through
// to the wrapped locator.
type CachedLocator struct {
	next   Locator
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedLocator wraps next with a Redis cache.
func NewCachedLocator(next Locator, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLocator{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedLocator) Locate(ctx context.Context, ip string) (Location, error) {
	key := cacheKeyPrefix + ip

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var loc Location
		if jsonErr := json.Unmarshal(raw, &loc); jsonErr == nil {
			return loc, nil
		}
	} else if err != redis.Nil {
		c.logger.Debug("geo cache read failed", zap.Error(err))
	}

	loc, err := c.next.Locate(ctx, ip)
	if err != nil {
		return Location{}, err
	}

	if data, err := json.Marshal(loc); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("geo cache write failed", zap.Error(err))
		}
	}
	return loc, nil
}
