package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 120,
		Window:      time.Minute,
		KeyPrefix:   "ratelimit",
	}
}

// RateLimit is a fixed-window limiter keyed by client IP. It fails open when
// Redis is unavailable so scans are never rejected for cache outages.
func RateLimit(rdb redis.Cmdable, config RateLimitConfig, logger *zap.Logger) fiber.Handler {
	if config.MaxRequests <= 0 {
		config.MaxRequests = DefaultRateLimitConfig().MaxRequests
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "ratelimit"
	}

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		window := time.Now().Unix() / int64(config.Window.Seconds())
		key := config.KeyPrefix + ":" + c.IP() + ":" + strconv.FormatInt(window, 10)

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, config.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("rate limit redis error", zap.Error(err))
			return c.Next()
		}
		count := incr.Val()

		remaining := config.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		resetAt := (window + 1) * int64(config.Window.Seconds())
		c.Set("X-RateLimit-Limit", strconv.Itoa(config.MaxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if count > int64(config.MaxRequests) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}

		return c.Next()
	}
}
