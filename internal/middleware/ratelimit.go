package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

// RateLimiter caps catalog proxy calls per client IP with a fixed window
// counter in Redis. Counters live under "ratelimit:<scope>:<ip>".
type RateLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, scope string, limit, windowSec int) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		prefix: "ratelimit:" + scope + ":",
		limit:  int64(limit),
		window: time.Duration(windowSec) * time.Second,
	}
}

// hit counts one request for key and returns the count so far and the time
// left in the current window. A counter without an expiry gets one, so a
// failed EXPIRE cannot pin a client to 429.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	if left < 0 {
		if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
			slog.Warn("failed to set rate limit window", "key", key, "error", err)
		}
		left = rl.window
	}
	return incr.Val(), left, nil
}

// Handler returns the fiber middleware. Requests pass through untouched
// when Redis cannot be reached.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		count, left, err := rl.hit(c.Context(), rl.prefix+c.IP())
		if err != nil {
			slog.Debug("rate limiter unavailable", "error", err)
			return c.Next()
		}

		reset := int(left.Seconds())
		c.Set("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, rl.limit-count), 10))
		c.Set("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > rl.limit {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(reset))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": reset,
			})
		}
		return c.Next()
	}
}
