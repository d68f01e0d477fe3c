package middleware

import (
    "fmt"
    "math"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/global-DevLabs/zet-asociatie-sub002/internal/config"
)

// NewTokenBucket returns a distributed token-bucket limiter backed by Redis.
// It is applied to the login endpoint to slow down credential stuffing; the
// bucket key combines client IP and route so unrelated clients never share a
// bucket.  When the limiter is disabled or Redis is unavailable the
// middleware is a pass-through, because losing rate limiting must not take
// authentication down with it.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    // The whole refill-and-take step runs as one Lua script so concurrent
    // requests against the same bucket cannot interleave between the read
    // and the write.
    limiterScript := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 and refill_tokens > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            local until_next = interval_ms - (now_ms - last_refill)
            if until_next < 0 then until_next = 0 end
            retry_after_ms = until_next
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)
        return {allowed, retry_after_ms}
    `)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.RealIP(), c.Path())
            now := time.Now().UnixMilli()
            res, err := limiterScript.Run(c.Request().Context(), rdb,
                []string{key},
                now,
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int(cfg.TTL.Seconds()),
            ).Int64Slice()
            if err != nil || len(res) != 2 {
                // Redis hiccup: let the request through rather than failing it.
                return next(c)
            }
            if res[0] != 1 {
                retryAfter := int(math.Ceil(float64(res[1]) / 1000.0))
                if retryAfter < 1 {
                    retryAfter = 1
                }
                c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
            }
            return next(c)
        }
    }
}
