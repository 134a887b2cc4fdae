package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Varun5711/expense-tracker/internal/logger"
	"github.com/Varun5711/expense-tracker/internal/respond"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window limiter keyed by client IP. Each request is a
// member of a sorted set scored by its arrival time.
type RateLimiter struct {
	redis     *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
	clientIP  *ClientIP
	log       *logger.Logger
}

// NewRateLimiter keys on the peer address unless clientIP trusts the proxy in
// front of the service.
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, clientIP *ClientIP, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		limit:     limit,
		window:    window,
		keyPrefix: "ratelimit:auth:",
		clientIP:  clientIP,
		log:       log,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetTime := rl.allowRequest(r.Context(), rl.key(r))

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			respond.JSON(w, http.StatusTooManyRequests, respond.ErrorResponse{
				Error:      "TooManyRequests",
				Message:    "Rate limit exceeded",
				StatusCode: http.StatusTooManyRequests,
				Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
				Path:       r.URL.Path,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowRequest fails open: if Redis is unreachable the request goes through.
func (rl *RateLimiter) allowRequest(ctx context.Context, key string) (bool, int, time.Time) {
	now := time.Now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	zcard := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	pipe.Expire(ctx, key, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		rl.log.Warn("Rate limiter unavailable, allowing request: %v", err)
		return true, rl.limit, now.Add(rl.window)
	}

	count := int(zcard.Val())
	if count >= rl.limit {
		resetTime := now.Add(rl.window)
		oldest, err := rl.redis.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			resetTime = time.Unix(0, int64(oldest[0].Score)).Add(rl.window)
		}
		return false, 0, resetTime
	}

	remaining := rl.limit - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return true, remaining, now.Add(rl.window)
}

func (rl *RateLimiter) key(r *http.Request) string {
	return rl.keyPrefix + rl.clientIP.Resolve(r)
}
