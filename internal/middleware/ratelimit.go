package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitWindow is the fixed window over which per-IP submissions count.
const RateLimitWindow = time.Hour

// RedisCounter is the subset of the Redis client used by the rate limiter.
// *redis.Client satisfies it; tests substitute a stub.
type RedisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit applies a fixed-window per-IP request limit backed by Redis.
// Each client IP gets `limit` requests per `window`; the counter key expires
// at the end of the window. Redis errors fail open so an unreachable Redis
// does not take the API down.
func RateLimit(counter RedisCounter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("ratelimit:%s:%d", clientIP(r), time.Now().Unix()/int64(window.Seconds()))

			count, err := counter.Incr(r.Context(), key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				counter.Expire(r.Context(), key, window)
			}
			if count > int64(limit) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
