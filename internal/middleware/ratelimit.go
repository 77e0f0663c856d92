package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

const rateLimitMessage = "Too many requests, please try again later."

// clientIP returns the caller address without its port. RealIP has already
// replaced RemoteAddr when the request came through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware implements a fixed window limit per client IP in Redis,
// shared by every API instance
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIP(r)
			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				// On Redis error, allow request to proceed
				next.ServeHTTP(w, r)
				return
			}

			// Set expiry on first request
			if count == 1 {
				redisClient.Expire(ctx, key, config.Window)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))

			if count > int64(config.RequestsPerWindow) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))

				RespondError(w, http.StatusTooManyRequests, rateLimitMessage, "")
				return
			}

			remaining := config.RequestsPerWindow - int(count)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter is the in-process fallback used when no Redis is
// configured. Each client IP gets a token bucket refilled at
// RequestsPerWindow per Window. Idle visitors are swept at most once
// per Window.
type LocalRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	config    RateLimitConfig
	now       func() time.Time
}

// NewLocalRateLimiter creates a limiter for config
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		visitors: make(map[string]*visitor),
		config:   config,
		now:      time.Now,
	}
}

func (l *LocalRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.config.Window {
		l.sweep(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		every := l.config.Window / time.Duration(max(l.config.RequestsPerWindow, 1))
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), l.config.RequestsPerWindow)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops visitors idle for longer than a full refill. Callers hold mu.
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > 3*l.config.Window {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests beyond the bucket with 429
func (l *LocalRateLimiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			lim := l.limiter(ip)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.config.RequestsPerWindow))

			if !lim.AllowN(l.now(), 1) {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", ip),
					zap.Int("limit", l.config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(l.config.Window.Seconds()/float64(max(l.config.RequestsPerWindow, 1))))))
				RespondError(w, http.StatusTooManyRequests, rateLimitMessage, "")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.TokensAt(l.now()))))
			next.ServeHTTP(w, r)
		})
	}
}
