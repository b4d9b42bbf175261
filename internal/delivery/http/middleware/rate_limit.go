package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"go-jobmatch-backend/internal/delivery/http/response"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/audit"
	"go-jobmatch-backend/pkg/logger"
	"go-jobmatch-backend/pkg/redis"
)

// RateLimitConfig describes one fixed-window limit
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests while Redis errors instead of counting in memory
	FailClosed bool
}

// DefaultRateLimitConfig returns the global per-IP limit
func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// MatchRateLimitConfig limits scoring runs per authenticated user, falling
// back to the client IP.
func MatchRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:match:",
		KeyFunc:   userOrIP,
	}
}

// UploadRateLimitConfig allows 10 CV uploads per user and window
func UploadRateLimitConfig(window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     10,
		Window:    window,
		KeyPrefix: "rl:upload:",
		KeyFunc:   userOrIP,
	}
}

func userOrIP(c *gin.Context) string {
	if id := c.GetString(string(domain.KeyUserID)); id != "" {
		return "u:" + id
	}
	return c.ClientIP()
}

// window is the state of one key after a hit
type window struct {
	count   int
	resetAt time.Time
}

// INCR with the TTL set on the first hit. Returns {count, ttl}.
var incrScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

func hitRedis(ctx context.Context, client *goredis.Client, key string, ttl time.Duration) (window, error) {
	res, err := incrScript.Run(ctx, client, []string{key}, int(ttl.Seconds())).Int64Slice()
	if err != nil {
		return window{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) < 2 {
		return window{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	return window{count: int(res[0]), resetAt: time.Now().Add(time.Duration(res[1]) * time.Second)}, nil
}

// memoryCounter is the per-process fallback when Redis is not configured
type memoryCounter struct {
	mu      sync.Mutex
	entries map[string]*window
	sweepAt time.Time
}

var fallback = &memoryCounter{entries: make(map[string]*window)}

func (m *memoryCounter) hit(key string, ttl time.Duration, now time.Time) window {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.After(m.sweepAt) {
		for k, w := range m.entries {
			if now.After(w.resetAt) {
				delete(m.entries, k)
			}
		}
		m.sweepAt = now.Add(5 * time.Minute)
	}

	w, ok := m.entries[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(ttl)}
		m.entries[key] = w
	}
	w.count++
	return *w
}

// RateLimitMiddleware counts requests in Redis when available and in process
// memory otherwise.
func RateLimitMiddleware(config RateLimitConfig, auditLog *audit.Logger) gin.HandlerFunc {
	if auditLog == nil {
		auditLog = audit.Nop()
	}

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		var w window
		if client := redis.Client(); client != nil {
			var err error
			if w, err = hitRedis(c.Request.Context(), client, key, config.Window); err != nil {
				logger.Log.Warn("rate limit store error", "error", err, "ip", c.ClientIP())
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				w = fallback.hit(key, config.Window, time.Now())
			}
		} else {
			w = fallback.hit(key, config.Window, time.Now())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(config.Limit-w.count, 0)))
		c.Header("X-RateLimit-Reset", w.resetAt.Format(time.RFC3339))

		if w.count > config.Limit {
			c.Header("Retry-After", strconv.Itoa(max(int(time.Until(w.resetAt).Seconds()), 1)))
			auditLog.RateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
