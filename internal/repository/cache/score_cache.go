package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/logger"
)

const keyPrefix = "jm:score:"

// ScoreCache keeps engine responses in memory (L1) and, when a client is
// given, in Redis (L2). L2 survives restarts and is shared across replicas.
type ScoreCache struct {
	l1         sync.Map // key -> *entry
	size       atomic.Int64
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int64

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// NewScoreCache returns a cache. rdb may be nil.
func NewScoreCache(rdb *redis.Client, ttl time.Duration, maxEntries int) *ScoreCache {
	return &ScoreCache{rdb: rdb, ttl: ttl, maxEntries: int64(maxEntries)}
}

// Key derives a deterministic cache key from the engine fingerprint and the
// request body.
func Key(fingerprint string, req domain.MatchJobRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(body)
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16]), nil
}

func (c *ScoreCache) Get(ctx context.Context, key string) ([]domain.SimilarityResult, bool) {
	if val, ok := c.l1.Load(key); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) {
			var out []domain.SimilarityResult
			if json.Unmarshal(e.data, &out) == nil {
				c.hits.Add(1)
				return out, true
			}
		}
		if _, loaded := c.l1.LoadAndDelete(key); loaded {
			c.size.Add(-1)
		}
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var out []domain.SimilarityResult
			if json.Unmarshal(data, &out) == nil {
				c.hits.Add(1)
				c.store(key, data)
				return out, true
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Debug("score cache: L2 get failed", "error", err)
		}
	}

	c.misses.Add(1)
	return nil, false
}

func (c *ScoreCache) Set(ctx context.Context, key string, results []domain.SimilarityResult) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	c.store(key, data)

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Log.Debug("score cache: L2 set failed", "error", err)
		}
	}
}

// Stats returns hit and miss counters
func (c *ScoreCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ScoreCache) store(key string, data []byte) {
	if c.maxEntries > 0 && c.size.Load() >= c.maxEntries {
		c.evict()
	}
	if _, loaded := c.l1.Swap(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)}); !loaded {
		c.size.Add(1)
	}
}

// evict drops expired entries, then the entry closest to expiry until the
// cache is below its limit.
func (c *ScoreCache) evict() {
	now := time.Now()
	c.l1.Range(func(k, v any) bool {
		if now.After(v.(*entry).expiresAt) {
			if _, loaded := c.l1.LoadAndDelete(k); loaded {
				c.size.Add(-1)
			}
		}
		return true
	})

	for c.size.Load() >= c.maxEntries {
		var oldestKey any
		var oldestAt time.Time
		c.l1.Range(func(k, v any) bool {
			e := v.(*entry)
			if oldestKey == nil || e.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		if _, loaded := c.l1.LoadAndDelete(oldestKey); loaded {
			c.size.Add(-1)
		}
	}
}
