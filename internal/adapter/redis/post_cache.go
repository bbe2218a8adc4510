package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

const (
	layerMemory = "memory"
	layerRedis  = "redis"

	defaultLoadTimeout = 30 * time.Second
)

// PostCache is a read-through domain.PostSource: in-memory, then Redis, then
// the wrapped source. A nil Redis client gives a memory-only cache.
type PostCache struct {
	rdb         goredis.Cmdable
	source      domain.PostSource
	mem         *memoryCache
	redisTTL    time.Duration
	loadTimeout time.Duration
	clock       clockwork.Clock
	group       singleflight.Group
	metrics     *metrics.CacheMetrics
}

var _ domain.PostSource = (*PostCache)(nil)

type PostCacheOption func(*PostCache)

// WithClock replaces the wall clock used for in-memory expiry.
func WithClock(clock clockwork.Clock) PostCacheOption {
	return func(c *PostCache) { c.clock = clock }
}

// WithLoadTimeout bounds one shared upstream load. The load outlives the
// caller that started it, so it is not bound by that caller's deadline.
func WithLoadTimeout(d time.Duration) PostCacheOption {
	return func(c *PostCache) { c.loadTimeout = d }
}

func NewPostCache(rdb goredis.Cmdable, source domain.PostSource, memTTL, redisTTL time.Duration, m *metrics.CacheMetrics, opts ...PostCacheOption) *PostCache {
	c := &PostCache{
		rdb:         rdb,
		source:      source,
		redisTTL:    redisTTL,
		loadTimeout: defaultLoadTimeout,
		clock:       clockwork.NewRealClock(),
		metrics:     m,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mem = newMemoryCache(memTTL, c.clock)
	return c
}

// StartEvictionTimer runs a periodic goroutine that evicts expired in-memory entries.
// Returns a stop function that should be deferred.
func (c *PostCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.mem.evictExpired()
				if evicted > 0 {
					c.metrics.Evictions.Add(float64(evicted))
					slog.Debug("Evicted expired post cache entries", "count", evicted, "remaining", c.mem.size())
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

func (c *PostCache) FetchRecentPosts(ctx context.Context, q domain.PostQuery) ([]domain.RawPost, error) {
	key := CacheKey(q)

	// Layer 1: in-memory cache
	if posts, ok := c.mem.get(key); ok {
		c.metrics.Hits.WithLabelValues(layerMemory).Inc()
		return posts, nil
	}
	c.metrics.Misses.WithLabelValues(layerMemory).Inc()

	// Layer 2: Redis cache
	if posts, ok := c.getCached(ctx, key); ok {
		c.metrics.Hits.WithLabelValues(layerRedis).Inc()
		c.mem.set(key, posts)
		return posts, nil
	}
	if c.rdb != nil {
		c.metrics.Misses.WithLabelValues(layerRedis).Inc()
	}

	// Layer 3: upstream, one flight per key
	return c.loadShared(ctx, key, q)
}

// Refresh fetches the query from the source and rewrites both cache layers.
func (c *PostCache) Refresh(ctx context.Context, q domain.PostQuery) error {
	key := CacheKey(q)
	c.mem.invalidate(key)

	if _, err := c.loadShared(ctx, key, q); err != nil {
		c.metrics.Refreshes.WithLabelValues("error").Inc()
		return err
	}
	c.metrics.Refreshes.WithLabelValues("ok").Inc()
	return nil
}

// loadShared joins or starts the flight for key. Each caller stops waiting when
// its own context ends; the flight itself runs detached from any one caller.
func (c *PostCache) loadShared(ctx context.Context, key string, q domain.PostQuery) ([]domain.RawPost, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		return c.load(loadCtx, key, q)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.RawPost), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *PostCache) load(ctx context.Context, key string, q domain.PostQuery) ([]domain.RawPost, error) {
	posts, err := c.source.FetchRecentPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("post fetch failed: %w", err)
	}
	if posts == nil {
		posts = []domain.RawPost{}
	}

	c.mem.set(key, posts)
	c.writeCache(ctx, key, posts)
	return posts, nil
}

func (c *PostCache) writeCache(ctx context.Context, key string, posts []domain.RawPost) {
	if c.rdb == nil {
		return
	}

	encoded, err := json.Marshal(posts)
	if err != nil {
		slog.Warn("Failed to marshal posts for Redis cache", "key", key, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, key, encoded, c.redisTTL).Err(); err != nil {
		slog.Warn("Failed to populate Redis post cache", "key", key, "error", err)
	}
}

func (c *PostCache) getCached(ctx context.Context, key string) ([]domain.RawPost, bool) {
	if c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis post cache GET failed", "key", key, "error", err)
		}
		return nil, false
	}

	var posts []domain.RawPost
	if err := json.Unmarshal(data, &posts); err != nil {
		slog.Warn("Failed to unmarshal cached posts", "key", key, "error", err)
		return nil, false
	}
	return posts, true
}

// CacheKey identifies a query independently of symbol order:
// posts:{SYM,...}:{lookback hours}:{limit}.
func CacheKey(q domain.PostQuery) string {
	symbols := slices.Clone(q.Symbols)
	slices.Sort(symbols)
	hours := int(q.Lookback / time.Hour)
	return "posts:" + strings.Join(symbols, ",") + ":" + strconv.Itoa(hours) + ":" + strconv.Itoa(q.Limit)
}
