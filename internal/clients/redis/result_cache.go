package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/utils"
)

// Key prefixes carry a version so a format change invalidates old entries.
// Empty results live in their own namespace with a strictly shorter TTL, so
// "nothing found" answers go stale sooner than real hits.
const (
	PositiveKeyPrefix = "search_v3:"
	NegativeKeyPrefix = "search_v3:empty:"
)

// ResultCache memoizes serialized search documents. Caching is an
// optimization, never a correctness dependency: every backend failure, and a
// missing backend altogether, degrades to a logged no-op.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
	Enabled() bool
	Close() error
}

type resultCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewResultCache connects to Redis when REDIS_ADDR is set; otherwise (or on
// ping failure) it returns a disabled cache and the service runs without
// caching.
func NewResultCache(log *logger.Logger) ResultCache {
	cacheLog := log.With("client", "ResultCache")

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		cacheLog.Info("REDIS_ADDR not set, result caching disabled")
		return &resultCache{log: cacheLog}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     utils.GetEnv("REDIS_PASSWORD", "", log),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		cacheLog.Error("Redis ping failed, result caching disabled", "addr", addr, "error", err)
		_ = rdb.Close()
		return &resultCache{log: cacheLog}
	}

	cacheLog.Info("Result cache connected", "addr", addr)
	return &resultCache{log: cacheLog, rdb: rdb}
}

func (c *resultCache) Enabled() bool { return c != nil && c.rdb != nil }

func (c *resultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Cache get failed, continuing without cache", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *resultCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.log.Warn("Cache set failed, continuing without cache", "key", key, "error", err)
	}
}

func (c *resultCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// PositiveKey and NegativeKey build the two cache slots for a normalized
// query. Textual variants that normalize to the same key share a slot.
func PositiveKey(normalizedQuery string) string {
	return fmt.Sprintf("%s%s", PositiveKeyPrefix, normalizedQuery)
}

func NegativeKey(normalizedQuery string) string {
	return fmt.Sprintf("%s%s", NegativeKeyPrefix, normalizedQuery)
}
