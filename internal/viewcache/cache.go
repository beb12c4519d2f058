package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/invalidate"
	"storefront-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// keyVersion holds the current generation of a view: view:ver:{view}
	keyVersion = "view:ver:%s"
	// keyData holds one cached payload: view:{view}:v{generation}:{key}
	keyData = "view:%s:v%d:%s"
)

// Cache stores rendered read models in redis. Invalidating a view bumps its
// generation so every key written under the old one is ignored and left to
// expire. A nil *Cache is a valid always-miss cache.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func New(rdb redis.Cmdable, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Connect returns a client for addr, or nil when addr is empty or the
// server does not answer; callers then run without cache.
func Connect(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis unreachable, running without view cache",
			zap.String("addr", addr),
			zap.Error(err),
		)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func (c *Cache) generation(ctx context.Context, view invalidate.View) (int64, error) {
	gen, err := c.rdb.Get(ctx, fmt.Sprintf(keyVersion, view)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get loads key of view into dst. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, view invalidate.View, key string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}
	gen, err := c.generation(ctx, view)
	if err != nil {
		return false, err
	}

	raw, err := c.rdb.Get(ctx, fmt.Sprintf(keyData, view, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", view, err)
	}
	return true, nil
}

// Set stores v under key of view's current generation.
func (c *Cache) Set(ctx context.Context, view invalidate.View, key string, v any) error {
	if c == nil {
		return nil
	}
	gen, err := c.generation(ctx, view)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", view, err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyData, view, gen, key), string(b), c.ttl).Err()
}

// Invalidate implements invalidate.Sink.
func (c *Cache) Invalidate(ctx context.Context, views []invalidate.View) error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, v := range views {
		if err := c.rdb.Incr(ctx, fmt.Sprintf(keyVersion, v)).Err(); err != nil {
			errs = append(errs, fmt.Errorf("bump %s: %w", v, err))
		}
	}
	return errors.Join(errs...)
}
