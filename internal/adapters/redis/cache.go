package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"place_reviews/internal/adapters/observability"
	"place_reviews/internal/domain"
)

// Cache stores aggregate results as JSON. Read failures count as misses so
// an unavailable redis never fails a request.
type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false, err
	}
	if err := json.Unmarshal(v, dst); err != nil {
		observability.ObserveCache("redis", "error")
		return false, domain.WrapError(domain.ErrMalformed, "cached entry is not a valid result", err)
	}
	observability.ObserveCache("redis", "hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err(); err != nil {
		observability.ObserveCache("redis", "error")
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return err
	}
	observability.ObserveCache("redis", "set")
	return nil
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key).Err()
}
