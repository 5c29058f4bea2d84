// Package cache is a JSON read-through cache on top of Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores JSON documents with a TTL.
type Cache interface {
	// GetOrLoad returns the cached value for key, calling load and storing its
	// result when the key is missing. Cache errors fall back to load.
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

type redisCache struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

func NewRedisCache(client *redis.Client, prefix string, logger zerolog.Logger) Cache {
	return &redisCache{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "Cache").Logger(),
	}
}

func (c *redisCache) key(k string) string {
	return c.prefix + k
}

func (c *redisCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, loading from source")
	}

	v, err := load(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), encoded, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return json.Unmarshal(encoded, dest)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}

func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache prefix %s: %w", prefix, err)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, batch...).Err(); err != nil {
		return fmt.Errorf("delete cache prefix %s: %w", prefix, err)
	}
	return nil
}

// Nop never caches; every read goes to the loader.
type Nop struct{}

func (Nop) GetOrLoad(ctx context.Context, _ string, _ time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	v, err := load(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}

func (Nop) Delete(context.Context, ...string) error { return nil }

func (Nop) DeletePrefix(context.Context, string) error { return nil }

// Cache keys shared between writers and readers.
const CatalogPrefix = "courses:catalog:"

func CatalogKey(query, categoryID string) string {
	return CatalogPrefix + query + ":" + categoryID
}

func ProfileKey(userID string) string {
	return "profiles:" + userID
}
