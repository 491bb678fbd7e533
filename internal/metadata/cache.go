// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata

import (
	"context"
	"errors"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/pkg/isbn"
)

// Cache stores serialized lookup results.
type Cache interface {
	// Get reports found=false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements [Cache] on a Redis client.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (cache *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := cache.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (cache *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return cache.client.Set(ctx, key, value, ttl).Err()
}

// CachedLookup wraps a [Lookup] with a TTL cache. Cache failures are logged and
// the lookup falls through to the wrapped source. Empty results are not cached.
type CachedLookup struct {
	next   Lookup
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLookup(next Lookup, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (lookup *CachedLookup) LookupISBN(ctx context.Context, value string) (*Record, error) {
	key := constants.RedisPrefixISBNLookup + isbn.Normalize(value)

	raw, found, err := lookup.cache.Get(ctx, key)
	switch {
	case err != nil:
		lookup.logger.Warn("metadata_cache_read_failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		var record Record
		if err := jsoniter.Unmarshal(raw, &record); err == nil {
			return &record, nil
		}
		lookup.logger.Warn("metadata_cache_entry_corrupt", slog.String("key", key))
	}

	record, err := lookup.next.LookupISBN(ctx, value)
	if err != nil || record.IsEmpty() {
		return record, err
	}

	encoded, err := jsoniter.Marshal(record)
	if err == nil {
		err = lookup.cache.Set(ctx, key, encoded, lookup.ttl)
	}
	if err != nil {
		lookup.logger.Warn("metadata_cache_write_failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return record, nil
}
