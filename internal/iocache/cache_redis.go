package iocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/redis/go-redis/v9"
)

// Hash fields of a cached entry.
const (
	redisValueField   = "value"
	redisVersionField = "version"
	redisTSField      = "ts"
)

// redisEntryTTL bounds how long Redis keeps an entry. Staleness is still checked by callers.
const redisEntryTTL = 8 * 24 * time.Hour

// redisTimeout bounds every Redis round trip.
const redisTimeout = 5 * time.Second

// RedisCacheStore stores cache entries as Redis hashes under a key prefix.
type RedisCacheStore struct {
	rdb    *redis.Client
	prefix string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the Redis server at connURL (redis://host:port/db).
func NewRedisCacheStore(tableName, connURL string) (*RedisCacheStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(connURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis. Check that the server is running and the URL is valid: %w", err)
	}
	return NewRedisCacheStoreWithClient(rdb, tableName), nil
}

// NewRedisCacheStoreWithClient wraps an existing client.
func NewRedisCacheStoreWithClient(rdb *redis.Client, tableName string) *RedisCacheStore {
	return &RedisCacheStore{rdb: rdb, prefix: "epigrowth:" + tableName + ":"}
}

// Get retrieves a value by key from the store. A missing key returns redis.Nil.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	fields, err := rs.rdb.HGetAll(ctx, rs.prefix+key).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(fields) == 0 {
		return nil, 0, 0, redis.Nil
	}
	version, err := strconv.Atoi(fields[redisVersionField])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields[redisTSField], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(fields[redisValueField]), version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	pipe := rs.rdb.TxPipeline()
	pipe.HSet(ctx, rs.prefix+key, map[string]any{
		redisValueField:   value,
		redisVersionField: version,
		redisTSField:      timestamp,
	})
	pipe.Expire(ctx, rs.prefix+key, redisEntryTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// keys returns every key under the store prefix.
func (rs *RedisCacheStore) keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := rs.rdb.Scan(ctx, 0, rs.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

// Clear deletes every entry under the store prefix.
func (rs *RedisCacheStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	keys, err := rs.keys(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}
	return rs.rdb.Del(ctx, keys...).Err()
}

// GetStatus returns status information about the cache store.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	keys, err := rs.keys(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to list cache keys: %w", err)
	}
	for _, k := range keys {
		fields, err := rs.rdb.HMGet(ctx, k, redisTSField, redisValueField).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return status, fmt.Errorf("failed to read %s: %w", k, err)
		}
		tsStr, _ := fields[0].(string)
		ts, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			continue
		}
		value, _ := fields[1].(string)

		entryTime := time.Unix(ts, 0)
		if status.TotalEntries == 0 || entryTime.After(status.LastEntryTime) {
			status.LastEntryTime = entryTime
		}
		if status.TotalEntries == 0 || entryTime.Before(status.OldestEntryTime) {
			status.OldestEntryTime = entryTime
		}
		status.TotalEntries++
		status.TableSizeBytes += int64(len(value))
	}
	return status, nil
}

// Close closes the underlying client.
func (rs *RedisCacheStore) Close() error {
	return rs.rdb.Close()
}
