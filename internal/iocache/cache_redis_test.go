package iocache

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/huangsam/epigrowth/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisCacheStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisCacheStore(estimateTable, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisCacheStore_GetSet(t *testing.T) {
	store, mr := newTestRedisStore(t)

	_, _, _, err := store.Get("missing")
	assert.True(t, errors.Is(err, redis.Nil))

	require.NoError(t, store.Set("abc", []byte{0x28, 0xb5, 0x2f, 0xfd}, 3, 1700000000))
	value, version, ts, err := store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, value)
	assert.Equal(t, 3, version)
	assert.Equal(t, int64(1700000000), ts)

	assert.True(t, mr.Exists("epigrowth:estimate_cache:abc"))
	assert.Equal(t, redisEntryTTL, mr.TTL("epigrowth:estimate_cache:abc"))

	mr.FastForward(redisEntryTTL + time.Second)
	_, _, _, err = store.Get("abc")
	assert.True(t, errors.Is(err, redis.Nil))
}

func TestRedisCacheStore_StatusAndClear(t *testing.T) {
	store, mr := newTestRedisStore(t)

	// Keys outside the prefix are left alone
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, store.Set("a", []byte("12345"), 1, 100))
	require.NoError(t, store.Set("b", []byte("123"), 1, 300))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.RedisBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(100, 0), status.OldestEntryTime)
	assert.Equal(t, int64(8), status.TableSizeBytes)

	require.NoError(t, store.Clear())
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalEntries)
	assert.True(t, mr.Exists("unrelated"))

	// Clearing an empty store is a no-op
	assert.NoError(t, store.Clear())
}

func TestNewRedisCacheStore_Errors(t *testing.T) {
	_, err := NewRedisCacheStore(estimateTable, "not a url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisCacheStore(estimateTable, "redis://"+addr)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestNewCacheStore_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewCacheStore(estimateTable, schema.RedisBackend, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok := store.(*RedisCacheStore)
	assert.True(t, ok)
}
