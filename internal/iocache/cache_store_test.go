package iocache

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/epigrowth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "estimate_cache", false},
		{"leading underscore", "_cache", false},
		{"digits", "cache2", false},
		{"empty", "", true},
		{"leading digit", "2cache", true},
		{"injection", "cache; DROP TABLE x", true},
		{"quote", `cache"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`estimate_cache`", quoteTableName("estimate_cache", schema.MySQLBackend))
	assert.Equal(t, `"estimate_cache"`, quoteTableName("estimate_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"estimate_cache"`, quoteTableName("estimate_cache", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, []string{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Empty(t, placeholders(schema.SQLiteBackend, 0))
}

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(estimateTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, time.Now().Unix()))
	_, _, _, err = store.Get("k")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, store.Clear())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_InvalidInputs(t *testing.T) {
	_, err := NewCacheStore("bad table", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(estimateTable, schema.DatabaseBackend("mongo"), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cache backend")
}

func TestCacheStore_SQLite(t *testing.T) {
	store, err := NewCacheStore(estimateTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, store.Set("a", []byte("first"), 1, 100))
	require.NoError(t, store.Set("a", []byte("second"), 2, 200))
	require.NoError(t, store.Set("b", []byte{0x00, 0xff}, 2, 50))

	value, version, ts, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)

	value, _, _, err = store.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, value)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(200, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(50, 0), status.OldestEntryTime)
	assert.Greater(t, status.TableSizeBytes, int64(0))

	require.NoError(t, store.Clear())
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalEntries)
}
