package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/epigrowth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals allows InitCaching to run again within a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
}

func TestInitCaching(t *testing.T) {
	t.Run("sqlite stores", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		require.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath))
		assert.NotNil(t, Manager.GetEstimateStore())
		assert.NotNil(t, Manager.GetAnalysisStore())

		// Repeated initialization is a no-op
		require.NoError(t, InitCaching(schema.MySQLBackend, "bogus", "", ""))

		CloseCaching()
		CloseCaching()

		_, err := os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(analysisPath)
		assert.NoError(t, err)
	})

	t.Run("disabled stores", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitCaching("", "", "", ""))
		assert.Nil(t, Manager.GetEstimateStore())
		assert.Nil(t, Manager.GetAnalysisStore())
		CloseCaching()
	})

	t.Run("failure", func(t *testing.T) {
		resetGlobals(t)
		err := InitCaching(schema.DatabaseBackend("bogus"), "", "", "")
		assert.ErrorContains(t, err, "failed to initialize estimate caching")
	})
}

func TestClearCacheAndAnalysis(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Missing files are fine
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoError(t, ClearAnalysis(schema.SQLiteBackend, path, ""))
	assert.Error(t, ClearAnalysis(schema.SQLiteBackend, "", ""))

	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	assert.Error(t, ClearAnalysis(schema.RedisBackend, "", "redis://localhost"))
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    2,
		LastEntryTime:   time.Date(2020, 4, 2, 10, 0, 0, 0, time.Local),
		OldestEntryTime: time.Date(2020, 4, 1, 10, 0, 0, 0, time.Local),
		TableSizeBytes:  4096,
	})
	assert.Contains(t, buf.String(), "Total Entries: 2")
	assert.Contains(t, buf.String(), "Last Entry: 2020-04-02 10:00:00")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes")

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend:   "sqlite",
		Connected: true,
		TableSizes: map[string]int64{
			countyRatesTable:  10,
			analysisRunsTable: 1,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 0")
	assert.NotContains(t, out, "Last Run ID")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(countyRatesTable)))

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{Backend: "none"})
	assert.NotContains(t, buf.String(), "Total Runs")
}
