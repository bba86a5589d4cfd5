package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/epigrowth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAnalysis(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Now()
	id, err := store.BeginAnalysis("export-run", start, map[string]any{"limit": 25})
	require.NoError(t, err)
	require.NoError(t, store.RecordCountyRates(id, sampleCountyRates(start)))
	require.NoError(t, store.EndAnalysis(id, start.Add(time.Second), 2))

	base := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExportAnalysis(store, base, &out))

	for _, suffix := range []string{".analysis_runs.parquet", ".county_rates.parquet"} {
		info, err := os.Stat(base + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Contains(t, out.String(), "Exported 1 analysis runs")
	assert.Contains(t, out.String(), "Exported 2 county rate records")
}

func TestExportAnalysis_Errors(t *testing.T) {
	store := &MockAnalysisStore{}

	err := ExportAnalysis(store, "", &bytes.Buffer{})
	assert.ErrorContains(t, err, "--output-file is required")

	err = ExportAnalysis(nil, "out", &bytes.Buffer{})
	assert.ErrorContains(t, err, "analysis tracking is not enabled")

	store.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite"}, nil).Once()
	err = ExportAnalysis(store, "out", &bytes.Buffer{})
	assert.ErrorContains(t, err, "no analysis data found")

	store.On("GetStatus").Return(schema.AnalysisStatus{}, errors.New("boom")).Once()
	err = ExportAnalysis(store, "out", &bytes.Buffer{})
	assert.ErrorContains(t, err, "boom")

	store.AssertExpectations(t)
}
