// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/epigrowth/schema"
)

// DataSource defines the operations for reading the three input datasets.
// This allows the core analysis logic to be tested without files on disk.
type DataSource interface {
	// LoadCases reads daily county case records from a CSV file.
	LoadCases(ctx context.Context, path string) ([]schema.CaseRecord, error)

	// LoadPopulation reads county population estimates from a census CSV file.
	LoadPopulation(ctx context.Context, path string) (map[string]int64, error)

	// LoadShapes reads county boundaries and land areas from a shapefile, keyed by FIPS.
	LoadShapes(ctx context.Context, path string) (map[string]schema.CountyShape, error)

	// Fingerprint returns a content hash of the file at path.
	Fingerprint(path string) (string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetEstimateStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and storing county rates.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(runUUID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalCounties int) error

	// RecordCountyRates stores the growth rate rows of a run
	RecordCountyRates(analysisID int64, records []schema.CountyRateRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllCountyRates returns every recorded county rate row
	GetAllCountyRates() ([]schema.CountyRateRecord, error)

	// Clear removes all runs and rates
	Clear() error

	// Close closes the underlying connection
	Close() error
}
