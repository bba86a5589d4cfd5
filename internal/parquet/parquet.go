// Package parquet provides data structures and functions for exporting epigrowth
// results and tracked runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/epigrowth/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single epigrowth run with metadata.
// This struct maps to the epigrowth_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RunUUID    string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs         *int32 `parquet:"run_duration_ms,optional,snappy"`
	TotalCountiesAnalyzed int32  `parquet:"total_counties_analyzed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CountyRate represents the stored growth rate of one county in a run.
// This struct maps to the epigrowth_county_rates database table.
type CountyRate struct {
	AnalysisID   int64     `parquet:"analysis_id,snappy"`
	FIPS         string    `parquet:"fips,snappy"`
	State        string    `parquet:"state,snappy,dict"`
	County       string    `parquet:"county,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	Rate         float64   `parquet:"rate,snappy"`
	Intercept    float64   `parquet:"intercept,snappy"`
	Observations int32     `parquet:"observations,snappy"`
	TotalCases   int64     `parquet:"total_cases,snappy"`
	Population   int64     `parquet:"population,snappy"`

	// Density is people per square meter (nullable when the county has no land area)
	Density     *float64 `parquet:"density,optional,snappy"`
	GrowthLabel string   `parquet:"growth_label,snappy,dict"`
}

// GrowthRate is one ranked row of the rates command output.
type GrowthRate struct {
	Rank         int32   `parquet:"rank,snappy"`
	FIPS         string  `parquet:"fips,snappy"`
	State        string  `parquet:"state,snappy,dict"`
	County       string  `parquet:"county,snappy"`
	Rate         float64 `parquet:"rate,snappy"`
	Intercept    float64 `parquet:"intercept,snappy"`
	DoublingDays float64 `parquet:"doubling_days,snappy"`
	Observations int32   `parquet:"observations,snappy"`
	TotalCases   int64   `parquet:"total_cases,snappy"`
	Population   int64   `parquet:"population,snappy"`
	Area         float64 `parquet:"area,snappy"`
	Density      float64 `parquet:"density,snappy"`
	Label        string  `parquet:"label,snappy,dict"`
}

// writeParquet writes rows of any struct type to a Parquet file.
// The schema is derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCountyRatesParquet writes a slice of CountyRate structs to a Parquet file.
func WriteCountyRatesParquet(data []CountyRate, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteGrowthRatesParquet writes ranked growth rates to a Parquet file.
func WriteGrowthRatesParquet(data []GrowthRate, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:            record.AnalysisID,
			RunUUID:               record.RunUUID,
			StartTime:             record.StartTime,
			EndTime:               record.EndTime,
			RunDurationMs:         record.RunDurationMs,
			TotalCountiesAnalyzed: record.TotalCountiesAnalyzed,
			ConfigParams:          record.ConfigParams,
		}
	}
	return result
}

// ConvertCountyRateRecords converts schema.CountyRateRecord to CountyRate for Parquet export.
func ConvertCountyRateRecords(records []schema.CountyRateRecord) []CountyRate {
	result := make([]CountyRate, len(records))
	for i, record := range records {
		result[i] = CountyRate{
			AnalysisID:   record.AnalysisID,
			FIPS:         record.FIPS,
			State:        record.State,
			County:       record.County,
			AnalysisTime: record.AnalysisTime,
			Rate:         record.Rate,
			Intercept:    record.Intercept,
			Observations: record.Observations,
			TotalCases:   record.TotalCases,
			Population:   record.Population,
			Density:      record.Density,
			GrowthLabel:  record.GrowthLabel,
		}
	}
	return result
}

// ConvertEnrichedRates converts ranked county rates to GrowthRate rows.
func ConvertEnrichedRates(rates []schema.EnrichedCountyRate) []GrowthRate {
	result := make([]GrowthRate, len(rates))
	for i, r := range rates {
		result[i] = GrowthRate{
			Rank:         int32(r.Rank),
			FIPS:         r.FIPS,
			State:        r.State,
			County:       r.County,
			Rate:         r.Rate,
			Intercept:    r.Intercept,
			DoublingDays: r.DoublingDays,
			Observations: int32(r.Observations),
			TotalCases:   r.TotalCases,
			Population:   r.Population,
			Area:         r.Area,
			Density:      r.Density,
			Label:        string(r.Label),
		}
	}
	return result
}
