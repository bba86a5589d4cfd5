package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/internal/parquet"
)

// ExecuteAnalysisExport exports the global analysis store to Parquet files.
func ExecuteAnalysisExport(outputFile string) error {
	return ExportAnalysis(Manager.GetAnalysisStore(), outputFile, os.Stdout)
}

// ExportAnalysis writes the runs and county rates of store to
// <outputFile>.analysis_runs.parquet and <outputFile>.county_rates.parquet.
func ExportAnalysis(store contract.AnalysisStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not enabled. Set --analysis-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total county records: %d\n", status.TableSizes[countyRatesTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	countyRates, err := store.GetAllCountyRates()
	if err != nil {
		return fmt.Errorf("failed to retrieve county rates: %w", err)
	}

	parquetRuns := parquet.ConvertAnalysisRunRecords(analysisRuns)
	parquetRates := parquet.ConvertCountyRateRecords(countyRates)

	analysisRunsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, analysisRunsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d analysis runs to: %s\n", len(parquetRuns), analysisRunsFile)

	countyRatesFile := outputFile + ".county_rates.parquet"
	if err := parquet.WriteCountyRatesParquet(parquetRates, countyRatesFile); err != nil {
		return fmt.Errorf("failed to write county rates: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d county rate records to: %s\n", len(parquetRates), countyRatesFile)

	_, _ = fmt.Fprintln(out, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow), or Apache Arrow.")
	return nil
}
