package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/internal/parquet"
	"github.com/huangsam/epigrowth/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRatesResults outputs ranked county growth rates, dispatching based on the output format configured.
func PrintRatesResults(ranked []schema.CountyRate, failures schema.EstimateFailures, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	enriched := schema.EnrichRates(ranked)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRatesJSON(w, enriched, failures)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRatesCSV(w, enriched, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteGrowthRatesParquet(parquet.ConvertEnrichedRates(enriched), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRatesTable(w, enriched, failures, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// ratesJSON is the JSON document for the rates command.
type ratesJSON struct {
	Counties []schema.EnrichedCountyRate `json:"counties"`
	Skipped  schema.EstimateFailures     `json:"skipped"`
}

// writeRatesJSON writes enriched rates and the failure tally as JSON.
func writeRatesJSON(w io.Writer, enriched []schema.EnrichedCountyRate, failures schema.EstimateFailures) error {
	if enriched == nil {
		enriched = []schema.EnrichedCountyRate{}
	}
	return writeJSON(w, ratesJSON{Counties: enriched, Skipped: failures})
}

// writeRatesCSV writes one CSV row per ranked county.
func writeRatesCSV(w io.Writer, enriched []schema.EnrichedCountyRate, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"fips",
		"state",
		"county",
		"rate",
		"intercept",
		"doubling_days",
		"label",
		"observations",
		"total_cases",
		"population",
		"area",
		"density",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range enriched {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.FIPS,
				r.State,
				r.County,
				fmtFloat(r.Rate),
				fmtFloat(r.Intercept),
				fmtFloat(r.DoublingDays),
				string(r.Label),
				fmt.Sprintf(intFmt, r.Observations),
				fmt.Sprintf(intFmt, r.TotalCases),
				fmt.Sprintf(intFmt, r.Population),
				strconv.FormatFloat(r.Area, 'f', 0, 64),
				strconv.FormatFloat(r.Density, 'g', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRatesTable generates and writes the human-readable table.
func writeRatesTable(w io.Writer, enriched []schema.EnrichedCountyRate, failures schema.EstimateFailures,
	cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration,
) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	table.Header([]string{"Rank", "County", "State", "FIPS", "Rate", "Doubling", "Label", "Obs", "Cases", "Population", "Per km²"})

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	label := labelFormatter(cfg)
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range enriched {
		doubling := "-"
		if r.DoublingDays > 0 {
			doubling = fmtFloat(r.DoublingDays)
		}
		density := "-"
		if r.HasDensity() {
			density = fmtFloat(perSquareKm(r.Density))
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			contract.TruncateName(r.County, nameWidth),
			r.State,
			r.FIPS,
			fmtFloat(r.Rate),
			doubling,
			label(r.Rate),
			fmt.Sprintf(intFmt, r.Observations),
			fmt.Sprintf(intFmt, r.TotalCases),
			fmt.Sprintf(intFmt, r.Population),
			density,
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing top %d counties by growth rate (skipped during estimation: %d)\n", len(enriched), failures.Total()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}
