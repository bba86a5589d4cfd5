package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTrendResults outputs the national case trend, dispatching based on the output format configured.
func PrintTrendResults(result *schema.TrendResult, cfg *contract.Config, duration time.Duration) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON trend results"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendCSV(w, result, intFmt)
		}, "Wrote CSV trend results"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("the case trend")
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(w, result, intFmt, duration)
		}, "Wrote trend table"); err != nil {
			return fmt.Errorf("error writing trend table output: %w", err)
		}
	}
	return nil
}

// writeTrendCSV writes one row per date.
func writeTrendCSV(w io.Writer, result *schema.TrendResult, intFmt string) error {
	return writeCSVWithHeader(w, []string{"date", "new_cases", "cumulative_cases"}, func(cw *csv.Writer) error {
		for _, p := range result.Points {
			rec := []string{
				p.Date.Format(contract.DateFormat),
				fmt.Sprintf(intFmt, p.NewCases),
				fmt.Sprintf(intFmt, p.CumulativeCases),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeTrendTable prints the trend in a three-column table.
func writeTrendTable(w io.Writer, result *schema.TrendResult, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "New Cases", "Cumulative"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range result.Points {
		data = append(data, []string{
			p.Date.Format(contract.DateFormat),
			fmt.Sprintf(intFmt, p.NewCases),
			fmt.Sprintf(intFmt, p.CumulativeCases),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Trend over %d days completed in %v\n", len(result.Points), duration)
	return err
}
