package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// histogramBarWidth is the width of the longest bar in text histograms.
const histogramBarWidth = 30

// PrintDensityResults outputs the density summary, dispatching based on the output format configured.
func PrintDensityResults(summary schema.DensitySummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON density summary"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDensityCSV(w, summary, fmtFloat, intFmt)
		}, "Wrote CSV density summary"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("the density summary")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDensityText(w, summary, cfg, fmtFloat, intFmt, duration)
		}, "Wrote density summary")
	}
	return nil
}

// writeDensityCSV writes summary statistics followed by histogram bins.
// Every row uses the columns section,name,low,high,value.
func writeDensityCSV(w io.Writer, s schema.DensitySummary, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"section", "name", "low", "high", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		stats := [][2]string{
			{"counties", fmt.Sprintf(intFmt, s.Counties)},
			{"used", fmt.Sprintf(intFmt, s.Used)},
			{"correlation", fmtFloat(s.Correlation)},
			{"intercept", fmtFloat(s.Intercept)},
			{"slope", fmtFloat(s.Slope)},
			{"r_squared", fmtFloat(s.RSquared)},
			{"median_rate", fmtFloat(s.MedianRate)},
		}
		for _, st := range stats {
			if err := cw.Write([]string{"summary", st[0], "", "", st[1]}); err != nil {
				return err
			}
		}
		for _, h := range []struct {
			name string
			bins []schema.HistogramBin
		}{{"log_density", s.DensityHist}, {"log_rate", s.RateHist}} {
			for i, b := range h.bins {
				rec := []string{h.name, strconv.Itoa(i + 1), fmtFloat(b.Low), fmtFloat(b.High), fmt.Sprintf(intFmt, b.Count)}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeDensityText writes the summary table and both histograms.
func writeDensityText(w io.Writer, s schema.DensitySummary, cfg *contract.Config,
	fmtFloat func(float64) string, intFmt string, duration time.Duration,
) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := [][]string{
		{"Counties", fmt.Sprintf(intFmt, s.Counties)},
		{"With density and rate > 0", fmt.Sprintf(intFmt, s.Used)},
		{"Correlation (log density, log rate)", fmtFloat(s.Correlation)},
		{"Fit intercept", fmtFloat(s.Intercept)},
		{"Fit slope", fmtFloat(s.Slope)},
		{"R²", fmtFloat(s.RSquared)},
		{"Median rate", fmtFloat(s.MedianRate)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if err := writeHistogramText(w, "Log density (people per m²)", s.DensityHist, fmtFloat); err != nil {
		return err
	}
	if err := writeHistogramText(w, "Log growth rate", s.RateHist, fmtFloat); err != nil {
		return err
	}

	if s.Used == 0 {
		if _, err := fmt.Fprintln(w, "No county has both a positive density and rate; pass --shapes-file for density"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Density analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeHistogramText renders a histogram as rows of proportional bars.
func writeHistogramText(w io.Writer, title string, bins []schema.HistogramBin, fmtFloat func(float64) string) error {
	if len(bins) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", title); err != nil {
		return err
	}
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	for _, b := range bins {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(float64(b.Count) / float64(peak) * histogramBarWidth))
		}
		if _, err := fmt.Fprintf(w, "[%s, %s) %6d %s\n", fmtFloat(b.Low), fmtFloat(b.High), b.Count, strings.Repeat("█", bar)); err != nil {
			return err
		}
	}
	return nil
}
