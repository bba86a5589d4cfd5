package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
)

// PrintPlotFiles reports the chart files written by the plot command.
func PrintPlotFiles(files []string, cfg *contract.Config, duration time.Duration) error {
	if files == nil {
		files = []string{}
	}
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, map[string][]string{"files": files})
		}, "Wrote JSON plot listing")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"file"}, func(cw *csv.Writer) error {
				for _, f := range files {
					if err := cw.Write([]string{f}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV plot listing")
	case schema.ParquetOut:
		return errParquetUnsupported("plot listings")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePlotText(w, files, cfg, duration)
		}, "Wrote plot listing")
	}
}

// writePlotText lists every rendered chart.
func writePlotText(w io.Writer, files []string, cfg *contract.Config, duration time.Duration) error {
	prefix := ""
	if cfg.UseEmojis {
		prefix = "🖼️  "
	}
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, f); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Rendered %d charts in %v\n", len(files), duration)
	return err
}
