// Package plot renders growth rate charts and county maps with gonum/plot.
package plot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// ErrNoShapes is returned when a map chart is requested without county shapes.
var ErrNoShapes = errors.New("map charts require county shapes (set --shapes-file)")

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Data holds every input a chart may need. Fields irrelevant to the
// selected charts may be left empty.
type Data struct {
	Rates   []schema.CountyRate
	Shapes  map[string]schema.CountyShape
	Summary schema.DensitySummary
	Trend   *schema.TrendResult
}

// SelectedCharts expands the chart flag into the individual charts to render.
func SelectedCharts(kind schema.ChartKind) []schema.ChartKind {
	if kind == schema.AllCharts || kind == "" {
		return schema.AllChartKinds
	}
	return []schema.ChartKind{kind}
}

// NeedsRates reports whether a chart is drawn from county growth rates.
func NeedsRates(kind schema.ChartKind) bool {
	return kind != schema.TrendChart
}

// renderFunc draws one chart into path.
type renderFunc func(cfg contract.PlotConfig, data Data, path string) error

var renderers = map[schema.ChartKind]renderFunc{
	schema.DensityHistChart: renderDensityHistogram,
	schema.RateHistChart:    renderRateHistogram,
	schema.ScatterChart:     renderScatter,
	schema.MapChart:         renderChoropleth,
	schema.StatesChart:      renderStateGrid,
	schema.TrendChart:       renderTrend,
}

// RenderCharts writes the selected charts into cfg.OutputDir and returns the file paths.
// With the "all" selection, map charts are skipped when no shapes are loaded
// and empty charts are skipped as well.
func RenderCharts(cfg contract.PlotConfig, data Data) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	charts := SelectedCharts(cfg.Chart)
	files := make([]string, 0, len(charts))
	for _, kind := range charts {
		render, ok := renderers[kind]
		if !ok {
			return files, fmt.Errorf("unknown chart %q", kind)
		}
		if isMap(kind) && len(data.Shapes) == 0 {
			if len(charts) > 1 {
				contract.LogWarn(fmt.Sprintf("Skipping %s chart", kind), ErrNoShapes)
				continue
			}
			return files, ErrNoShapes
		}

		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s.%s", kind, cfg.Format))
		if err := render(cfg, data, path); err != nil {
			if errors.Is(err, ErrNoData) && len(charts) > 1 {
				contract.LogWarn(fmt.Sprintf("Skipping %s chart", kind), err)
				continue
			}
			return files, fmt.Errorf("failed to render %s chart: %w", kind, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// isMap reports whether a chart draws county polygons.
func isMap(kind schema.ChartKind) bool {
	return kind == schema.MapChart || kind == schema.StatesChart
}

// size converts the configured inches to plot lengths.
func size(cfg contract.PlotConfig) (vg.Length, vg.Length) {
	return vg.Length(cfg.Width) * vg.Inch, vg.Length(cfg.Height) * vg.Inch
}

// save writes a single plot with the configured size.
func save(p *gplot.Plot, cfg contract.PlotConfig, path string) error {
	w, h := size(cfg)
	return p.Save(w, h, path)
}
