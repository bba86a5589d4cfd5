package plot

import (
	"image/color"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

var histogramFill = color.RGBA{R: 117, G: 107, B: 177, A: 255}

func renderDensityHistogram(cfg contract.PlotConfig, data Data, path string) error {
	return renderHistogram(cfg, data.Summary.DensityHist, "Log population density", "ln(people per m²)", path)
}

func renderRateHistogram(cfg contract.PlotConfig, data Data, path string) error {
	return renderHistogram(cfg, data.Summary.RateHist, "Log growth rate", "ln(rate per day)", path)
}

// renderHistogram draws precomputed bins as bars.
func renderHistogram(cfg contract.PlotConfig, bins []schema.HistogramBin, title, xLabel, path string) error {
	h := newHistogram(bins)
	if h == nil {
		return ErrNoData
	}

	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Counties"
	p.Add(h)
	return save(p, cfg, path)
}

// newHistogram converts summary bins into a gonum histogram. It returns nil for empty input.
func newHistogram(bins []schema.HistogramBin) *plotter.Histogram {
	if len(bins) == 0 {
		return nil
	}
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(bins)),
		Width:     bins[0].High - bins[0].Low,
		FillColor: histogramFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Low, Max: b.High, Weight: float64(b.Count)}
	}
	return h
}
