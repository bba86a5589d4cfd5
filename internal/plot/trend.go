package plot

import (
	"image/color"

	"github.com/huangsam/epigrowth/internal/contract"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var trendColor = color.RGBA{R: 84, G: 39, B: 143, A: 255}

// renderTrend draws national new cases by date.
func renderTrend(cfg contract.PlotConfig, data Data, path string) error {
	if data.Trend == nil || len(data.Trend.Points) == 0 {
		return ErrNoData
	}

	xys := make(plotter.XYs, len(data.Trend.Points))
	for i, pt := range data.Trend.Points {
		xys[i] = plotter.XY{X: float64(pt.Date.Unix()), Y: float64(pt.NewCases)}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = trendColor
	line.Width = vg.Points(1.5)

	p := gplot.New()
	p.Title.Text = "New cases by date"
	p.Y.Label.Text = "New cases"
	p.X.Tick.Marker = gplot.TimeTicks{Format: contract.DateFormat}
	p.Add(line, plotter.NewGrid())
	return save(p, cfg, path)
}
