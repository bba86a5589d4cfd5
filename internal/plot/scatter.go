package plot

import (
	"slices"

	"github.com/huangsam/epigrowth/core/algo"
	"github.com/huangsam/epigrowth/internal/contract"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// maxLegendStates caps the legend so it does not cover the data.
const maxLegendStates = 12

// renderScatter plots log rate against log density with one color per state.
func renderScatter(cfg contract.PlotConfig, data Data, path string) error {
	logDensity, logRate, states := algo.LogDensityAndRate(data.Rates)
	if len(logDensity) == 0 {
		return ErrNoData
	}

	byState := make(map[string]plotter.XYs)
	for i, s := range states {
		byState[s] = append(byState[s], plotter.XY{X: logDensity[i], Y: logRate[i]})
	}
	names := make([]string, 0, len(byState))
	for s := range byState {
		names = append(names, s)
	}
	slices.Sort(names)

	p := gplot.New()
	p.Title.Text = "Growth rate vs population density"
	p.X.Label.Text = "ln(people per m²)"
	p.Y.Label.Text = "ln(rate per day)"
	p.Legend.Top = true

	for i, name := range names {
		s, err := plotter.NewScatter(byState[name])
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{
			Color:  plotutil.Color(i),
			Radius: vg.Points(2),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(s)
		if len(names) <= maxLegendStates {
			p.Legend.Add(name, s)
		}
	}
	return save(p, cfg, path)
}
