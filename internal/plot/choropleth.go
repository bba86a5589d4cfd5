package plot

import (
	"image/color"
	"math"
	"slices"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	paletteName = "Purples"
	paletteSize = 9
)

// missingFill colors counties with a shape but no rate.
var missingFill = color.Gray{Y: 230}

var outline = draw.LineStyle{Color: color.Gray{Y: 140}, Width: vg.Points(0.2)}

// colorScale maps a rate onto a sequential palette between lo and hi.
type colorScale struct {
	colors []color.Color
	lo, hi float64
}

// newColorScale builds a Purples scale spanning the given rates.
func newColorScale(rates []schema.CountyRate) (colorScale, error) {
	pal, err := brewer.GetPalette(brewer.TypeSequential, paletteName, paletteSize)
	if err != nil {
		return colorScale{}, err
	}
	scale := colorScale{colors: pal.Colors(), lo: math.Inf(1), hi: math.Inf(-1)}
	for _, r := range rates {
		scale.lo = math.Min(scale.lo, r.Rate)
		scale.hi = math.Max(scale.hi, r.Rate)
	}
	return scale, nil
}

// At returns the palette color for rate.
func (s colorScale) At(rate float64) color.Color {
	n := len(s.colors)
	if s.hi <= s.lo {
		return s.colors[n/2]
	}
	idx := int(math.Round((rate - s.lo) / (s.hi - s.lo) * float64(n-1)))
	return s.colors[min(max(idx, 0), n-1)]
}

// renderChoropleth draws every county with a shape, filled by growth rate.
func renderChoropleth(cfg contract.PlotConfig, data Data, path string) error {
	if len(data.Rates) == 0 {
		return ErrNoData
	}
	p, err := choropleth("County growth rate", data.Rates, data.Shapes, true)
	if err != nil {
		return err
	}
	return save(p, cfg, path)
}

// choropleth builds a map of the given counties. When includeMissing is set,
// shapes without a rate are drawn in grey so the map keeps its outline.
func choropleth(title string, rates []schema.CountyRate, shapes map[string]schema.CountyShape, includeMissing bool) (*gplot.Plot, error) {
	scale, err := newColorScale(rates)
	if err != nil {
		return nil, err
	}

	p := gplot.New()
	p.Title.Text = title
	p.HideAxes()

	fill := make(map[string]color.Color, len(rates))
	for _, r := range rates {
		fill[r.FIPS] = scale.At(r.Rate)
	}

	// Stable draw order keeps output reproducible
	fipsCodes := make([]string, 0, len(shapes))
	for fips := range shapes {
		if _, ok := fill[fips]; ok || includeMissing {
			fipsCodes = append(fipsCodes, fips)
		}
	}
	slices.Sort(fipsCodes)

	for _, fips := range fipsCodes {
		poly, err := countyPolygon(shapes[fips])
		if err != nil {
			return nil, err
		}
		if poly == nil {
			continue
		}
		poly.Color = missingFill
		if c, ok := fill[fips]; ok {
			poly.Color = c
		}
		p.Add(poly)
	}
	return p, nil
}

// countyPolygon converts shape rings to a gonum polygon. It returns nil when
// the shape has no drawable ring.
func countyPolygon(shape schema.CountyShape) (*plotter.Polygon, error) {
	var rings []plotter.XYer
	for _, ring := range shape.Rings {
		if len(ring) < 3 {
			continue
		}
		xys := make(plotter.XYs, len(ring))
		for i, pt := range ring {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		rings = append(rings, xys)
	}
	if len(rings) == 0 {
		return nil, nil
	}
	poly, err := plotter.NewPolygon(rings...)
	if err != nil {
		return nil, err
	}
	poly.LineStyle = outline
	return poly, nil
}
