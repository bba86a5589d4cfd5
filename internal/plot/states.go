package plot

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PickStates returns up to n distinct states chosen at random with a fixed seed.
// The same seed and input always give the same states in the same order.
func PickStates(rates []schema.CountyRate, shapes map[string]schema.CountyShape, seed int64, n int) []string {
	seen := make(map[string]struct{})
	for _, r := range rates {
		if _, ok := shapes[r.FIPS]; ok {
			seen[r.State] = struct{}{}
		}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	slices.Sort(states)

	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	rng.Shuffle(len(states), func(i, j int) { states[i], states[j] = states[j], states[i] })
	return states[:min(n, len(states))]
}

// renderStateGrid draws a rows x cols grid of per-state choropleths.
// Each state is colored on its own scale.
func renderStateGrid(cfg contract.PlotConfig, data Data, path string) error {
	states := PickStates(data.Rates, data.Shapes, cfg.Seed, cfg.GridRows*cfg.GridCols)
	if len(states) == 0 {
		return ErrNoData
	}

	plots := make([][]*gplot.Plot, cfg.GridRows)
	for row := range plots {
		plots[row] = make([]*gplot.Plot, cfg.GridCols)
	}
	for i, state := range states {
		stateRates := slices.DeleteFunc(slices.Clone(data.Rates), func(r schema.CountyRate) bool {
			return r.State != state
		})
		p, err := choropleth(state, stateRates, data.Shapes, false)
		if err != nil {
			return err
		}
		plots[i/cfg.GridCols][i%cfg.GridCols] = p
	}

	w, h := size(cfg)
	// Each tile keeps the single-chart width, so the grid grows with its rows
	h = h / 2 * vg.Length(cfg.GridRows)
	img, err := draw.NewFormattedCanvas(w, h, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	tiles := draw.Tiles{
		Rows:      cfg.GridRows,
		Cols:      cfg.GridCols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := gplot.Align(plots, tiles, draw.New(img))
	for row := range plots {
		for col, p := range plots[row] {
			if p != nil {
				p.Draw(canvases[row][col])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := img.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
