package plot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/huangsam/epigrowth/core/algo"
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a county shape covering a unit cell at (x, y).
func square(fips string, x, y float64) schema.CountyShape {
	return schema.CountyShape{
		FIPS: fips,
		Area: 1e9,
		Rings: [][]schema.Point{{
			{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1}, {X: x, Y: y},
		}},
	}
}

func testData() Data {
	states := []string{"Washington", "Oregon", "Idaho", "Montana"}
	var rates []schema.CountyRate
	shapes := make(map[string]schema.CountyShape)
	for s, state := range states {
		for c := range 3 {
			fips := fmt.Sprintf("%02d%03d", s+10, c+1)
			rates = append(rates, schema.CountyRate{
				CountyKey:      schema.CountyKey{State: state, County: fmt.Sprintf("County %d", c), FIPS: fips},
				GrowthEstimate: schema.GrowthEstimate{Rate: 0.05 * float64(s+c+1)},
				Population:     int64(1000 * (c + 1)),
				Area:           1e9,
				Density:        float64(1000*(c+1)) / 1e9,
			})
			shapes[fips] = square(fips, float64(s*4+c), float64(s))
		}
	}
	// A shape without a rate is drawn grey on the national map
	shapes["99001"] = square("99001", 20, 20)

	trend := &schema.TrendResult{}
	for d := range 5 {
		trend.Points = append(trend.Points, schema.TrendPoint{
			Date:     time.Date(2020, 3, 8+d, 0, 0, 0, 0, time.UTC),
			NewCases: int64(10 * (d + 1)),
		})
	}
	return Data{
		Rates:   rates,
		Shapes:  shapes,
		Summary: algo.Summarize(rates, 5),
		Trend:   trend,
	}
}

func testPlotConfig(t *testing.T, chart schema.ChartKind, format string) contract.PlotConfig {
	return contract.PlotConfig{
		Chart:     chart,
		OutputDir: filepath.Join(t.TempDir(), "plots"),
		Format:    format,
		Bins:      5,
		Seed:      contract.DefaultSeed,
		GridRows:  2,
		GridCols:  2,
		Width:     4,
		Height:    3,
	}
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSelectedCharts(t *testing.T) {
	assert.Equal(t, schema.AllChartKinds, SelectedCharts(schema.AllCharts))
	assert.Equal(t, []schema.ChartKind{schema.MapChart}, SelectedCharts(schema.MapChart))
}

func TestNeedsRates(t *testing.T) {
	assert.False(t, NeedsRates(schema.TrendChart))
	assert.True(t, NeedsRates(schema.ScatterChart))
	assert.True(t, NeedsRates(schema.StatesChart))
}

func TestRenderCharts_All(t *testing.T) {
	cfg := testPlotConfig(t, schema.AllCharts, "png")
	files, err := RenderCharts(cfg, testData())
	require.NoError(t, err)
	require.Len(t, files, len(schema.AllChartKinds))
	for i, kind := range schema.AllChartKinds {
		assert.Equal(t, filepath.Join(cfg.OutputDir, string(kind)+".png"), files[i])
		assertNonEmptyFile(t, files[i])
	}
}

func TestRenderCharts_SVG(t *testing.T) {
	cfg := testPlotConfig(t, schema.StatesChart, "svg")
	files, err := RenderCharts(cfg, testData())
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRenderCharts_NoShapes(t *testing.T) {
	data := testData()
	data.Shapes = nil

	_, err := RenderCharts(testPlotConfig(t, schema.MapChart, "png"), data)
	assert.True(t, errors.Is(err, ErrNoShapes))

	files, err := RenderCharts(testPlotConfig(t, schema.AllCharts, "png"), data)
	require.NoError(t, err)
	assert.Len(t, files, len(schema.AllChartKinds)-2, "map charts are skipped")
}

func TestRenderCharts_NoData(t *testing.T) {
	_, err := RenderCharts(testPlotConfig(t, schema.TrendChart, "png"), Data{})
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = RenderCharts(testPlotConfig(t, schema.ScatterChart, "png"), Data{})
	assert.True(t, errors.Is(err, ErrNoData))

	data := testData()
	data.Trend = nil
	files, err := RenderCharts(testPlotConfig(t, schema.AllCharts, "png"), data)
	require.NoError(t, err)
	assert.Len(t, files, len(schema.AllChartKinds)-1, "the empty trend is skipped")
}

func TestPickStates(t *testing.T) {
	data := testData()

	first := PickStates(data.Rates, data.Shapes, 3, 3)
	require.Len(t, first, 3)
	assert.Equal(t, first, PickStates(data.Rates, data.Shapes, 3, 3), "same seed, same states")
	assert.NotContains(t, first, "")
	assert.Len(t, slices.Compact(slices.Sorted(slices.Values(first))), 3, "states are distinct")

	all := PickStates(data.Rates, data.Shapes, 3, 18)
	assert.ElementsMatch(t, []string{"Washington", "Oregon", "Idaho", "Montana"}, all)

	assert.Empty(t, PickStates(data.Rates, nil, 3, 4), "states need shapes")
}

func TestColorScale(t *testing.T) {
	rates := []schema.CountyRate{
		{GrowthEstimate: schema.GrowthEstimate{Rate: 0.1}},
		{GrowthEstimate: schema.GrowthEstimate{Rate: 0.5}},
	}
	scale, err := newColorScale(rates)
	require.NoError(t, err)
	require.Len(t, scale.colors, paletteSize)
	assert.Equal(t, scale.colors[0], scale.At(0.1))
	assert.Equal(t, scale.colors[paletteSize-1], scale.At(0.5))
	assert.Equal(t, scale.colors[paletteSize-1], scale.At(9), "clamped")

	flat, err := newColorScale(rates[:1])
	require.NoError(t, err)
	assert.Equal(t, flat.colors[paletteSize/2], flat.At(0.1))
}

func TestCountyPolygon(t *testing.T) {
	poly, err := countyPolygon(square("53033", 0, 0))
	require.NoError(t, err)
	require.NotNil(t, poly)
	assert.Len(t, poly.XYs, 1)

	poly, err = countyPolygon(schema.CountyShape{Rings: [][]schema.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}}})
	require.NoError(t, err)
	assert.Nil(t, poly)
}

func TestNewHistogram(t *testing.T) {
	assert.Nil(t, newHistogram(nil))

	h := newHistogram([]schema.HistogramBin{{Low: 0, High: 2, Count: 3}, {Low: 2, High: 4, Count: 1}})
	require.NotNil(t, h)
	assert.Equal(t, 2.0, h.Width)
	assert.Equal(t, 3.0, h.Bins[0].Weight)
	assert.Equal(t, 4.0, h.Bins[1].Max)
}
