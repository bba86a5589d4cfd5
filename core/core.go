// Package core has the orchestration logic for loading, estimating, joining and ranking county growth rates.
package core

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/epigrowth/core/agg"
	"github.com/huangsam/epigrowth/core/algo"
	"github.com/huangsam/epigrowth/internal"
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/internal/dataio"
	"github.com/huangsam/epigrowth/internal/outwriter"
	"github.com/huangsam/epigrowth/internal/plot"
	"github.com/huangsam/epigrowth/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteRates ranks counties by growth rate and prints results.
// It serves as the main entry point for the 'rates' command.
func ExecuteRates(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ranked, output, err := GetRatesResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintRatesResults(ranked, output.Failures, cfg, time.Since(start))
}

// ExecuteDensity relates growth rate to population density and prints the summary.
func ExecuteDensity(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	summary, err := GetDensityResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintDensityResults(summary, cfg, time.Since(start))
}

// ExecuteTrend prints national new cases by date.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	start := time.Now()
	trend, err := GetTrendResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintTrendResults(trend, cfg, time.Since(start))
}

// ExecutePlot renders the selected charts into the plot output directory.
func ExecutePlot(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	src := dataio.NewLocalDataSource()

	data, err := buildPlotData(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	files, err := plot.RenderCharts(cfg.Plot, data)
	if err != nil {
		return err
	}
	return outwriter.PrintPlotFiles(files, cfg, time.Since(start))
}

// GetRatesResults returns counties ranked by growth rate along with the full analysis output.
func GetRatesResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.CountyRate, *schema.GrowthOutput, error) {
	output, err := runGrowthAnalysis(ctx, cfg, dataio.NewLocalDataSource(), mgr)
	if err != nil {
		return nil, nil, err
	}
	return algo.RankRates(output.Rates, cfg.ResultLimit), output, nil
}

// GetDensityResults returns the density and growth rate summary.
func GetDensityResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.DensitySummary, error) {
	output, err := runGrowthAnalysis(ctx, cfg, dataio.NewLocalDataSource(), mgr)
	if err != nil {
		return schema.DensitySummary{}, err
	}
	return algo.Summarize(output.Rates, cfg.Plot.Bins), nil
}

// GetTrendResults returns the national case trend.
func GetTrendResults(ctx context.Context, cfg *contract.Config) (*schema.TrendResult, error) {
	return buildTrend(ctx, cfg, dataio.NewLocalDataSource())
}

// buildTrend loads the cases file and sums cases per date. An explicit state
// selection narrows the trend; exclusions only apply to county rates.
func buildTrend(ctx context.Context, cfg *contract.Config, src contract.DataSource) (*schema.TrendResult, error) {
	if !shouldSuppressHeader(ctx) {
		internal.LogTrendHeader(cfg)
	}
	records, err := src.LoadCases(ctx, cfg.CasesFile)
	if err != nil {
		return nil, err
	}
	if len(cfg.States) > 0 {
		records = slices.DeleteFunc(records, func(r schema.CaseRecord) bool {
			return !contract.ContainsFold(cfg.States, r.State)
		})
	}
	trend := agg.NewCasesByDate(records)
	if len(trend.Points) == 0 {
		return nil, fmt.Errorf("no case records in %s", cfg.CasesFile)
	}
	return trend, nil
}

// buildPlotData gathers only the inputs the selected charts need.
func buildPlotData(ctx context.Context, cfg *contract.Config, src contract.DataSource, mgr contract.CacheManager) (plot.Data, error) {
	var data plot.Data
	charts := plot.SelectedCharts(cfg.Plot.Chart)

	if slices.ContainsFunc(charts, plot.NeedsRates) {
		output, err := runGrowthAnalysis(ctx, cfg, src, mgr)
		if err != nil {
			return data, err
		}
		data.Rates = output.Rates
		data.Shapes = output.Shapes
		data.Summary = algo.Summarize(output.Rates, cfg.Plot.Bins)
	}
	if slices.Contains(charts, schema.TrendChart) {
		trend, err := buildTrend(WithSuppressHeader(ctx), cfg, src)
		if err != nil {
			return data, err
		}
		data.Trend = trend
	}
	return data, nil
}
