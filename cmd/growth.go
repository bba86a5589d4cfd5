package cmd

import (
	"github.com/huangsam/epigrowth/core"
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/spf13/cobra"
)

// runExecutor runs an executor against the global config and cache manager.
func runExecutor(name string, executor core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := executor(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run "+name+" analysis", err)
		}
	}
}

// ratesCmd ranks counties by growth rate.
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Rank counties by the exponential growth rate of cumulative cases",
	Long: `Fit ln(cumulative cases) against days since the reference date for every county
and rank the counties by the fitted rate.

Each row shows the rate, its doubling time and a growth label:
- Explosive: doubling in under 3 days
- Fast:      doubling in under 7 days
- Moderate:  doubling in under 14 days
- Slow:      anything slower, including flat or shrinking series

Counties with too few observations, non-positive counts or a single distinct day
are skipped and tallied in the footer.

Examples:
  # Top 25 counties by growth rate
  epigrowth rates --cases-file us-counties.csv --population-file co-est2019-alldata.csv

  # Include density and restrict to two states
  epigrowth rates --cases-file us-counties.csv --population-file co-est2019-alldata.csv \
    --shapes-file cb_2018_us_county_500k.shp --state "New York,New Jersey"

  # Export every county to Parquet
  epigrowth rates --cases-file us-counties.csv --population-file co-est2019-alldata.csv \
    --limit 5000 --output parquet --output-file rates.parquet`,
	PreRunE: sharedSetup,
	Run:     runExecutor("rates", core.ExecuteRates),
}

// densityCmd relates growth rates to population density.
var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Relate county growth rates to population density",
	Long: `Summarize how growth rate moves with population density.

Among counties with a positive density and rate, reports:
- Pearson correlation of log density and log rate
- Least squares fit of log rate on log density
- Median growth rate
- Histograms of log density and log rate

Density needs land areas, so pass --shapes-file.

Examples:
  epigrowth density --cases-file us-counties.csv --population-file co-est2019-alldata.csv \
    --shapes-file cb_2018_us_county_500k.shp --bins 20`,
	PreRunE: sharedSetup,
	Run:     runExecutor("density", core.ExecuteDensity),
}

// trendCmd shows the daily case trend.
var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show new and cumulative cases per day",
	Long: `Sum the cases column across counties for every day in the cases file.

Only --cases-file is needed. Use --state to narrow the trend to some states.

Examples:
  epigrowth trend --cases-file us-counties.csv
  epigrowth trend --cases-file us-counties.csv --state Washington --output csv`,
	PreRunE: trendSetup,
	Run:     runExecutor("trend", core.ExecuteTrend),
}

// plotCmd renders charts to image files.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render growth rate charts to PNG or SVG files",
	Long: `Render one chart or all of them into --output-dir.

Charts:
- density-hist: histogram of log population density
- rate-hist:    histogram of log growth rate
- scatter:      log density against log rate, colored by state
- map:          counties filled by growth rate (needs --shapes-file)
- states:       a grid of randomly picked states (needs --shapes-file)
- trend:        new cases per day

Examples:
  # Everything as PNG into ./plots
  epigrowth plot --cases-file us-counties.csv --population-file co-est2019-alldata.csv \
    --shapes-file cb_2018_us_county_500k.shp

  # A 4x2 state grid as SVG with another seed
  epigrowth plot --chart states --grid 4x2 --seed 7 --format svg \
    --cases-file us-counties.csv --population-file co-est2019-alldata.csv \
    --shapes-file cb_2018_us_county_500k.shp`,
	PreRunE: sharedSetup,
	Run:     runExecutor("plot", core.ExecutePlot),
}
