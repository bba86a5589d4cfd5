// Package cmd defines the command-line interface for epigrowth.
package cmd

import (
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(densityCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("cases-file", "", "Path to the daily county cases CSV (date,county,state,fips,cases,deaths)")
	rootCmd.PersistentFlags().String("population-file", "", "Path to the census county population estimates CSV")
	rootCmd.PersistentFlags().String("shapes-file", "", "Optional path to the county boundary shapefile (.shp)")
	rootCmd.PersistentFlags().String("reference-date", contract.DefaultReferenceDate, "Day zero of the regression in YYYY-MM-DD")
	rootCmd.PersistentFlags().Int("min-observations", contract.DefaultMinObservations, "Minimum observations a county needs to be estimated")
	rootCmd.PersistentFlags().Int64("min-total-cases", contract.DefaultMinTotalCases, "Keep counties whose total cases exceed this value")
	rootCmd.PersistentFlags().String("exclude-states", contract.DefaultExcludeStates, "Comma-separated list of states to drop")
	rootCmd.PersistentFlags().String("state", "", "Comma-separated list of states to keep")
	rootCmd.PersistentFlags().Bool("cases-cumulative", false, "Treat the cases column as cumulative instead of daily")
	rootCmd.PersistentFlags().Int("bins", contract.DefaultBins, "Number of histogram bins for density and plots")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for mysql/postgresql/redis (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of plotCmd to Viper
	plotCmd.Flags().String("chart", string(schema.AllCharts), "Chart to render: density-hist, rate-hist, scatter, map, states, trend or all")
	plotCmd.Flags().String("output-dir", contract.DefaultOutputDir, "Directory the charts are written to")
	plotCmd.Flags().String("format", "png", "Image format: png or svg")
	plotCmd.Flags().Int64("seed", contract.DefaultSeed, "Seed for picking the states of the state grid")
	plotCmd.Flags().String("grid", contract.DefaultGrid, "Rows x columns of the state grid")
	plotCmd.Flags().Float64("plot-width", contract.DefaultPlotWidth, "Chart width in inches")
	plotCmd.Flags().Float64("plot-height", contract.DefaultPlotHeight, "Chart height in inches")
	if err := viper.BindPFlags(plotCmd.Flags()); err != nil {
		contract.LogFatal("Error binding plot flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
