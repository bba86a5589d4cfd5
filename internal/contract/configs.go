package contract

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/epigrowth/schema"
)

// Default values for configuration.
const (
	DefaultReferenceDate   = "2020-03-08"
	DefaultMinObservations = 2
	DefaultMinTotalCases   = 1
	DefaultExcludeStates   = "Alaska,Hawaii"
	DefaultResultLimit     = 25
	MaxResultLimit         = 5000
	DefaultPrecision       = 4
	MaxPrecision           = 8
	DefaultBins            = 30
	DefaultSeed            = 3
	DefaultGrid            = "6x3"
	DefaultPlotWidth       = 8.0 // inches
	DefaultPlotHeight      = 6.0 // inches
	DefaultOutputDir       = "plots"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormat is the layout of every date in inputs and flags.
const DateFormat = time.DateOnly

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// PlotConfig holds the settings of the plot command.
type PlotConfig struct {
	Chart     schema.ChartKind
	OutputDir string
	Format    string // png or svg
	Bins      int
	Seed      int64
	GridRows  int
	GridCols  int
	Width     float64 // inches
	Height    float64 // inches
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	CasesFile      string
	PopulationFile string
	ShapesFile     string

	ReferenceDate   time.Time
	MinObservations int
	MinTotalCases   int64
	ExcludeStates   []string
	States          []string // Keep only these states when non-empty
	CasesCumulative bool

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	Plot PlotConfig

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	CasesFile         string `mapstructure:"cases-file"`
	PopulationFile    string `mapstructure:"population-file"`
	ShapesFile        string `mapstructure:"shapes-file"`
	ReferenceDate     string `mapstructure:"reference-date"`
	MinObservations   int    `mapstructure:"min-observations"`
	MinTotalCases     int64  `mapstructure:"min-total-cases"`
	ExcludeStates     string `mapstructure:"exclude-states"`
	State             string `mapstructure:"state"`
	CasesCumulative   bool   `mapstructure:"cases-cumulative"`
	Limit             int    `mapstructure:"limit"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Workers           int    `mapstructure:"workers"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`

	// --- Fields from plotCmd.Flags() ---
	Chart      string  `mapstructure:"chart"`
	OutputDir  string  `mapstructure:"output-dir"`
	Format     string  `mapstructure:"format"`
	Bins       int     `mapstructure:"bins"`
	Seed       int64   `mapstructure:"seed"`
	Grid       string  `mapstructure:"grid"`
	PlotWidth  float64 `mapstructure:"plot-width"`
	PlotHeight float64 `mapstructure:"plot-height"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ExcludeStates = slices.Clone(c.ExcludeStates)
	clone.States = slices.Clone(c.States)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	return processAndValidate(cfg, input, true)
}

// ProcessAndValidateService is ProcessAndValidate for long-running servers.
// Input files are optional since callers may supply them per request.
func ProcessAndValidateService(cfg *Config, input *ConfigRawInput) error {
	return processAndValidate(cfg, input, false)
}

func processAndValidate(cfg *Config, input *ConfigRawInput, requireInputs bool) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEstimation(cfg, input); err != nil {
		return err
	}
	if err := processInputFiles(cfg, input, requireInputs); err != nil {
		return err
	}
	if err := processPlotConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidAnalysisBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Cache and analysis must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return validateBackendConfigs(cfg, input)
}

// processEstimation handles the reference date, thresholds and state filters.
func processEstimation(cfg *Config, input *ConfigRawInput) error {
	refStr := strings.TrimSpace(input.ReferenceDate)
	if refStr == "" {
		refStr = DefaultReferenceDate
	}
	ref, err := ParseDate(refStr)
	if err != nil {
		return fmt.Errorf("invalid reference date '%s': %w", input.ReferenceDate, err)
	}
	cfg.ReferenceDate = ref

	if input.MinObservations < DefaultMinObservations {
		return fmt.Errorf("min-observations must be at least %d (received %d)", DefaultMinObservations, input.MinObservations)
	}
	cfg.MinObservations = input.MinObservations

	if input.MinTotalCases < 0 {
		return fmt.Errorf("min-total-cases cannot be negative (received %d)", input.MinTotalCases)
	}
	cfg.MinTotalCases = input.MinTotalCases

	cfg.ExcludeStates = ParseList(input.ExcludeStates)
	cfg.States = ParseList(input.State)
	for _, s := range cfg.States {
		if ContainsFold(cfg.ExcludeStates, s) {
			return fmt.Errorf("state '%s' is both selected and excluded", s)
		}
	}
	cfg.CasesCumulative = input.CasesCumulative
	return nil
}

// processInputFiles checks that the case and population files are present.
// The shapes file is optional.
func processInputFiles(cfg *Config, input *ConfigRawInput, required bool) error {
	cfg.CasesFile = strings.TrimSpace(input.CasesFile)
	cfg.PopulationFile = strings.TrimSpace(input.PopulationFile)
	cfg.ShapesFile = strings.TrimSpace(input.ShapesFile)

	if required && cfg.CasesFile == "" {
		return fmt.Errorf("--cases-file is required")
	}
	if required && cfg.PopulationFile == "" {
		return fmt.Errorf("--population-file is required")
	}
	for _, path := range []string{cfg.CasesFile, cfg.PopulationFile, cfg.ShapesFile} {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read input file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("input path %s is a directory", path)
		}
	}
	return nil
}

// processPlotConfig handles the plot command parameters. Zero values fall back to defaults.
func processPlotConfig(cfg *Config, input *ConfigRawInput) error {
	plot := PlotConfig{
		Chart:     schema.ChartKind(strings.ToLower(strings.TrimSpace(input.Chart))),
		OutputDir: input.OutputDir,
		Format:    strings.ToLower(strings.TrimSpace(input.Format)),
		Bins:      input.Bins,
		Seed:      input.Seed,
		Width:     input.PlotWidth,
		Height:    input.PlotHeight,
	}
	if plot.Chart == "" {
		plot.Chart = schema.AllCharts
	}
	if _, ok := schema.ValidChartKinds[plot.Chart]; !ok {
		return fmt.Errorf("invalid chart '%s'. must be one of density-hist, rate-hist, scatter, map, states, trend, all", input.Chart)
	}
	if plot.OutputDir == "" {
		plot.OutputDir = DefaultOutputDir
	}
	switch plot.Format {
	case "":
		plot.Format = "png"
	case "png", "svg":
	default:
		return fmt.Errorf("invalid plot format '%s'. must be png or svg", input.Format)
	}
	if plot.Bins == 0 {
		plot.Bins = DefaultBins
	}
	if plot.Bins < 1 {
		return fmt.Errorf("bins must be greater than 0 (received %d)", input.Bins)
	}
	if plot.Width == 0 {
		plot.Width = DefaultPlotWidth
	}
	if plot.Height == 0 {
		plot.Height = DefaultPlotHeight
	}
	if plot.Width < 0 || plot.Height < 0 {
		return fmt.Errorf("plot dimensions must be positive (received %gx%g)", plot.Width, plot.Height)
	}

	grid := input.Grid
	if grid == "" {
		grid = DefaultGrid
	}
	rows, cols, err := ParseGrid(grid)
	if err != nil {
		return err
	}
	plot.GridRows, plot.GridCols = rows, cols

	cfg.Plot = plot
	return nil
}

// ParseGrid parses a "ROWSxCOLS" string such as "6x3".
func ParseGrid(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid grid '%s', expected ROWSxCOLS", s)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid rows in '%s': %w", s, err)
	}
	cols, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid columns in '%s': %w", s, err)
	}
	if rows < 1 || cols < 1 {
		return 0, 0, fmt.Errorf("grid dimensions must be positive (received %dx%d)", rows, cols)
	}
	return rows, cols, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
