package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// ChartKind represents one of the charts the plot command can render.
	ChartKind string

	// GrowthLabel classifies a growth rate by its doubling time.
	GrowthLabel string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// All charts supported.
const (
	DensityHistChart ChartKind = "density-hist"
	RateHistChart    ChartKind = "rate-hist"
	ScatterChart     ChartKind = "scatter"
	MapChart         ChartKind = "map"
	StatesChart      ChartKind = "states"
	TrendChart       ChartKind = "trend"
	AllCharts        ChartKind = "all" // default
)

// All growth labels, fastest first.
const (
	ExplosiveGrowth GrowthLabel = "Explosive"
	FastGrowth      GrowthLabel = "Fast"
	ModerateGrowth  GrowthLabel = "Moderate"
	SlowGrowth      GrowthLabel = "Slow"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAnalysisBackends lists all valid analysis tracking backends.
var ValidAnalysisBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllChartKinds lists every individual chart in render order.
var AllChartKinds = []ChartKind{
	DensityHistChart,
	RateHistChart,
	ScatterChart,
	MapChart,
	StatesChart,
	TrendChart,
}

// ValidChartKinds lists all valid values for the chart flag.
var ValidChartKinds = map[ChartKind]struct{}{
	DensityHistChart: {},
	RateHistChart:    {},
	ScatterChart:     {},
	MapChart:         {},
	StatesChart:      {},
	TrendChart:       {},
	AllCharts:        {},
}
