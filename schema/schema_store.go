package schema

import "time"

// AnalysisRunRecord represents a row from the epigrowth_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID            int64
	RunUUID               string
	StartTime             time.Time
	EndTime               *time.Time
	RunDurationMs         *int32
	TotalCountiesAnalyzed int32
	ConfigParams          *string
}

// CountyRateRecord represents a row from the epigrowth_county_rates table.
type CountyRateRecord struct {
	AnalysisID   int64
	FIPS         string
	State        string
	County       string
	AnalysisTime time.Time
	Rate         float64
	Intercept    float64
	Observations int32
	TotalCases   int64
	Population   int64
	Density      *float64
	GrowthLabel  string
}
