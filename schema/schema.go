// Package schema has models and constants shared by all parts of epigrowth.
package schema

import "time"

// Observation is the cumulative case count of one county on one day.
type Observation struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// Series is the ordered observations for a single county, date ascending.
type Series []Observation

// GrowthEstimate is the fit of ln(count) = Intercept + Rate * days.
type GrowthEstimate struct {
	Intercept float64 `json:"intercept"`
	Rate      float64 `json:"rate"`
}

// CountyKey identifies a county in the case panel.
type CountyKey struct {
	State  string `json:"state"`
	County string `json:"county"`
	FIPS   string `json:"fips"`
}

// CaseRecord is one row of the daily county case file.
type CaseRecord struct {
	Date   time.Time
	County string
	State  string
	FIPS   string
	Cases  int64
	Deaths int64
}

// PopulationRecord is the population estimate of one county.
type PopulationRecord struct {
	FIPS       string
	Population int64
}

// Point is a planar coordinate (longitude, latitude).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CountyShape holds the boundary and land metrics of one county.
type CountyShape struct {
	FIPS      string
	LandArea  float64   // ALAND in square meters
	WaterArea float64   // AWATER in square meters
	Area      float64   // LandArea - WaterArea, or 0 when water dominates
	Rings     [][]Point // Polygon rings in source order
}

// Panel is the per-county cumulative series built from raw case records.
type Panel struct {
	Keys   []CountyKey          // Sorted by state, county, fips
	Series map[CountyKey]Series // Cumulative series per county
	Totals map[string]int64     // Max cumulative count per FIPS
}

// EstimateFailures tallies the counties that could not be estimated.
type EstimateFailures struct {
	Domain       int `json:"domain"`
	Insufficient int `json:"insufficient"`
	Degenerate   int `json:"degenerate"`
	BelowMinimum int `json:"below_minimum"`
}

// Total returns the number of counties skipped for any reason.
func (f EstimateFailures) Total() int {
	return f.Domain + f.Insufficient + f.Degenerate + f.BelowMinimum
}

// CountyEstimate is the growth estimate of a county before any join.
type CountyEstimate struct {
	CountyKey
	GrowthEstimate
	Observations int `json:"observations"`
}

// CountyRate is the joined row of growth, population and geography for one county.
type CountyRate struct {
	CountyKey
	GrowthEstimate
	Observations int     `json:"observations"`
	TotalCases   int64   `json:"total_cases"`
	Population   int64   `json:"population"`
	Area         float64 `json:"area"`    // Square meters, 0 when unknown
	Density      float64 `json:"density"` // People per square meter, 0 when area is unknown
}

// HasDensity reports whether the county has a usable density value.
func (c CountyRate) HasDensity() bool {
	return c.Area > 0 && c.Density > 0
}

// GrowthOutput is the result of the full load, estimate, join and filter pipeline.
type GrowthOutput struct {
	Rates    []CountyRate           `json:"rates"`
	Shapes   map[string]CountyShape `json:"-"`
	Failures EstimateFailures       `json:"failures"`
}
