package schema

import "time"

// TrendPoint is the national case total for one day.
type TrendPoint struct {
	Date            time.Time `json:"date"`
	NewCases        int64     `json:"new_cases"`
	CumulativeCases int64     `json:"cumulative_cases"`
}

// TrendResult holds the national daily case trend.
type TrendResult struct {
	Points []TrendPoint `json:"points"`
}
