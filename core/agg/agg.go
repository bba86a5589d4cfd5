// Package agg has aggregation logic for daily county case records.
package agg

import (
	"sort"
	"time"

	"github.com/huangsam/epigrowth/schema"
)

// BuildPanel groups case records into one cumulative series per county.
// Records are ordered by state, county and date before grouping. When
// cumulativeInput is false the cases column holds daily counts and a running
// sum is taken; otherwise the values are already cumulative and used as-is.
// Records without a FIPS code are skipped since they cannot be joined.
func BuildPanel(records []schema.CaseRecord, cumulativeInput bool) *schema.Panel {
	sorted := sortedRecords(records)

	panel := &schema.Panel{
		Series: make(map[schema.CountyKey]schema.Series),
		Totals: make(map[string]int64),
	}
	running := make(map[schema.CountyKey]int64)

	for _, r := range sorted {
		if r.FIPS == "" {
			continue
		}
		key := schema.CountyKey{State: r.State, County: r.County, FIPS: r.FIPS}
		if _, seen := panel.Series[key]; !seen {
			panel.Keys = append(panel.Keys, key)
		}

		count := r.Cases
		if !cumulativeInput {
			running[key] += r.Cases
			count = running[key]
		}
		panel.Series[key] = append(panel.Series[key], schema.Observation{Date: r.Date, Count: count})

		if total, ok := panel.Totals[r.FIPS]; !ok || count > total {
			panel.Totals[r.FIPS] = count
		}
	}

	return panel
}

// TotalCases returns the largest cumulative count seen for each FIPS.
func TotalCases(panel *schema.Panel) map[string]int64 {
	if panel == nil {
		return map[string]int64{}
	}
	if panel.Totals != nil {
		return panel.Totals
	}
	totals := make(map[string]int64, len(panel.Keys))
	for key, series := range panel.Series {
		for _, obs := range series {
			if total, ok := totals[key.FIPS]; !ok || obs.Count > total {
				totals[key.FIPS] = obs.Count
			}
		}
	}
	return totals
}

// NewCasesByDate sums the cases column across all counties for each date and
// returns the national trend in ascending date order.
func NewCasesByDate(records []schema.CaseRecord) *schema.TrendResult {
	byDate := make(map[time.Time]int64)
	for _, r := range records {
		byDate[r.Date] += r.Cases
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	result := &schema.TrendResult{Points: make([]schema.TrendPoint, 0, len(dates))}
	var cumulative int64
	for _, d := range dates {
		cumulative += byDate[d]
		result.Points = append(result.Points, schema.TrendPoint{
			Date:            d,
			NewCases:        byDate[d],
			CumulativeCases: cumulative,
		})
	}
	return result
}

// sortedRecords returns a copy of records ordered by state, county, fips and date.
func sortedRecords(records []schema.CaseRecord) []schema.CaseRecord {
	sorted := make([]schema.CaseRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.State != b.State {
			return a.State < b.State
		}
		if a.County != b.County {
			return a.County < b.County
		}
		if a.FIPS != b.FIPS {
			return a.FIPS < b.FIPS
		}
		return a.Date.Before(b.Date)
	})
	return sorted
}
