// Package algo has the numeric routines of epigrowth: growth estimation, ranking and summaries.
package algo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/epigrowth/schema"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by Estimate. Callers match them with errors.Is.
var (
	ErrInsufficientData = errors.New("insufficient data for regression")
	ErrDomain           = errors.New("cumulative count must be positive")
	ErrDegenerateInput  = errors.New("elapsed days have zero variance")
)

// MinObservations is the fewest points a simple linear regression can be fit to.
const MinObservations = 2

const secondsPerDay = 24 * 60 * 60

// ElapsedDays returns the whole calendar days from reference to date.
// The result is negative when date precedes reference. Unix seconds are used
// instead of time.Duration, which saturates past about 292 years.
func ElapsedDays(date, reference time.Time) float64 {
	return float64((civilDate(date).Unix() - civilDate(reference).Unix()) / secondsPerDay)
}

// civilDate drops the clock and zone so that day differences are exact.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Estimate fits ln(count) = a + b*x by ordinary least squares, where x is the
// number of days elapsed since reference, and returns {Intercept: a, Rate: b}.
func Estimate(series schema.Series, reference time.Time) (schema.GrowthEstimate, error) {
	if len(series) < MinObservations {
		return schema.GrowthEstimate{}, fmt.Errorf("%w: got %d observations, need %d", ErrInsufficientData, len(series), MinObservations)
	}

	x := make([]float64, len(series))
	y := make([]float64, len(series))
	for i, obs := range series {
		if obs.Count <= 0 {
			return schema.GrowthEstimate{}, fmt.Errorf("%w: count %d on %s", ErrDomain, obs.Count, obs.Date.Format(time.DateOnly))
		}
		x[i] = ElapsedDays(obs.Date, reference)
		y[i] = math.Log(float64(obs.Count))
	}

	if !hasSpread(x) {
		return schema.GrowthEstimate{}, fmt.Errorf("%w: all %d observations fall on day %g", ErrDegenerateInput, len(x), x[0])
	}

	intercept, rate := stat.LinearRegression(x, y, nil, false)
	return schema.GrowthEstimate{Intercept: intercept, Rate: rate}, nil
}

// hasSpread reports whether x holds at least two distinct values.
func hasSpread(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return true
		}
	}
	return false
}
