package algo

import (
	"math"
	"sort"

	"github.com/huangsam/epigrowth/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the histogram resolution used for density and rate plots.
const DefaultBins = 30

// LogDensityAndRate returns paired ln(density) and ln(rate) for counties where
// both are defined, along with the states of those counties.
func LogDensityAndRate(rates []schema.CountyRate) (logDensity, logRate []float64, states []string) {
	for _, r := range rates {
		if !r.HasDensity() || r.Rate <= 0 {
			continue
		}
		logDensity = append(logDensity, math.Log(r.Density))
		logRate = append(logRate, math.Log(r.Rate))
		states = append(states, r.State)
	}
	return logDensity, logRate, states
}

// Summarize relates log population density to log growth rate across counties.
func Summarize(rates []schema.CountyRate, bins int) schema.DensitySummary {
	if bins < 1 {
		bins = DefaultBins
	}
	logDensity, logRate, _ := LogDensityAndRate(rates)

	summary := schema.DensitySummary{
		Counties:    len(rates),
		Used:        len(logDensity),
		DensityHist: Histogram(logDensity, bins),
		RateHist:    Histogram(logRate, bins),
	}
	if summary.Used == 0 {
		return summary
	}

	positive := make([]float64, len(logRate))
	for i, lr := range logRate {
		positive[i] = math.Exp(lr)
	}
	sort.Float64s(positive)
	summary.MedianRate = stat.Quantile(0.5, stat.Empirical, positive, nil)

	if summary.Used < MinObservations || !hasSpread(logDensity) {
		return summary
	}
	alpha, beta := stat.LinearRegression(logDensity, logRate, nil, false)
	summary.Intercept = alpha
	summary.Slope = beta
	summary.RSquared = finiteOrZero(stat.RSquared(logDensity, logRate, nil, alpha, beta))
	summary.Correlation = finiteOrZero(stat.Correlation(logDensity, logRate, nil))
	return summary
}

// Histogram counts values into equal-width bins spanning their range.
// The last bin is closed so the maximum value is counted.
func Histogram(values []float64, bins int) []schema.HistogramBin {
	if len(values) == 0 || bins < 1 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	nominalHigh := dividers[bins]
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]schema.HistogramBin, bins)
	for i := range bins {
		high := dividers[i+1]
		if i == bins-1 {
			high = nominalHigh
		}
		out[i] = schema.HistogramBin{Low: dividers[i], High: high, Count: int(counts[i])}
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
