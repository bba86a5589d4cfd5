package schema

// HistogramBin is one bucket of a histogram over [Low, High).
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// DensitySummary relates log population density to log growth rate.
type DensitySummary struct {
	Counties    int            `json:"counties"`     // Counties in the joined table
	Used        int            `json:"used"`         // Counties with positive density and rate
	Correlation float64        `json:"correlation"`  // Pearson correlation of log density and log rate
	Intercept   float64        `json:"intercept"`    // OLS intercept of log rate on log density
	Slope       float64        `json:"slope"`        // OLS slope of log rate on log density
	RSquared    float64        `json:"r_squared"`    // Coefficient of determination of the fit
	MedianRate  float64        `json:"median_rate"`  // Median growth rate of used counties
	DensityHist []HistogramBin `json:"density_hist"` // Histogram of log density
	RateHist    []HistogramBin `json:"rate_hist"`    // Histogram of log rate
}
