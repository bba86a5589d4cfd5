package schema

import "math"

// EnrichedCountyRate adds presentation data to a CountyRate.
type EnrichedCountyRate struct {
	Rank         int         `json:"rank"`
	Label        GrowthLabel `json:"label"`
	DoublingDays float64     `json:"doubling_days"`
	CountyRate
}

// DoublingDays returns ln(2)/rate, or 0 when the rate is not positive.
func DoublingDays(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return math.Ln2 / rate
}

// GetGrowthLabel classifies a growth rate by the number of days cases take to double.
func GetGrowthLabel(rate float64) GrowthLabel {
	days := DoublingDays(rate)
	switch {
	case rate <= 0:
		return SlowGrowth
	case days < 3:
		return ExplosiveGrowth
	case days < 7:
		return FastGrowth
	case days < 14:
		return ModerateGrowth
	default:
		return SlowGrowth
	}
}

// EnrichRates adds rank, label and doubling time to a list of county rates.
func EnrichRates(rates []CountyRate) []EnrichedCountyRate {
	output := make([]EnrichedCountyRate, len(rates))
	for i, r := range rates {
		output[i] = EnrichedCountyRate{
			Rank:         i + 1,
			Label:        GetGrowthLabel(r.Rate),
			DoublingDays: DoublingDays(r.Rate),
			CountyRate:   r,
		}
	}
	return output
}
