package algo

import (
	"sort"

	"github.com/huangsam/epigrowth/schema"
)

// RankRates sorts counties by growth rate in descending order and returns
// the top 'limit' counties. Ties are broken by FIPS so output is stable.
// If limit is not positive or exceeds the number of counties, all are returned.
func RankRates(rates []schema.CountyRate, limit int) []schema.CountyRate {
	sort.SliceStable(rates, func(i, j int) bool {
		if rates[i].Rate != rates[j].Rate {
			return rates[i].Rate > rates[j].Rate
		}
		return rates[i].FIPS < rates[j].FIPS
	})
	if limit > 0 && len(rates) > limit {
		return rates[:limit]
	}
	return rates
}
