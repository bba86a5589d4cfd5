package core

import (
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
)

// JoinCounties inner-joins estimates with population and case totals on FIPS.
// When shapes is non-nil, counties without a shape are dropped as well and the
// area and density come from the shape. The result is ordered by FIPS.
func JoinCounties(estimates map[string]schema.CountyEstimate, population map[string]int64,
	totals map[string]int64, shapes map[string]schema.CountyShape,
) []schema.CountyRate {
	rates := make([]schema.CountyRate, 0, len(estimates))
	for fips, est := range estimates {
		pop, ok := population[fips]
		if !ok {
			continue
		}

		rate := schema.CountyRate{
			CountyKey:      est.CountyKey,
			GrowthEstimate: est.GrowthEstimate,
			Observations:   est.Observations,
			TotalCases:     totals[fips],
			Population:     pop,
		}

		if shapes != nil {
			shape, ok := shapes[fips]
			if !ok {
				continue
			}
			rate.Area = shape.Area
			if shape.Area > 0 {
				rate.Density = float64(pop) / shape.Area
			}
		}
		rates = append(rates, rate)
	}
	sortByFIPS(rates)
	return rates
}

// FilterCounties keeps counties with more than cfg.MinTotalCases cases whose
// state is not excluded and, when cfg.States is set, is one of the selected states.
func FilterCounties(cfg *contract.Config, rates []schema.CountyRate) []schema.CountyRate {
	out := make([]schema.CountyRate, 0, len(rates))
	for _, r := range rates {
		if r.TotalCases <= cfg.MinTotalCases {
			continue
		}
		if contract.ContainsFold(cfg.ExcludeStates, r.State) {
			continue
		}
		if len(cfg.States) > 0 && !contract.ContainsFold(cfg.States, r.State) {
			continue
		}
		out = append(out, r)
	}
	return out
}
