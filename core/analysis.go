package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/epigrowth/core/agg"
	"github.com/huangsam/epigrowth/core/algo"
	"github.com/huangsam/epigrowth/internal"
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
)

// ErrDuplicateFIPS is returned when two counties of the panel share a FIPS code.
var ErrDuplicateFIPS = errors.New("duplicate FIPS code")

// ErrNoCounties is returned when nothing is left after joining and filtering.
var ErrNoCounties = errors.New("no counties left after join and filters")

// runGrowthAnalysis performs the load, estimate, join and filter steps shared by all commands.
func runGrowthAnalysis(ctx context.Context, cfg *contract.Config, src contract.DataSource, mgr contract.CacheManager) (*schema.GrowthOutput, error) {
	if !shouldSuppressHeader(ctx) {
		internal.LogAnalysisHeader(cfg)
	}

	// --- 0. Begin Analysis Tracking (if configured) ---
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		analysisStore = mgr.GetAnalysisStore()
	}
	if analysisStore != nil {
		analysisID, err := analysisStore.BeginAnalysis(uuid.NewString(), time.Now(), trackingParams(cfg))
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if analysisID > 0 {
			ctx = withAnalysisID(ctx, analysisID)
		}
	}

	// --- 1. Estimation Phase (with caching) ---
	set, err := cachedEstimates(ctx, cfg, src, mgr)
	if err != nil {
		return nil, err
	}
	if set.Failures.Total() > 0 {
		logFailures(set.Failures)
	}

	// --- 2. Join Phase ---
	population, err := src.LoadPopulation(ctx, cfg.PopulationFile)
	if err != nil {
		return nil, err
	}
	var shapes map[string]schema.CountyShape
	if cfg.ShapesFile != "" {
		if shapes, err = src.LoadShapes(ctx, cfg.ShapesFile); err != nil {
			return nil, err
		}
	}
	joined := JoinCounties(set.Estimates, population, set.Totals, shapes)

	// --- 3. Filter Phase ---
	rates := FilterCounties(cfg, joined)

	// --- 4. End Analysis Tracking ---
	if analysisID, ok := getAnalysisID(ctx); ok && analysisStore != nil {
		recordCountyRates(analysisStore, analysisID, rates)
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), len(rates)); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}

	if len(rates) == 0 {
		return nil, ErrNoCounties
	}

	return &schema.GrowthOutput{
		Rates:    rates,
		Shapes:   shapes,
		Failures: set.Failures,
	}, nil
}

// computeEstimates loads the cases file and estimates the growth rate of every county.
func computeEstimates(ctx context.Context, cfg *contract.Config, src contract.DataSource) (*estimateSet, error) {
	records, err := src.LoadCases(ctx, cfg.CasesFile)
	if err != nil {
		return nil, err
	}
	panel := agg.BuildPanel(records, cfg.CasesCumulative)

	estimates, failures, err := EstimateRates(ctx, cfg, panel)
	if err != nil {
		return nil, err
	}
	return &estimateSet{
		Estimates: estimates,
		Totals:    agg.TotalCases(panel),
		Failures:  failures,
	}, nil
}

// estimateResult is what a worker reports for one county.
type estimateResult struct {
	estimate schema.CountyEstimate
	err      error
}

// EstimateRates fits the growth rate of every county in the panel using a worker pool.
// It spawns cfg.Workers goroutines, each calling algo.Estimate per county. Counties that
// cannot be estimated are tallied by kind instead of failing the run.
func EstimateRates(ctx context.Context, cfg *contract.Config, panel *schema.Panel) (map[string]schema.CountyEstimate, schema.EstimateFailures, error) {
	var failures schema.EstimateFailures

	keyCh := make(chan schema.CountyKey, len(panel.Keys))
	resultCh := make(chan estimateResult, len(panel.Keys))
	var wg sync.WaitGroup

	workers := max(cfg.Workers, 1)
	for range workers {
		wg.Go(func() {
			for key := range keyCh {
				if ctx.Err() != nil {
					continue // Drain remaining keys
				}
				resultCh <- estimateCounty(cfg, key, panel.Series[key])
			}
		})
	}

	for _, key := range panel.Keys {
		keyCh <- key
	}
	close(keyCh)

	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, failures, err
	}

	estimates := make(map[string]schema.CountyEstimate, len(panel.Keys))
	for r := range resultCh {
		switch {
		case r.err == nil:
		case errors.Is(r.err, algo.ErrDomain):
			failures.Domain++
			continue
		case errors.Is(r.err, algo.ErrInsufficientData):
			failures.Insufficient++
			continue
		case errors.Is(r.err, algo.ErrDegenerateInput):
			failures.Degenerate++
			continue
		case errors.Is(r.err, errBelowMinimum):
			failures.BelowMinimum++
			continue
		default:
			return nil, failures, r.err
		}

		fips := r.estimate.FIPS
		if prev, dup := estimates[fips]; dup {
			return nil, failures, fmt.Errorf("%w %s: %s, %s and %s, %s", ErrDuplicateFIPS, fips,
				prev.County, prev.State, r.estimate.County, r.estimate.State)
		}
		estimates[fips] = r.estimate
	}
	return estimates, failures, nil
}

// errBelowMinimum marks a county with fewer observations than min-observations.
var errBelowMinimum = errors.New("fewer observations than the configured minimum")

// estimateCounty runs the estimator for a single county.
func estimateCounty(cfg *contract.Config, key schema.CountyKey, series schema.Series) estimateResult {
	n := len(series)
	if n >= algo.MinObservations && n < cfg.MinObservations {
		return estimateResult{err: fmt.Errorf("%s: %w", key.FIPS, errBelowMinimum)}
	}

	est, err := algo.Estimate(series, cfg.ReferenceDate)
	if err != nil {
		return estimateResult{err: fmt.Errorf("%s: %w", key.FIPS, err)}
	}
	return estimateResult{estimate: schema.CountyEstimate{
		CountyKey:      key,
		GrowthEstimate: est,
		Observations:   n,
	}}
}

// logFailures reports skipped counties as a single warning line.
func logFailures(f schema.EstimateFailures) {
	contract.LogWarn("Skipped counties during estimation",
		fmt.Errorf("%d total (non-positive counts: %d, too few points: %d, same-day points: %d, below min-observations: %d)",
			f.Total(), f.Domain, f.Insufficient, f.Degenerate, f.BelowMinimum))
}

// trackingParams returns the configuration recorded with a tracked run.
func trackingParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"cases_file":       cfg.CasesFile,
		"population_file":  cfg.PopulationFile,
		"shapes_file":      cfg.ShapesFile,
		"reference_date":   cfg.ReferenceDate.Format(contract.DateFormat),
		"min_observations": cfg.MinObservations,
		"min_total_cases":  cfg.MinTotalCases,
		"exclude_states":   cfg.ExcludeStates,
		"states":           cfg.States,
		"cases_cumulative": cfg.CasesCumulative,
		"workers":          cfg.Workers,
	}
}

// recordCountyRates stores the rates of a tracked run without disrupting analysis.
func recordCountyRates(store contract.AnalysisStore, analysisID int64, rates []schema.CountyRate) {
	now := time.Now()
	records := make([]schema.CountyRateRecord, len(rates))
	for i, r := range rates {
		var density *float64
		if r.HasDensity() {
			d := r.Density
			density = &d
		}
		records[i] = schema.CountyRateRecord{
			AnalysisID:   analysisID,
			FIPS:         r.FIPS,
			State:        r.State,
			County:       r.County,
			AnalysisTime: now,
			Rate:         r.Rate,
			Intercept:    r.Intercept,
			Observations: int32(r.Observations),
			TotalCases:   r.TotalCases,
			Population:   r.Population,
			Density:      density,
			GrowthLabel:  string(schema.GetGrowthLabel(r.Rate)),
		}
	}
	if err := store.RecordCountyRates(analysisID, records); err != nil {
		contract.LogWarn("Analysis tracking failed for RecordCountyRates", err)
	}
}

// sortByFIPS orders rates by FIPS code.
func sortByFIPS(rates []schema.CountyRate) {
	sort.Slice(rates, func(i, j int) bool { return rates[i].FIPS < rates[j].FIPS })
}
