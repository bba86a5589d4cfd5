//go:build basic

package integration

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv keeps the cache and analysis databases inside dir.
func sqliteEnv(dir string) []string {
	return []string{
		"HOME=" + dir,
		"EPIGROWTH_CACHE_BACKEND=sqlite",
		"EPIGROWTH_CACHE_DB_CONNECT=" + filepath.Join(dir, "cache.db"),
		"EPIGROWTH_ANALYSIS_BACKEND=sqlite",
		"EPIGROWTH_ANALYSIS_DB_CONNECT=" + filepath.Join(dir, "analysis.db"),
	}
}

type ratesOutput struct {
	Counties []struct {
		Rank   int     `json:"rank"`
		FIPS   string  `json:"fips"`
		State  string  `json:"state"`
		Rate   float64 `json:"rate"`
		Label  string  `json:"label"`
		Cases  int64   `json:"total_cases"`
		Intcpt float64 `json:"intercept"`
	} `json:"counties"`
	Skipped struct {
		Domain int `json:"domain"`
	} `json:"skipped"`
}

// TestRatesVerification checks the fitted rates against closed form values.
func TestRatesVerification(t *testing.T) {
	f := writeFixture(t)
	env := sqliteEnv(f.Dir)

	args := append([]string{"rates", "--output", "json"}, f.inputArgs()...)
	stdout, err := runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)

	var out ratesOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Counties, 3, "Hawaii is excluded by default")

	king := out.Counties[0]
	assert.Equal(t, "53033", king.FIPS)
	assert.Equal(t, 1, king.Rank)
	assert.Equal(t, int64(16), king.Cases)

	// King cumulative: 1,2,4,8,16 doubles every day
	assert.InDelta(t, math.Ln2, king.Rate, 1e-9)
	assert.InDelta(t, 0.0, king.Intcpt, 1e-9)
	assert.Equal(t, "Explosive", king.Label)

	travis := out.Counties[2]
	assert.Equal(t, "48453", travis.FIPS)
	assert.InDelta(t, 0.0, travis.Rate, 1e-12)
	assert.Equal(t, "Slow", travis.Label)

	// A second run reads the cache and must agree
	stdout2, err := runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)
	var again ratesOutput
	require.NoError(t, json.Unmarshal([]byte(stdout2), &again))
	assert.Equal(t, out, again)
}

// TestTrendAndPlot covers the trend and plot commands.
func TestTrendAndPlot(t *testing.T) {
	f := writeFixture(t)
	env := sqliteEnv(f.Dir)

	stdout, err := runCommand(t, f.Dir, env, "trend", "--cases-file", f.Cases, "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "date,new_cases,cumulative_cases")
	assert.Contains(t, stdout, "2020-03-08,11,11")

	outDir := filepath.Join(f.Dir, "plots")
	args := append([]string{"plot", "--chart", "all", "--output-dir", outDir, "--output", "json"}, f.inputArgs()...)
	_, err = runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)

	for _, name := range []string{"density-hist.png", "rate-hist.png", "scatter.png", "map.png", "states.png", "trend.png"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}

	// Without shapes the map charts are skipped
	bare := filepath.Join(f.Dir, "bare")
	_, err = runCommand(t, f.Dir, env, "plot", "--output-dir", bare,
		"--cases-file", f.Cases, "--population-file", f.Population)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(bare, "trend.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(bare, "map.png"))
	assert.True(t, os.IsNotExist(err), "map needs a shapes file")
}

// TestDensitySummary checks the density command on the shaped fixture.
func TestDensitySummary(t *testing.T) {
	f := writeFixture(t)
	env := sqliteEnv(f.Dir)

	args := append([]string{"density", "--output", "json", "--bins", "5"}, f.inputArgs()...)
	stdout, err := runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)

	var summary struct {
		Counties int `json:"counties"`
		Used     int `json:"used"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 3, summary.Counties)
	assert.Equal(t, 2, summary.Used, "Travis has a zero rate")
}

// TestAnalysisLifecycle runs a tracked analysis and manages its history.
func TestAnalysisLifecycle(t *testing.T) {
	f := writeFixture(t)
	env := sqliteEnv(f.Dir)

	args := append([]string{"rates"}, f.inputArgs()...)
	_, err := runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)

	stdout, err := runCommand(t, f.Dir, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sqlite")

	prefix := filepath.Join(f.Dir, "export")
	_, err = runCommand(t, f.Dir, env, "analysis", "export", "--output-file", prefix)
	require.NoError(t, err)
	_, err = os.Stat(prefix + ".county_rates.parquet")
	require.NoError(t, err)

	_, err = runCommand(t, f.Dir, env, "analysis", "clear")
	require.NoError(t, err)

	stdout, err = runCommand(t, f.Dir, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sqlite")

	_, err = runCommand(t, f.Dir, env, "cache", "clear")
	require.NoError(t, err)
}

// TestInvalidInputs checks that bad flags fail fast.
func TestInvalidInputs(t *testing.T) {
	f := writeFixture(t)
	env := sqliteEnv(f.Dir)

	_, err := runCommand(t, f.Dir, env, "rates", "--population-file", f.Population)
	assert.Error(t, err, "cases file is required")

	args := append([]string{"rates", "--min-observations", "1"}, f.inputArgs()...)
	_, err = runCommand(t, f.Dir, env, args...)
	assert.Error(t, err)

	args = append([]string{"plot", "--format", "gif"}, f.inputArgs()...)
	_, err = runCommand(t, f.Dir, env, args...)
	assert.Error(t, err)
}
