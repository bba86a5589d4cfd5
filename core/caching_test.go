package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/epigrowth/internal/iocache"
	"github.com/huangsam/epigrowth/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testEstimateSet() *estimateSet {
	return &estimateSet{
		Estimates: map[string]schema.CountyEstimate{
			"53033": {
				CountyKey:      schema.CountyKey{State: "Washington", County: "King", FIPS: "53033"},
				GrowthEstimate: schema.GrowthEstimate{Intercept: 0.5, Rate: 0.25},
				Observations:   12,
			},
		},
		Totals:   map[string]int64{"53033": 420},
		Failures: schema.EstimateFailures{Domain: 2},
	}
}

func TestEncodeDecodeEstimates(t *testing.T) {
	data, err := encodeEstimates(testEstimateSet())
	require.NoError(t, err)

	got, err := decodeEstimates(data)
	require.NoError(t, err)
	assert.Equal(t, testEstimateSet(), got)

	_, err = decodeEstimates([]byte("not zstd"))
	assert.Error(t, err)
}

func TestGenerateCacheKey(t *testing.T) {
	cfg := testConfig()
	key := generateCacheKey(cfg, "abc")
	assert.Len(t, key, 64)
	assert.Equal(t, key, generateCacheKey(cfg, "abc"))

	assert.NotEqual(t, key, generateCacheKey(cfg, "abd"), "file contents")

	other := testConfig()
	other.ReferenceDate = day(9)
	assert.NotEqual(t, key, generateCacheKey(other, "abc"), "reference date")

	other = testConfig()
	other.MinObservations = 5
	assert.NotEqual(t, key, generateCacheKey(other, "abc"), "min observations")

	other = testConfig()
	other.CasesCumulative = true
	assert.NotEqual(t, key, generateCacheKey(other, "abc"), "cumulative input")

	// Filters are applied after the cache and do not affect the key
	other = testConfig()
	other.ExcludeStates = nil
	other.MinTotalCases = 100
	assert.Equal(t, key, generateCacheKey(other, "abc"))
}

func TestCheckCacheHit(t *testing.T) {
	data, err := encodeEstimates(testEstimateSet())
	require.NoError(t, err)
	now := time.Now().Unix()

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		hit     bool
	}{
		{"fresh", data, currentCacheVersion, now, nil, true},
		{"miss", nil, 0, 0, errors.New("no rows"), false},
		{"old version", data, currentCacheVersion + 1, now, nil, false},
		{"stale", data, currentCacheVersion, time.Now().Add(-8 * 24 * time.Hour).Unix(), nil, false},
		{"corrupt", []byte("garbage"), currentCacheVersion, now, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "k").Return(tt.data, tt.version, tt.ts, tt.err)
			got := checkCacheHit(store, "k")
			assert.Equal(t, tt.hit, got != nil)
		})
	}
}

func TestCachedEstimates(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()

	t.Run("miss computes and stores", func(t *testing.T) {
		src := &stubSource{cases: testCases(), fingerprint: "0123456789abcdef"}
		key := generateCacheKey(cfg, src.fingerprint)

		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errors.New("no rows"))
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetEstimateStore").Return(store)

		set, err := cachedEstimates(ctx, cfg, src, mgr)
		require.NoError(t, err)
		assert.Len(t, set.Estimates, 3)
		assert.Equal(t, 1, src.caseLoads)
		store.AssertExpectations(t)

		stored, err := decodeEstimates(store.Calls[1].Arguments.Get(1).([]byte))
		require.NoError(t, err)
		assert.Equal(t, set, stored)
	})

	t.Run("hit skips loading", func(t *testing.T) {
		src := &stubSource{fingerprint: "0123456789abcdef"}
		key := generateCacheKey(cfg, src.fingerprint)
		data, err := encodeEstimates(testEstimateSet())
		require.NoError(t, err)

		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(data, currentCacheVersion, time.Now().Unix(), nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetEstimateStore").Return(store)

		set, err := cachedEstimates(ctx, cfg, src, mgr)
		require.NoError(t, err)
		assert.Equal(t, testEstimateSet(), set)
		assert.Equal(t, 0, src.caseLoads)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fingerprint failure bypasses cache", func(t *testing.T) {
		src := &stubSource{cases: testCases()}
		store := &iocache.MockCacheStore{}
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetEstimateStore").Return(store)

		set, err := cachedEstimates(ctx, cfg, src, mgr)
		require.NoError(t, err)
		assert.Len(t, set.Estimates, 3)
		store.AssertNotCalled(t, "Get", mock.Anything)
	})
}
