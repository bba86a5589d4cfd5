package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/klauspost/compress/zstd"
)

// currentCacheVersion defines the version of the cache payload.
const currentCacheVersion = 1

// maxCacheAge is how long a cached estimate set stays valid.
const maxCacheAge = 7 * 24 * time.Hour

// estimateSet is everything derived from the cases file alone.
// It is the unit stored in the estimate cache.
type estimateSet struct {
	Estimates map[string]schema.CountyEstimate `json:"estimates"`
	Totals    map[string]int64                 `json:"totals"`
	Failures  schema.EstimateFailures          `json:"failures"`
}

// zstd encoders and decoders are reused across calls.
var (
	zstdEncoderPool = sync.Pool{
		New: func() any {
			encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
			}
			return encoder
		},
	}
	zstdDecoderPool = sync.Pool{
		New: func() any {
			decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
			}
			return decoder
		},
	}
)

// cachedEstimates returns the estimate set for the cases file, from cache when possible.
func cachedEstimates(ctx context.Context, cfg *contract.Config, src contract.DataSource, mgr contract.CacheManager) (*estimateSet, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetEstimateStore()
	}
	if store == nil {
		// Fallback to direct computation
		return computeEstimates(ctx, cfg, src)
	}

	fingerprint, err := src.Fingerprint(cfg.CasesFile)
	if err != nil {
		contract.LogWarn("Skipping estimate cache", err)
		return computeEstimates(ctx, cfg, src)
	}
	key := generateCacheKey(cfg, fingerprint)

	// Check for cache hit
	if result := checkCacheHit(store, key); result != nil {
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, src, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *estimateSet {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > maxCacheAge {
		return nil
	}

	result, err := decodeEstimates(data)
	if err != nil {
		return nil
	}
	return result
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, src contract.DataSource, store contract.CacheStore, key string) (*estimateSet, error) {
	result, err := computeEstimates(ctx, cfg, src)
	if err != nil {
		return nil, err
	}

	if data, err := encodeEstimates(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to write estimate cache", err)
		}
	}
	return result, nil
}

// generateCacheKey creates a unique key from the inputs that determine the estimates.
func generateCacheKey(cfg *contract.Config, casesFingerprint string) string {
	key := fmt.Sprintf("%s:%s:%d:%t",
		casesFingerprint,
		cfg.ReferenceDate.Format(contract.DateFormat),
		cfg.MinObservations,
		cfg.CasesCumulative,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// encodeEstimates serializes the set as zstd-compressed JSON.
func encodeEstimates(set *estimateSet) ([]byte, error) {
	raw, err := json.Marshal(set)
	if err != nil {
		return nil, err
	}
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)
	return encoder.EncodeAll(raw, nil), nil
}

// decodeEstimates reverses encodeEstimates.
func decodeEstimates(data []byte) (*estimateSet, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	var set estimateSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	return &set, nil
}
