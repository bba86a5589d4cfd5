// Package iocache is for caching estimates and tracking analysis runs.
package iocache

import (
	"sync"

	"github.com/huangsam/epigrowth/internal/contract"
)

// CacheStoreManager manages multiple CacheStore instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	estimate     contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager returns a manager over the given stores. Either may be nil.
func NewCacheStoreManager(estimate contract.CacheStore, analysis contract.AnalysisStore) *CacheStoreManager {
	return &CacheStoreManager{estimate: estimate, analysis: analysis}
}

// GetEstimateStore returns the CacheStore holding per-county growth estimates.
func (mgr *CacheStoreManager) GetEstimateStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.estimate
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
