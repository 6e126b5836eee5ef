// Package pool provides object pooling to reduce allocations on the hot
// paths of traversal and privilege resolution: scratch maps for
// membership tests and scratch string slices for BFS frontiers.
//
// Usage:
//
//	m := pool.GetMap()
//	defer pool.PutMap(m)
package pool

import (
	"sync"
)

// PoolConfig configures object pooling behavior.
type PoolConfig struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxSize limits maximum objects kept in each pool
	MaxSize int
}

var globalConfig = PoolConfig{
	Enabled: true,
	MaxSize: 1000,
}

// Configure sets global pool configuration.
// Should be called early during initialization.
func Configure(config PoolConfig) {
	globalConfig = config

	// Reinitialize pools to ensure New functions are set correctly
	initPools()
}

// initPools reinitializes all pools with their New functions.
func initPools() {
	mapPool = sync.Pool{
		New: func() any {
			return make(map[string]interface{}, 8)
		},
	}
	stringSlicePool = sync.Pool{
		New: func() any {
			return make([]string, 0, 16)
		},
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return globalConfig.Enabled
}

// =============================================================================
// Map Pool (for traversal/dag membership sets)
// =============================================================================

var mapPool = sync.Pool{
	New: func() any {
		return make(map[string]interface{}, 8)
	},
}

// GetMap returns a map from the pool.
func GetMap() map[string]interface{} {
	if !globalConfig.Enabled {
		return make(map[string]interface{}, 8)
	}
	m := mapPool.Get().(map[string]interface{})
	// Clear existing entries
	for k := range m {
		delete(m, k)
	}
	return m
}

// PutMap returns a map to the pool.
func PutMap(m map[string]interface{}) {
	if !globalConfig.Enabled || m == nil {
		return
	}
	if len(m) > globalConfig.MaxSize {
		return
	}
	// Clear for reuse
	for k := range m {
		delete(m, k)
	}
	mapPool.Put(m)
}

// =============================================================================
// String Slice Pool
// =============================================================================

var stringSlicePool = sync.Pool{
	New: func() any {
		return make([]string, 0, 16)
	},
}

// GetStringSlice returns a string slice from the pool.
func GetStringSlice() []string {
	if !globalConfig.Enabled {
		return make([]string, 0, 16)
	}
	return stringSlicePool.Get().([]string)[:0]
}

// PutStringSlice returns a string slice to the pool.
func PutStringSlice(s []string) {
	if !globalConfig.Enabled {
		return
	}
	if cap(s) > globalConfig.MaxSize {
		return
	}
	stringSlicePool.Put(s[:0])
}
