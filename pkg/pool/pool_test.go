package pool

import (
	"sync"
	"testing"
)

// =============================================================================
// Configuration Tests
// =============================================================================

func TestConfigure(t *testing.T) {
	// Save original config
	origConfig := globalConfig
	defer func() {
		Configure(origConfig)
	}()

	t.Run("enable pooling", func(t *testing.T) {
		Configure(PoolConfig{Enabled: true, MaxSize: 500})

		if !IsEnabled() {
			t.Error("IsEnabled() = false, want true")
		}
		if globalConfig.MaxSize != 500 {
			t.Errorf("MaxSize = %d, want 500", globalConfig.MaxSize)
		}
	})

	t.Run("disable pooling", func(t *testing.T) {
		Configure(PoolConfig{Enabled: false, MaxSize: 1000})

		if IsEnabled() {
			t.Error("IsEnabled() = true, want false")
		}
	})
}

// =============================================================================
// Map Pool Tests
// =============================================================================

func TestMapPool(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	t.Run("get returns empty map", func(t *testing.T) {
		m := GetMap()
		if len(m) != 0 {
			t.Errorf("len = %d, want 0", len(m))
		}
		PutMap(m)
	})

	t.Run("map is cleared on put", func(t *testing.T) {
		m := GetMap()
		m["key1"] = "value1"
		m["key2"] = 123
		PutMap(m)

		m2 := GetMap()
		if len(m2) != 0 {
			t.Errorf("reused map len = %d, want 0", len(m2))
		}
		PutMap(m2)
	})

	t.Run("nil put does not panic", func(t *testing.T) {
		PutMap(nil) // Should not panic
	})

	t.Run("oversized map not pooled", func(t *testing.T) {
		Configure(PoolConfig{Enabled: true, MaxSize: 10})
		defer Configure(PoolConfig{Enabled: true, MaxSize: 1000})

		m := GetMap()
		for i := 0; i < 20; i++ {
			m[string(rune('a'+i))] = i
		}
		PutMap(m) // Should not panic, just not pool it
	})
}

// =============================================================================
// String Slice Pool Tests
// =============================================================================

func TestStringSlicePool(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	t.Run("get returns empty slice", func(t *testing.T) {
		s := GetStringSlice()
		if len(s) != 0 {
			t.Errorf("len = %d, want 0", len(s))
		}
		PutStringSlice(s)
	})

	t.Run("reuse", func(t *testing.T) {
		s := GetStringSlice()
		s = append(s, "hello", "world")
		PutStringSlice(s)

		s2 := GetStringSlice()
		if len(s2) != 0 {
			t.Errorf("reused slice len = %d, want 0", len(s2))
		}
		PutStringSlice(s2)
	})
}

// =============================================================================
// Concurrent Access Tests
// =============================================================================

func TestConcurrentPoolAccess(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	const goroutines = 100
	const iterations = 100

	t.Run("map pool concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(goroutines)

		for i := 0; i < goroutines; i++ {
			go func(id int) {
				defer wg.Done()
				for j := 0; j < iterations; j++ {
					m := GetMap()
					m["id"] = id
					m["iter"] = j
					PutMap(m)
				}
			}(i)
		}

		wg.Wait()
	})

	t.Run("string slice pool concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(goroutines)

		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < iterations; j++ {
					s := GetStringSlice()
					s = append(s, "x")
					PutStringSlice(s)
				}
			}()
		}

		wg.Wait()
	})
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkMapPool(b *testing.B) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	b.Run("pooled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			m := GetMap()
			m["key"] = "value"
			PutMap(m)
		}
	})

	b.Run("unpooled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			m := make(map[string]interface{}, 8)
			m["key"] = "value"
			_ = m
		}
	})
}

func BenchmarkConcurrentPoolAccess(b *testing.B) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m := GetMap()
			m["key"] = "value"
			PutMap(m)
		}
	})
}
