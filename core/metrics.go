package core

import "sync/atomic"

// CacheMetrics tracks memo store activity
type CacheMetrics struct {
	Hits   atomic.Int64
	Misses atomic.Int64
	Clears atomic.Int64
}

// Snapshot returns the current counter values
func (m *CacheMetrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"hits":   m.Hits.Load(),
		"misses": m.Misses.Load(),
		"clears": m.Clears.Load(),
	}
}
