package core

import (
	"context"
	"sync"

	"github.com/klauspost/compress/s2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Default maximum number of memoized explanations
const defaultMaxEntries = 1000

// Values past this size are stored compressed
const compressionThreshold = 1024

// memoEntry holds one memoized explanation
type memoEntry struct {
	data       []byte
	compressed bool
}

// MemoStore memoizes explanation text by derived request key for the
// lifetime of the process. Entries carry no TTL and are never evicted
// individually: when the entry count passes the bound, the entire store is
// cleared. This keeps memory bounded at the cost of a guaranteed miss on
// the request following an overflow.
//
// Reads and writes are individually guarded, but a request's
// lookup → upstream call → fill sequence is not atomic: two concurrent
// requests for the same key can both miss and both call upstream. That is
// accepted behavior; see Explainer for the opt-in coalescing mode.
type MemoStore struct {
	mu         sync.RWMutex
	entries    map[string]memoEntry
	maxEntries int
	metrics    *CacheMetrics

	// OpenTelemetry metric instruments
	otelHitCounter   metric.Int64Counter
	otelMissCounter  metric.Int64Counter
	otelClearCounter metric.Int64Counter
}

// NewMemoStore creates an empty memo store bounded at maxEntries
func NewMemoStore(maxEntries int) *MemoStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	ms := &MemoStore{
		entries:    make(map[string]memoEntry),
		maxEntries: maxEntries,
		metrics:    &CacheMetrics{},
	}

	meter := otel.Meter("explaind.com/memostore")

	ms.otelHitCounter, _ = meter.Int64Counter("explaind.cache.hits",
		metric.WithDescription("Number of cache hits"))
	ms.otelMissCounter, _ = meter.Int64Counter("explaind.cache.misses",
		metric.WithDescription("Number of cache misses"))
	ms.otelClearCounter, _ = meter.Int64Counter("explaind.cache.clears",
		metric.WithDescription("Number of overflow-triggered full clears"))

	return ms
}

// Get retrieves a memoized explanation. Pure lookup, no side effect on the
// stored entries.
func (ms *MemoStore) Get(ctx context.Context, key string) (string, bool) {
	ms.mu.RLock()
	entry, ok := ms.entries[key]
	ms.mu.RUnlock()

	if !ok {
		ms.recordMiss(ctx)
		return "", false
	}

	data := entry.data
	if entry.compressed {
		var err error
		data, err = s2.Decode(nil, data)
		if err != nil {
			ms.recordMiss(ctx)
			return "", false
		}
	}

	ms.recordHit(ctx)
	return string(data), true
}

// Put inserts or overwrites the entry for key, compressing large values.
// After the write, if the entry count exceeds the bound the whole store is
// cleared, the entry just written included. Not LRU, not LFU: everything
// goes.
func (ms *MemoStore) Put(ctx context.Context, key, value string) {
	data := []byte(value)
	compressed := false

	// Compress if beneficial
	if len(data) > compressionThreshold {
		if comp := s2.Encode(nil, data); len(comp) < len(data) {
			data = comp
			compressed = true
		}
	}

	ms.mu.Lock()
	ms.entries[key] = memoEntry{data: data, compressed: compressed}
	overflow := len(ms.entries) > ms.maxEntries
	if overflow {
		ms.entries = make(map[string]memoEntry)
	}
	ms.mu.Unlock()

	if overflow {
		ms.recordClear(ctx)
	}
}

// Size returns the current entry count
func (ms *MemoStore) Size() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.entries)
}

// Clear removes all entries
func (ms *MemoStore) Clear() {
	ms.mu.Lock()
	ms.entries = make(map[string]memoEntry)
	ms.mu.Unlock()
}

// Metric recording helpers (record both internal metrics and OTel metrics)
func (ms *MemoStore) recordHit(ctx context.Context) {
	ms.metrics.Hits.Add(1)
	if ms.otelHitCounter != nil {
		ms.otelHitCounter.Add(ctx, 1)
	}
}

func (ms *MemoStore) recordMiss(ctx context.Context) {
	ms.metrics.Misses.Add(1)
	if ms.otelMissCounter != nil {
		ms.otelMissCounter.Add(ctx, 1)
	}
}

func (ms *MemoStore) recordClear(ctx context.Context) {
	ms.metrics.Clears.Add(1)
	if ms.otelClearCounter != nil {
		ms.otelClearCounter.Add(ctx, 1)
	}
}

// Metrics returns the store metrics
func (ms *MemoStore) Metrics() *CacheMetrics {
	return ms.metrics
}
