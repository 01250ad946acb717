package core

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestMemoStore_PutGet(t *testing.T) {
	ms := NewMemoStore(100)
	ctx := context.Background()

	ms.Put(ctx, "k1", "the query counts orders")

	val, ok := ms.Get(ctx, "k1")
	if !ok {
		t.Fatalf("expected to find entry after put")
	}
	if val != "the query counts orders" {
		t.Errorf("expected stored value, got %q", val)
	}

	// Overwrite is idempotent
	ms.Put(ctx, "k1", "updated text")
	val, _ = ms.Get(ctx, "k1")
	if val != "updated text" {
		t.Errorf("expected overwritten value, got %q", val)
	}
	if ms.Size() != 1 {
		t.Errorf("expected size 1 after overwrite, got %d", ms.Size())
	}

	snapshot := ms.Metrics().Snapshot()
	if snapshot["hits"] != 2 {
		t.Errorf("expected 2 hits, got %d", snapshot["hits"])
	}
}

func TestMemoStore_Miss(t *testing.T) {
	ms := NewMemoStore(100)
	ctx := context.Background()

	_, ok := ms.Get(ctx, "nonexistent-key")
	if ok {
		t.Errorf("expected miss on empty store")
	}

	snapshot := ms.Metrics().Snapshot()
	if snapshot["misses"] != 1 {
		t.Errorf("expected 1 miss, got %d", snapshot["misses"])
	}
}

func TestMemoStore_Clear(t *testing.T) {
	ms := NewMemoStore(100)
	ctx := context.Background()

	ms.Put(ctx, "k1", "v1")
	ms.Put(ctx, "k2", "v2")

	ms.Clear()

	if ms.Size() != 0 {
		t.Errorf("expected empty store after clear, got size %d", ms.Size())
	}
	if _, ok := ms.Get(ctx, "k1"); ok {
		t.Errorf("expected miss after clear")
	}
}

func TestMemoStore_OverflowClearsEverything(t *testing.T) {
	ms := NewMemoStore(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ms.Put(ctx, fmt.Sprintf("k%d", i), "v")
	}
	if ms.Size() != 3 {
		t.Fatalf("expected size 3 at the bound, got %d", ms.Size())
	}

	// The put that passes the bound clears the whole store, the entry just
	// written included. No per-entry eviction.
	ms.Put(ctx, "k3", "v")

	if ms.Size() != 0 {
		t.Errorf("expected empty store after overflow clear, got size %d", ms.Size())
	}
	if _, ok := ms.Get(ctx, "k3"); ok {
		t.Errorf("expected the overflowing entry to be cleared too")
	}

	snapshot := ms.Metrics().Snapshot()
	if snapshot["clears"] != 1 {
		t.Errorf("expected 1 clear, got %d", snapshot["clears"])
	}
}

func TestMemoStore_CompressesLargeValues(t *testing.T) {
	ms := NewMemoStore(100)
	ctx := context.Background()

	big := strings.Repeat("SELECT customer_id, SUM(total) FROM orders GROUP BY customer_id; ", 100)
	ms.Put(ctx, "big", big)

	ms.mu.RLock()
	entry := ms.entries["big"]
	ms.mu.RUnlock()

	if !entry.compressed {
		t.Errorf("expected a value past the threshold to be stored compressed")
	}
	if len(entry.data) >= len(big) {
		t.Errorf("expected compressed data to be smaller, got %d for %d original bytes", len(entry.data), len(big))
	}

	val, ok := ms.Get(ctx, "big")
	if !ok {
		t.Fatalf("expected to find compressed entry")
	}
	if val != big {
		t.Errorf("expected compressed entry to round-trip intact")
	}
}

func TestMemoStore_SmallValuesStoredAsIs(t *testing.T) {
	ms := NewMemoStore(100)
	ctx := context.Background()

	ms.Put(ctx, "small", "counts orders per customer")

	ms.mu.RLock()
	entry := ms.entries["small"]
	ms.mu.RUnlock()

	if entry.compressed {
		t.Errorf("expected a value under the threshold to be stored as-is")
	}

	val, _ := ms.Get(ctx, "small")
	if val != "counts orders per customer" {
		t.Errorf("expected stored value, got %q", val)
	}
}

func TestMemoStore_OverflowAtDefaultBound(t *testing.T) {
	ms := NewMemoStore(0) // default bound of 1000
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		ms.Put(ctx, fmt.Sprintf("k%d", i), "v")
	}
	if ms.Size() != 1000 {
		t.Fatalf("expected 1000 entries at the bound, got %d", ms.Size())
	}

	ms.Put(ctx, "k1000", "v")

	if ms.Size() != 0 {
		t.Errorf("expected the 1001st put to clear the store, got size %d", ms.Size())
	}
}
