package testing

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/store"
)

// StoreFactory creates a fresh, empty store driven by the given clock.
type StoreFactory func(clock func() time.Time) (store.IFullStore, error)

// RunStoreTests runs the shared conformance suite for store.IFullStore
// implementations. Both engines must pass it unchanged: the suite only
// talks through the contract, so it also documents what callers may rely
// on regardless of the backing medium.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) { testSetGet(t, factory) })
		t.Run("GetAbsent", func(t *testing.T) { testGetAbsent(t, factory) })
		t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
		t.Run("DeleteIdempotent", func(t *testing.T) { testDeleteIdempotent(t, factory) })
		t.Run("NilValueRejected", func(t *testing.T) { testNilValueRejected(t, factory) })
		t.Run("ExpiryBoundary", func(t *testing.T) { testExpiryBoundary(t, factory) })
		t.Run("DefaultLifespan", func(t *testing.T) { testDefaultLifespan(t, factory) })
		t.Run("GetStored", func(t *testing.T) { testGetStored(t, factory) })
		t.Run("Size", func(t *testing.T) { testSize(t, factory) })
		t.Run("ForEach", func(t *testing.T) { testForEach(t, factory) })
		t.Run("AsMap", func(t *testing.T) { testAsMap(t, factory) })
		t.Run("Clear", func(t *testing.T) { testClear(t, factory) })
		t.Run("WatermarkSeeding", func(t *testing.T) { testWatermarkSeeding(t, factory) })
		t.Run("GCNowScenario", func(t *testing.T) { testGCNowScenario(t, factory) })
		t.Run("GCAfterInterval", func(t *testing.T) { testGCAfterInterval(t, factory) })
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustCreate(t *testing.T, factory StoreFactory, clock *FakeClock) store.IFullStore {
	t.Helper()
	s, err := factory(clock.Now)
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	return s
}

type payload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	want := payload{Name: "alpha", Count: 3, Tags: []string{"x", "y"}}
	if err := s.Set(ctx, "key", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	found, err := s.Get(ctx, "key", &got)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatalf("Expected key to be found after Set")
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	// probing without a destination is allowed
	found, err = s.Get(ctx, "key", nil)
	if err != nil || !found {
		t.Errorf("Expected probe Get to report found=true, got found=%v err=%v", found, err)
	}
}

func testGetAbsent(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)

	var dest string
	found, err := s.Get(context.Background(), "never-written", &dest)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected absent key to return found=false")
	}
}

func testOverwrite(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "key", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "key", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got string
	found, err := s.Get(ctx, "key", &got)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if got != "second" {
		t.Errorf("Expected overwritten value %q, got %q", "second", got)
	}
}

func testDeleteIdempotent(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "a", 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// deleting absent keys is a no-op, mixed batches included
	if err := s.Delete(ctx, "a", "never-written"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "never-written"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}

	found, err := s.Get(ctx, "a", nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected deleted key to be absent")
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected empty store, got size %d", size)
	}
}

func testNilValueRejected(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)

	err := s.Set(context.Background(), "key", nil)
	if err == nil {
		t.Fatalf("Expected Set(nil) to fail")
	}
	if code := store.CodeOf(err); code != store.RetCInvalidOperation {
		t.Errorf("Expected RetCInvalidOperation, got %d (%v)", code, err)
	}
}

func testExpiryBoundary(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "key", "v", lifespan.Millis(1000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(999 * time.Millisecond)
	var got string
	found, err := s.Get(ctx, "key", &got)
	if err != nil || !found || got != "v" {
		t.Fatalf("Expected value alive at T+999: found=%v got=%q err=%v", found, got, err)
	}

	// the boundary is inclusive: dead at exactly T+1000
	clock.Advance(1 * time.Millisecond)
	found, err = s.Get(ctx, "key", nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected value dead at T+1000")
	}
}

func testDefaultLifespan(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	s.SetDefaults(lifespan.Millis(1000), 0)

	if err := s.Set(ctx, "key", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(999 * time.Millisecond)
	if found, err := s.Get(ctx, "key", nil); err != nil || !found {
		t.Fatalf("Expected value alive before default lifespan elapsed: found=%v err=%v", found, err)
	}

	clock.Advance(1 * time.Millisecond)
	if found, err := s.Get(ctx, "key", nil); err != nil || found {
		t.Errorf("Expected value dead after default lifespan: found=%v err=%v", found, err)
	}
}

func testGetStored(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	startMs := clock.Now().UnixMilli()
	if err := s.Set(ctx, "key", "v", lifespan.Millis(5000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, found, err := s.GetStored(ctx, "key")
	if err != nil || !found {
		t.Fatalf("GetStored failed: found=%v err=%v", found, err)
	}
	if entry.StoredMs != startMs {
		t.Errorf("Expected StoredMs %d, got %d", startMs, entry.StoredMs)
	}
	if entry.ExpiryMs != startMs+5000 {
		t.Errorf("Expected ExpiryMs %d, got %d", startMs+5000, entry.ExpiryMs)
	}
	if entry.Key != "key" {
		t.Errorf("Expected Key %q, got %q", "key", entry.Key)
	}

	var got string
	if uerr := entry.Unmarshal(&got); uerr != nil || got != "v" {
		t.Errorf("Expected wrapped value %q, got %q (err=%v)", "v", got, uerr)
	}
}

func testSize(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "short", 1, lifespan.Millis(1000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "mid", 2, lifespan.Millis(10_000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "long", 3, lifespan.Millis(100_000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 3 {
		t.Errorf("Expected size 3, got %d", size)
	}

	// size is a live scan: it must shrink without any explicit delete
	clock.Advance(2 * time.Second)
	size, err = s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 2 {
		t.Errorf("Expected size 2 after one entry expired, got %d", size)
	}
}

func testForEach(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for key, value := range want {
		if err := s.Set(ctx, key, value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := s.Set(ctx, "dead", 0, lifespan.Millis(100)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(time.Second)

	seen := make(map[string]int)
	err := s.ForEach(ctx, func(key string, entry store.Entry) error {
		var value int
		if uerr := entry.Unmarshal(&value); uerr != nil {
			return uerr
		}
		seen[key] = value
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if !reflect.DeepEqual(want, seen) {
		t.Errorf("Expected entries %v, got %v", want, seen)
	}

	// a callback error aborts the iteration and propagates unchanged
	sentinel := errors.New("stop")
	err = s.ForEach(ctx, func(string, store.Entry) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected callback error to propagate, got %v", err)
	}
}

func testAsMap(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "a", "x"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "b", "y"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	dump, err := s.AsMap(ctx)
	if err != nil {
		t.Fatalf("AsMap failed: %v", err)
	}
	if len(dump) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(dump))
	}
	for _, key := range []string{"a", "b"} {
		entry, ok := dump[key]
		if !ok {
			t.Errorf("Expected key %q in dump", key)
			continue
		}
		if entry.StoredMs <= 0 || entry.ExpiryMs <= entry.StoredMs {
			t.Errorf("Key %q: implausible envelope %+v", key, entry)
		}
	}
}

func testClear(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, key, key); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected empty store after Clear, got size %d", size)
	}
}

func testWatermarkSeeding(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	// first GC on a brand-new store seeds the watermark without sweeping
	if err := s.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}

	if err := s.Set(ctx, "key", "v", lifespan.Millis(1000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(2 * time.Second)

	// not due yet (default interval is far away): no sweep, but reads are
	// correct regardless
	if err := s.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}
	if found, err := s.Get(ctx, "key", nil); err != nil || found {
		t.Errorf("Expected expired entry to be invisible: found=%v err=%v", found, err)
	}

	// after the interval elapses, GC performs a full sweep
	s.SetDefaults(lifespan.Lifespan{}, time.Minute)
	clock.Advance(2 * time.Minute)
	if err := s.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}
	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected swept store to be empty, got size %d", size)
	}
}

func testGCNowScenario(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	// GC interval of one day: nothing in this test makes GC "due"
	s.SetDefaults(lifespan.Lifespan{}, 24*time.Hour)

	if err := s.Set(ctx, "a", "short-lived", lifespan.Millis(1000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "b", "long-lived", lifespan.Millis(100_000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(2 * time.Second)

	if err := s.GCNow(ctx); err != nil {
		t.Fatalf("GCNow failed: %v", err)
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected post-sweep size 1, got %d", size)
	}

	var got string
	found, err := s.Get(ctx, "b", &got)
	if err != nil || !found || got != "long-lived" {
		t.Errorf("Expected %q to survive the sweep: found=%v got=%q err=%v", "b", found, got, err)
	}
	found, err = s.Get(ctx, "a", nil)
	if err != nil || found {
		t.Errorf("Expected %q to be swept: found=%v err=%v", "a", found, err)
	}
}

func testGCAfterInterval(t *testing.T, factory StoreFactory) {
	clock := NewFakeClock()
	s := mustCreate(t, factory, clock)
	ctx := context.Background()

	s.SetDefaults(lifespan.Lifespan{}, 500*time.Millisecond)

	// seed the watermark, then let an entry expire past the interval
	if err := s.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}
	if err := s.Set(ctx, "a", "v", lifespan.Millis(100)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "keep", "v", lifespan.Millis(60_000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(time.Second)
	if err := s.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected only the live entry to remain, got size %d", size)
	}
}
