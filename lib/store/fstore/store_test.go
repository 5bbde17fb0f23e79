package fstore

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/ValentinKolb/ttlstore/lib/medium"
	"github.com/ValentinKolb/ttlstore/lib/medium/memmedium"
	"github.com/ValentinKolb/ttlstore/lib/store"
	storetesting "github.com/ValentinKolb/ttlstore/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "FastStore", func(clock func() time.Time) (store.IFullStore, error) {
		return New(memmedium.New(), Config{
			Namespace: "suite",
			Version:   1,
			Clock:     clock,
		}), nil
	})
}

// newTestStore returns a store plus its raw medium for tests that need to
// observe or corrupt the physical state.
func newTestStore(t *testing.T, clock *storetesting.FakeClock) (store.IFullStore, medium.IMedium) {
	t.Helper()
	m := memmedium.New()
	s := New(m, Config{
		Namespace: "ns",
		Version:   1,
		Clock:     clock.Now,
	})
	return s, m
}

func TestCorruptEntryIsDiscarded(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s, m := newTestStore(t, clock)
	ctx := context.Background()

	// not valid JSON at all
	if err := m.Set("ns:broken", "{not json"); err != nil {
		t.Fatalf("medium Set failed: %v", err)
	}
	// valid JSON, wrong shape
	if err := m.Set("ns:shapeless", `{"something":"else"}`); err != nil {
		t.Fatalf("medium Set failed: %v", err)
	}

	for _, key := range []string{"broken", "shapeless"} {
		found, err := s.Get(ctx, key, nil)
		if err != nil {
			t.Fatalf("Get(%q) returned error: %v", key, err)
		}
		if found {
			t.Errorf("Expected corrupt entry %q to read as absent", key)
		}
		// the read must have physically removed the key
		if _, present, _ := m.Get("ns:" + key); present {
			t.Errorf("Expected corrupt entry %q to be deleted from the medium", key)
		}
	}
}

func TestExpiredEntryPhysicallyRemovedOnRead(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s, m := newTestStore(t, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "key", "v", lifespan.Millis(1000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(time.Second)

	if found, err := s.Get(ctx, "key", nil); err != nil || found {
		t.Fatalf("Expected expired entry to be absent: found=%v err=%v", found, err)
	}
	if _, present, _ := m.Get("ns:key"); present {
		t.Errorf("Expected expired entry to be deleted from the medium")
	}
}

func TestNamespaceIsolation(t *testing.T) {
	clock := storetesting.NewFakeClock()
	m := memmedium.New()
	ctx := context.Background()

	a := New(m, Config{Namespace: "alpha", Version: 1, Clock: clock.Now})
	b := New(m, Config{Namespace: "beta", Version: 1, Clock: clock.Now})

	if err := a.Set(ctx, "key", "from-a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Set(ctx, "key", "from-b"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got string
	if _, err := a.Get(ctx, "key", &got); err != nil || got != "from-a" {
		t.Errorf("Expected %q in namespace alpha, got %q (err=%v)", "from-a", got, err)
	}
	if _, err := b.Get(ctx, "key", &got); err != nil || got != "from-b" {
		t.Errorf("Expected %q in namespace beta, got %q (err=%v)", "from-b", got, err)
	}

	// clearing one namespace must not touch the other
	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if size, _ := b.Size(ctx); size != 1 {
		t.Errorf("Expected namespace beta untouched by alpha's Clear, size=%d", size)
	}
}

func TestWatermarkKeyLayout(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s, m := newTestStore(t, clock)

	if err := s.GC(context.Background()); err != nil {
		t.Fatalf("GC failed: %v", err)
	}

	wmKey := store.WatermarkKey(memmedium.MediumName, 1, "ns")
	raw, found, err := m.Get(wmKey)
	if err != nil || !found {
		t.Fatalf("Expected watermark under %q: found=%v err=%v", wmKey, found, err)
	}
	ms, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		t.Fatalf("Watermark is not a decimal millisecond count: %q", raw)
	}
	if ms != clock.Now().UnixMilli() {
		t.Errorf("Expected watermark seeded to now (%d), got %d", clock.Now().UnixMilli(), ms)
	}
}

func TestForEachDeletesDeadEntriesInline(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s, m := newTestStore(t, clock)
	ctx := context.Background()

	if err := s.Set(ctx, "dead", "v", lifespan.Millis(100)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "live", "v", lifespan.Millis(60_000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(time.Second)

	calls := 0
	if err := s.ForEach(ctx, func(string, store.Entry) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected callback for the live entry only, got %d calls", calls)
	}
	if _, present, _ := m.Get("ns:dead"); present {
		t.Errorf("Expected dead entry to be deleted during iteration")
	}
}

func TestForEachCallbackMayMutate(t *testing.T) {
	clock := storetesting.NewFakeClock()
	s, _ := newTestStore(t, clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, "key-"+strconv.Itoa(i), i); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	// deleting the current key from inside the callback must not derail
	// the iteration
	if err := s.ForEach(ctx, func(key string, _ store.Entry) error {
		return s.Delete(ctx, key)
	}); err != nil {
		t.Fatalf("ForEach with mutating callback failed: %v", err)
	}

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected all entries deleted, size=%d", size)
	}
}

func TestConcurrentSetGet(t *testing.T) {
	s, _ := newTestStore(t, storetesting.NewFakeClock())
	ctx := context.Background()

	const goroutines = 8
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				key := "g" + strconv.Itoa(g) + "-" + strconv.Itoa(i)
				if err := s.Set(ctx, key, i); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				var got int
				if found, err := s.Get(ctx, key, &got); err != nil || !found || got != i {
					t.Errorf("Get(%q): found=%v got=%d err=%v", key, found, got, err)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
