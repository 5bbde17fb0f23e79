package dstore

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/medium/memmedium"
	"github.com/ValentinKolb/ttlstore/lib/store"
	storetesting "github.com/ValentinKolb/ttlstore/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "DurableStore", func(clock func() time.Time) (store.IFullStore, error) {
		return New(Config{
			Path:      filepath.Join(t.TempDir(), "store.db"),
			Namespace: "suite",
			Version:   1,
			// isolate the watermark per suite case
			Watermarks: memmedium.New(),
			Clock:      clock,
		}), nil
	})
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s := New(Config{Path: path, Namespace: "ns", Version: 1})
	if err := s.Set(ctx, "key", "payload"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// a second store instance over the same file and version sees the data
	s2 := New(Config{Path: path, Namespace: "ns", Version: 1})
	var got string
	found, err := s2.Get(ctx, "key", &got)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if got != "payload" {
		t.Errorf("Expected persisted value %q, got %q", "payload", got)
	}
}

func TestVersionBumpWipesNamespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s := New(Config{Path: path, Namespace: "ns", Version: 1})
	if err := s.Set(ctx, "key", "old-world"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// bumping the version is destructive: the old container is gone
	bumped := New(Config{Path: path, Namespace: "ns", Version: 2})
	found, err := bumped.Get(ctx, "key", nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected data to be unreachable after version bump")
	}

	size, err := bumped.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected empty container after version bump, got size %d", size)
	}
}

func TestNamespaceIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	a := New(Config{Path: path, Namespace: "alpha", Version: 1})
	b := New(Config{Path: path, Namespace: "beta", Version: 1})

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

	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if size, _ := b.Size(ctx); size != 1 {
		t.Errorf("Expected namespace beta untouched by alpha's Clear, size=%d", size)
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{"session", "entries_session"},
		{"Session_1", "entries_Session_1"},
		{"a:b", "entries_x613a62"},
		{"", "entries_x"},
	}
	for _, tt := range tests {
		if got := tableName(tt.namespace); got != tt.want {
			t.Errorf("tableName(%q): expected %q, got %q", tt.namespace, tt.want, got)
		}
	}

	// non-identifier namespaces that differ must not collide
	if tableName("a-b") == tableName("a_b") {
		t.Errorf("Expected distinct tables for %q and %q", "a-b", "a_b")
	}
}

func TestOpenFailureDoesNotPoisonStore(t *testing.T) {
	ctx := context.Background()

	s := New(Config{Path: "", Namespace: "ns", Version: 1})
	if err := s.Set(ctx, "key", "v"); err == nil {
		t.Fatalf("Expected Set to fail without a database path")
	}

	// every subsequent operation keeps failing cleanly rather than
	// panicking on a half-open handle
	if _, err := s.Size(ctx); err == nil {
		t.Errorf("Expected Size to fail without a database path")
	}
}

func TestConcurrentSetGet(t *testing.T) {
	s := New(Config{
		Path:      filepath.Join(t.TempDir(), "store.db"),
		Namespace: "ns",
		Version:   1,
	})
	ctx := context.Background()

	// concurrent first operations share one connection open
	const goroutines = 8
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
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

	size, err := s.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != goroutines*25 {
		t.Errorf("Expected %d live entries, got %d", goroutines*25, size)
	}
}
