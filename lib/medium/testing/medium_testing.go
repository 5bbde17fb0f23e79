package testing

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/ttlstore/lib/medium"
)

// RunMediumTests runs a conformance test suite against a medium.IMedium
// implementation. Every medium implementation should pass this suite.
func RunMediumTests(t *testing.T, name string, factory medium.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, mustCreate(t, factory))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, mustCreate(t, factory))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, mustCreate(t, factory))
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, mustCreate(t, factory))
		})

		t.Run("AwkwardKeys", func(t *testing.T) {
			testAwkwardKeys(t, mustCreate(t, factory))
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, mustCreate(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustCreate(t *testing.T, factory medium.Factory) medium.IMedium {
	t.Helper()
	m, err := factory()
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	return m
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, m medium.IMedium) {
	defer m.Close()

	if err := m.Set("test-key", "test-value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := m.Get("test-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Errorf("Expected key %q to exist after Set", "test-key")
	}
	if value != "test-value" {
		t.Errorf("Expected value %q, got %q", "test-value", value)
	}

	_, found, err = m.Get("nonexistent-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected nonexistent key to return found=false")
	}
}

func testOverwrite(t *testing.T, m medium.IMedium) {
	defer m.Close()

	if err := m.Set("key", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set("key", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := m.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || value != "second" {
		t.Errorf("Expected overwritten value %q, got %q (found=%v)", "second", value, found)
	}
}

func testDelete(t *testing.T, m medium.IMedium) {
	defer m.Close()

	if err := m.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found, err := m.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected key to be gone after Delete")
	}

	// deleting an absent key must not fail
	if err := m.Delete("never-written"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func testKeys(t *testing.T, m medium.IMedium) {
	defer m.Close()

	want := []string{"a", "b", "c"}
	for _, key := range want {
		if err := m.Set(key, "value-"+key); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := m.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}

	sort.Strings(keys)
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d (%v)", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected key %q at position %d, got %q", want[i], i, keys[i])
		}
	}
}

func testAwkwardKeys(t *testing.T, m medium.IMedium) {
	defer m.Close()

	// keys in the shapes the store layer actually produces
	keys := []string{
		"session:user-1",
		"__store:lastGcMs:memory:v1:session",
		"with/slash",
		"with space",
		"ünïcödé",
	}

	for _, key := range keys {
		if err := m.Set(key, "v:"+key); err != nil {
			t.Fatalf("Set(%q) failed: %v", key, err)
		}
	}

	for _, key := range keys {
		value, found, err := m.Get(key)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", key, err)
		}
		if !found || value != "v:"+key {
			t.Errorf("Key %q: expected %q, got %q (found=%v)", key, "v:"+key, value, found)
		}
	}
}

func testConcurrentAccess(t *testing.T, m medium.IMedium) {
	defer m.Close()

	const (
		goroutines = 8
		perRoutine = 50
	)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perRoutine; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i)
				if err := m.Set(key, key); err != nil {
					t.Errorf("Set(%q) failed: %v", key, err)
					return
				}
				if _, _, err := m.Get(key); err != nil {
					t.Errorf("Get(%q) failed: %v", key, err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	keys, err := m.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != goroutines*perRoutine {
		t.Errorf("Expected %d keys after concurrent writes, got %d", goroutines*perRoutine, len(keys))
	}
}
