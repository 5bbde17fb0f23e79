package filemedium

import (
	"testing"

	"github.com/ValentinKolb/ttlstore/lib/medium"
	mediumtesting "github.com/ValentinKolb/ttlstore/lib/medium/testing"
)

func Test(t *testing.T) {
	mediumtesting.RunMediumTests(t, "FileMedium", func() (medium.IMedium, error) {
		return New(t.TempDir())
	})
}

func TestPersistence(t *testing.T) {
	root := t.TempDir()

	m, err := New(root)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.Set("session:alpha", "payload"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// a second medium over the same root sees the data
	m2, err := New(root)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m2.Close()

	value, found, err := m2.Get("session:alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || value != "payload" {
		t.Errorf("Expected persisted value %q, got %q (found=%v)", "payload", value, found)
	}
}

func TestRejectsEmptyRoot(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Errorf("Expected error for empty root directory")
	}
}
