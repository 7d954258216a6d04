package host

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStorage(dir, "lounge")
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	if s.Path() != filepath.Join(dir, "lounge.json") {
		t.Errorf("Path() = %s", s.Path())
	}

	var leds int
	found, err := s.Get("leds", &leds)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected empty storage")
	}

	if err := s.Set("leds", 42); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("color", "#E05B22"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A fresh instance must read what the first one wrote.
	reopened, _ := NewFileStorage(dir, "lounge")

	found, err = reopened.Get("leds", &leds)
	if err != nil || !found || leds != 42 {
		t.Errorf("Get(leds) = %d, %v, %v; want 42, true, nil", leds, found, err)
	}

	var color string
	found, err = reopened.Get("color", &color)
	if err != nil || !found || color != "#E05B22" {
		t.Errorf("Get(color) = %q, %v, %v", color, found, err)
	}
}

func TestFileStorageCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	s, err := NewFileStorage(dir, "desk")
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	if err := s.Set("color_idx", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "desk.json")); err != nil {
		t.Errorf("Expected storage file to exist: %v", err)
	}
}

func TestFileStorageCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s, _ := NewFileStorage(dir, "bad")
	var v int
	if _, err := s.Get("leds", &v); err == nil {
		t.Error("Expected error for corrupt storage")
	}
}

func TestNewFileStorageRejectsTraversal(t *testing.T) {
	if _, err := NewFileStorage(t.TempDir(), "../escape"); err == nil {
		t.Error("Expected error for traversal in name")
	}
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()

	var v string
	if found, _ := s.Get("color", &v); found {
		t.Error("Expected key to be missing")
	}
	if err := s.Set("color", "000000"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if found, err := s.Get("color", &v); !found || err != nil || v != "000000" {
		t.Errorf("Get() = %q, %v, %v", v, found, err)
	}
}
