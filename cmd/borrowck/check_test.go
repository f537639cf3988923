package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveColor(t *testing.T) {
	if on, err := resolveColor("always"); err != nil || !on {
		t.Fatalf("always: got %v, %v", on, err)
	}
	if on, err := resolveColor("never"); err != nil || on {
		t.Fatalf("never: got %v, %v", on, err)
	}
	if _, err := resolveColor("rainbow"); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
}

func TestStartDirFor(t *testing.T) {
	dir := t.TempDir()
	if got := startDirFor(dir); got != dir {
		t.Fatalf("directory target must be used as-is, got %q", got)
	}
	file := filepath.Join(dir, "m.mir.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := startDirFor(file); got != dir {
		t.Fatalf("file target must use its directory, got %q", got)
	}
}
