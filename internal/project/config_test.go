package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[analysis]\nmax-iterations = 32\n")

	manifest, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if manifest.Config.Analysis.MaxIterations != 32 {
		t.Fatalf("expected overridden max-iterations, got %d", manifest.Config.Analysis.MaxIterations)
	}
	if manifest.Config.Analysis.MaxDiagnostics != 100 {
		t.Fatalf("expected default max-diagnostics, got %d", manifest.Config.Analysis.MaxDiagnostics)
	}
	if manifest.Config.Output.Format != "pretty" {
		t.Fatalf("expected default format, got %q", manifest.Config.Output.Format)
	}
	if manifest.Root != dir {
		t.Fatalf("expected root %q, got %q", dir, manifest.Root)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[analysis]\nmax-iterations = 0\n\n[output]\nformat = \"xml\"\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "max-iterations") || !strings.Contains(err.Error(), "format") {
		t.Fatalf("expected both validation failures in error, got: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[analysis]\nmax-iteration = 10\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("expected unknown key error, got: %v", err)
	}
}

func TestLoadFromWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[output]\nformat = \"json\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	manifest, ok, err := LoadFrom(nested)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !ok {
		t.Fatal("expected manifest to be found")
	}
	if manifest.Config.Output.Format != "json" {
		t.Fatalf("expected json format, got %q", manifest.Config.Output.Format)
	}
}

func TestLoadFromWithoutManifestUsesDefaults(t *testing.T) {
	manifest, ok, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if ok {
		t.Fatal("no manifest should be found in an empty temp dir")
	}
	if manifest.Config != Default() {
		t.Fatalf("expected defaults, got %+v", manifest.Config)
	}
}
