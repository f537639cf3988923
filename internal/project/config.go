// Package project locates and parses borrowck.toml, the optional per-project
// configuration for the verifier. CLI flags override manifest values, which
// override built-in defaults.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the verifier looks for when walking up from the
// target directory.
const ManifestName = "borrowck.toml"

// Config mirrors the borrowck.toml schema.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Output   OutputConfig   `toml:"output"`
}

// AnalysisConfig bounds the dataflow engine.
type AnalysisConfig struct {
	MaxIterations  int `toml:"max-iterations"`
	MaxDiagnostics int `toml:"max-diagnostics"`
}

// OutputConfig selects default rendering for `borrowck check`.
type OutputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

// Manifest is a parsed borrowck.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the built-in configuration used when no manifest exists.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{
			MaxIterations:  64,
			MaxDiagnostics: 100,
		},
		Output: OutputConfig{
			Format: "pretty",
			Color:  "auto",
		},
	}
}

// FindManifest walks up from startDir to locate borrowck.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the manifest at path. Missing keys keep their defaults; present
// keys are validated eagerly so a bad manifest fails before any analysis runs.
func Load(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := validate(path, cfg); err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// LoadFrom finds and parses the nearest manifest above startDir. Returns a
// defaulted manifest with ok=false when none exists.
func LoadFrom(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Default()}, false, nil
	}
	manifest, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return manifest, true, nil
}

func validate(path string, cfg Config) error {
	var errs []error
	if cfg.Analysis.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("[analysis].max-iterations must be positive, got %d", cfg.Analysis.MaxIterations))
	}
	if cfg.Analysis.MaxDiagnostics <= 0 {
		errs = append(errs, fmt.Errorf("[analysis].max-diagnostics must be positive, got %d", cfg.Analysis.MaxDiagnostics))
	}
	switch cfg.Output.Format {
	case "pretty", "json", "sarif", "short":
	default:
		errs = append(errs, fmt.Errorf("[output].format must be pretty, json, sarif or short, got %q", cfg.Output.Format))
	}
	switch strings.ToLower(cfg.Output.Color) {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("[output].color must be auto, always or never, got %q", cfg.Output.Color))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
