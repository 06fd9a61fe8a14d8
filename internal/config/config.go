// Package config holds the application settings of the haptics tools: a
// config file (JSON, YAML or TOML) overridden by command-line flags, with
// defaults filled in by Resolve.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and preview settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" yaml:"base_dir" toml:"base_dir"`
	AssetDir  string `json:"asset_dir" yaml:"asset_dir" toml:"asset_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	StorePath string `json:"store_path" yaml:"store_path" toml:"store_path"`

	// Build settings
	HighPoly bool `json:"high_poly" yaml:"high_poly" toml:"high_poly"`

	// Preview settings
	PreviewSize int `json:"preview_size" yaml:"preview_size" toml:"preview_size"`
	Supersample int `json:"supersample" yaml:"supersample" toml:"supersample"`
	Workers     int `json:"workers" yaml:"workers" toml:"workers"`
}

// Load reads a config file, picking the format from the extension
// (.json, .yaml/.yml, .toml). Fields not set in the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.AssetDir != "" {
		c.AssetDir = flags.AssetDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.StorePath != "" {
		c.StorePath = flags.StorePath
	}
	if flags.HighPoly {
		c.HighPoly = true
	}
	if flags.Size > 0 {
		c.PreviewSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.AssetDir = resolvePath(c.BaseDir, c.AssetDir, "Assets")
		c.OutputDir = resolvePath(c.BaseDir, c.OutputDir, "Previews")
		if c.StorePath != "" && c.StorePath != ":memory:" {
			c.StorePath = resolvePath(c.BaseDir, c.StorePath, "")
		}
	}

	// Defaults for preview settings
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// LowPoly reports whether node visuals use the 20-triangle proxy.
func (c *Config) LowPoly() bool { return !c.HighPoly }

func resolvePath(base, p, def string) string {
	if p == "" {
		if def == "" {
			return ""
		}
		return filepath.Join(base, def)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir   string
	AssetDir  string
	OutputDir string
	StorePath string
	HighPoly  bool
	Size      int
	Workers   int
}

// detectBaseDir looks for an "Assets/Visualizers" tree next to the
// executable or the working directory.
func detectBaseDir() string {
	marker := filepath.Join("Assets", "Visualizers")

	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if _, err := os.Stat(filepath.Join(base, marker)); err == nil {
				return base
			}
		}
	}

	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if _, err := os.Stat(filepath.Join(base, marker)); err == nil {
			return base
		}
	}
	return ""
}
