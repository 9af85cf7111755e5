package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"saucer-wad-exporter/internal/texture"
)

// Config holds the input path and extraction settings.
type Config struct {
	// Paths
	WADPath   string `json:"wad_path"`
	OutputDir string `json:"output_dir"`

	// Output settings
	ImageFormat   string `json:"image_format"`
	BitmapScale   int    `json:"bitmap_scale"`
	Workers       int    `json:"workers"`
	WriteManifest *bool  `json:"write_manifest"`

	SkipSounds  bool `json:"skip_sounds"`
	SkipModels  bool `json:"skip_models"`
	SkipBitmaps bool `json:"skip_bitmaps"`

	// AnyVersion reads containers with an unexpected header version.
	AnyVersion bool `json:"any_version"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies CLI overrides and fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	if flags.WADPath != "" {
		c.WADPath = flags.WADPath
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.ImageFormat != "" {
		c.ImageFormat = flags.ImageFormat
	}
	if flags.BitmapScale > 0 {
		c.BitmapScale = flags.BitmapScale
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.NoManifest {
		c.WriteManifest = new(bool)
	}
	c.SkipSounds = c.SkipSounds || flags.SkipSounds
	c.SkipModels = c.SkipModels || flags.SkipModels
	c.SkipBitmaps = c.SkipBitmaps || flags.SkipBitmaps
	c.AnyVersion = c.AnyVersion || flags.AnyVersion

	if c.WADPath == "" {
		return fmt.Errorf("config: no WAD file given")
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir(c.WADPath)
	}

	if c.ImageFormat == "" {
		c.ImageFormat = string(texture.FormatPNG)
	}
	f, err := texture.ParseFormat(c.ImageFormat)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.ImageFormat = string(f)

	if c.BitmapScale <= 0 {
		c.BitmapScale = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.WriteManifest == nil {
		on := true
		c.WriteManifest = &on
	}
	return nil
}

// Format returns the resolved image format.
func (c *Config) Format() texture.Format { return texture.Format(c.ImageFormat) }

// Manifest reports whether manifest.json is written.
func (c *Config) Manifest() bool { return c.WriteManifest == nil || *c.WriteManifest }

// DefaultOutputDir returns "<stem>_wad_exported", relative to the working
// directory.
func DefaultOutputDir(wadPath string) string {
	base := filepath.Base(wadPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_wad_exported"
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	WADPath     string
	OutputDir   string
	ImageFormat string
	BitmapScale int
	Workers     int
	NoManifest  bool
	SkipSounds  bool
	SkipModels  bool
	SkipBitmaps bool
	AnyVersion  bool
}
