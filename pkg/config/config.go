// Package config provides YAML-backed parameter presets for the analysis
// pipeline, so a set of tuned parameters can be saved alongside a batch of
// micrographs and reloaded later.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk representation of a parameter preset.
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// Threshold is the binarization threshold in [0,1]; pixels strictly
		// darker than it are foreground.
		Threshold float64 `yaml:"threshold"`

		// Repair enables seeded region-growing hole repair of the raw mask.
		Repair bool `yaml:"repair"`

		// MarkerQuantile controls marker extraction: a marker pixel must be
		// farther from background than this fraction of all pixels.
		MarkerQuantile float64 `yaml:"markerQuantile"`

		// BorderMargin removes segments within this many pixels of the frame.
		BorderMargin int `yaml:"borderMargin"`
	} `yaml:"segmentation"`

	// Sizing parameters
	Sizing struct {
		// BarLength is the physical length of the scale bar in the image.
		BarLength float64 `yaml:"barLength"`

		// MinSize and MaxSize bound the expected particle size window
		// (physical units, exclusive on both ends).
		MinSize float64 `yaml:"minSize"`
		MaxSize float64 `yaml:"maxSize"`
	} `yaml:"sizing"`

	// Output parameters
	Output struct {
		// DebugDir, when set, receives PNG dumps of intermediate artifacts.
		DebugDir string `yaml:"debugDir"`

		// Verbose enables debug-level logging.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// Default returns a preset with the same defaults the UI starts from.
func Default() *Config {
	cfg := &Config{}
	cfg.Segmentation.Threshold = 0.5
	cfg.Segmentation.Repair = false
	cfg.Segmentation.MarkerQuantile = 0.90
	cfg.Segmentation.BorderMargin = 5
	cfg.Sizing.BarLength = 100
	cfg.Sizing.MinSize = 0
	cfg.Sizing.MaxSize = 40
	return cfg
}

// Load reads a preset from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes a preset to a YAML file, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
