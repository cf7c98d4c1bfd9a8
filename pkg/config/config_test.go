package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets", "preset.yaml")

	cfg := Default()
	cfg.Segmentation.Threshold = 0.42
	cfg.Segmentation.Repair = true
	cfg.Segmentation.MarkerQuantile = 0.95
	cfg.Segmentation.BorderMargin = 8
	cfg.Sizing.BarLength = 50
	cfg.Sizing.MinSize = 5
	cfg.Sizing.MaxSize = 30
	cfg.Output.DebugDir = "/tmp/debug"
	cfg.Output.Verbose = true

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("segmentation:\n  threshold: 0.3\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Segmentation.Threshold)
	// Unspecified fields keep the defaults.
	assert.Equal(t, 0.90, cfg.Segmentation.MarkerQuantile)
	assert.Equal(t, 40.0, cfg.Sizing.MaxSize)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
