package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"digilib-viewer/internal/display"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
log_level: loud
click_threshold: -1
region_width: 0.02
mode: fullscreen
animation: 150ms
on_click_region: showRegionCoords
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "log_level loud")
	assert.Contains(t, err.Error(), "click_threshold -1")
	assert.NotContains(t, err.Error(), "region_width")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5.0, cfg.ClickThreshold)
	assert.Equal(t, 0.02, cfg.RegionWidth)
	assert.Equal(t, display.Fullscreen, cfg.DisplayMode())
	assert.Equal(t, 150*time.Millisecond, cfg.Animation)
	assert.Equal(t, "showRegionCoords", cfg.OnClickRegion)
	assert.Equal(t, 200, cfg.BirdWidth, "untouched fields keep defaults")
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [1, 2"), 0644))
	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.ShowBird = false
	cfg.Mode = "fullscreen"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.False(t, got.ShowBird)
	assert.Equal(t, "fullscreen", got.Mode)
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Mode = "sideways"
	err := cfg.Save(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "mode sideways")
	assert.Equal(t, "sideways", cfg.Mode, "caller's settings untouched")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.BirdWidth = 0
	cfg.Animation = -time.Second
	cfg.UnitTo = ""
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, field := range []string{"bird_width", "animation", "unit_to"} {
		assert.Contains(t, err.Error(), field)
	}
	assert.Equal(t, 200, cfg.BirdWidth)
	assert.Equal(t, time.Duration(0), cfg.Animation)
	assert.Equal(t, "cm", cfg.UnitTo)
	assert.NoError(t, cfg.Validate(), "clamped settings are valid")
}
