// Package config holds the viewer settings read from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"digilib-viewer/internal/display"
	"digilib-viewer/internal/regions"
	"digilib-viewer/internal/zoom"

	"gopkg.in/yaml.v3"
)

// Config holds the viewer settings. Fields missing from the file keep their
// defaults.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`

	// ClickThreshold is the area in square pixels below which a drag counts
	// as a click.
	ClickThreshold float64 `yaml:"click_threshold"`
	// RegionWidth is the normalized size of regions created by a click or
	// from a single point.
	RegionWidth float64 `yaml:"region_width"`

	// Bird's-eye thumbnail.
	BirdWidth  int  `yaml:"bird_width"`
	BirdHeight int  `yaml:"bird_height"`
	ShowBird   bool `yaml:"show_bird"`

	// Interaction
	Mode      string        `yaml:"mode"`
	Animation time.Duration `yaml:"animation"`

	// Region callbacks, by action name; empty means none.
	OnClickRegion string `yaml:"on_click_region"`
	OnNewRegion   string `yaml:"on_new_region"`
	ShowRegions   bool   `yaml:"show_regions"`

	// Measuring units, see measure.Units.
	UnitFrom string `yaml:"unit_from"`
	UnitTo   string `yaml:"unit_to"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		ClickThreshold: zoom.DefaultClickThreshold,
		RegionWidth:    regions.DefaultWidth,
		BirdWidth:      200,
		BirdHeight:     200,
		ShowBird:       true,
		Mode:           display.Embedded.String(),
		Animation:      300 * time.Millisecond,
		OnClickRegion:  regions.ActionZoomToRegion,
		ShowRegions:    true,
		UnitFrom:       "m",
		UnitTo:         "cm",
	}
}

// ErrInvalid marks settings that Validate replaced.
var ErrInvalid = errors.New("invalid setting")

// Validate clamps values to usable ranges. The returned error lists every
// replaced field and matches ErrInvalid; c is usable either way.
func (c *Config) Validate() error {
	def := Default()
	var errs []error
	fix := func(field string, got, use any) {
		errs = append(errs, fmt.Errorf("%w: %s %v, using %v", ErrInvalid, field, got, use))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fix("log_level", c.LogLevel, def.LogLevel)
		c.LogLevel = def.LogLevel
	}
	if c.ClickThreshold <= 0 {
		fix("click_threshold", c.ClickThreshold, def.ClickThreshold)
		c.ClickThreshold = def.ClickThreshold
	}
	if c.RegionWidth <= 0 || c.RegionWidth > 1 {
		fix("region_width", c.RegionWidth, def.RegionWidth)
		c.RegionWidth = def.RegionWidth
	}
	if c.BirdWidth <= 0 {
		fix("bird_width", c.BirdWidth, def.BirdWidth)
		c.BirdWidth = def.BirdWidth
	}
	if c.BirdHeight <= 0 {
		fix("bird_height", c.BirdHeight, def.BirdHeight)
		c.BirdHeight = def.BirdHeight
	}
	if _, err := ParseMode(c.Mode); err != nil {
		fix("mode", c.Mode, def.Mode)
		c.Mode = def.Mode
	}
	if c.Animation < 0 {
		fix("animation", c.Animation, time.Duration(0))
		c.Animation = 0
	}
	if c.UnitFrom == "" {
		fix("unit_from", `""`, def.UnitFrom)
		c.UnitFrom = def.UnitFrom
	}
	if c.UnitTo == "" {
		fix("unit_to", `""`, def.UnitTo)
		c.UnitTo = def.UnitTo
	}
	return errors.Join(errs...)
}

// DisplayMode returns Mode as a display.Mode.
func (c *Config) DisplayMode() display.Mode {
	m, _ := ParseMode(c.Mode)
	return m
}

// ParseMode reads an interaction mode name.
func ParseMode(s string) (display.Mode, error) {
	switch s {
	case display.Embedded.String():
		return display.Embedded, nil
	case display.Fullscreen.String():
		return display.Fullscreen, nil
	}
	return display.Embedded, fmt.Errorf("unknown mode %q", s)
}

// Load reads the settings at path. A missing file yields the defaults. Out
// of range values are clamped and reported with an error matching
// ErrInvalid alongside the usable settings.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path, replacing the file atomically. Invalid
// settings are rejected and nothing is written.
func (c *Config) Save(path string) error {
	check := *c
	if err := check.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// DefaultPath returns the settings file in the user's configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "digilib-viewer.yaml"
	}
	return filepath.Join(dir, "digilib-viewer", "config.yaml")
}
