// Package config handles configuration file loading and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultDuration is how long the flash window stays visible when no
// duration is configured.
const DefaultDuration = Duration(100 * time.Millisecond)

// DefaultColor is the flash color when none is configured. "white" maps to
// the screen's white pixel without a color allocation round trip.
const DefaultColor = "white"

// Config is the validated settings record for the bell flash window.
// It is built once at startup (defaults, then config file, then CLI flags)
// and read-only afterwards.
type Config struct {
	X        int32     `toml:"x"`
	Y        int32     `toml:"y"`
	Width    Dimension `toml:"width"`
	Height   Dimension `toml:"height"`
	Duration Duration  `toml:"duration"`
	Color    string    `toml:"color"`
	Display  string    `toml:"display"`

	// OneShot selects flash-once-and-exit mode. It is a run mode, not a
	// persistent setting, so it is CLI-only.
	OneShot bool `toml:"-"`
}

// DefaultConfig returns a Config with default values: a full-screen white
// flash at the origin for 100ms.
func DefaultConfig() *Config {
	return &Config{
		X:        0,
		Y:        0,
		Width:    MatchDisplay(),
		Height:   MatchDisplay(),
		Duration: DefaultDuration,
		Color:    DefaultColor,
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "visbell", "config.toml")
}

// Load loads configuration from the specified path.
// If path is empty, the default config path is used.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the settings fit on the X11 wire: positions are
// INT16 and the duration is non-negative. Sizes are already bounded by the
// Dimension parser.
func (c *Config) Validate() error {
	if c.X < math.MinInt16 || c.X > math.MaxInt16 {
		return fmt.Errorf("invalid x position %d: must be between %d and %d", c.X, math.MinInt16, math.MaxInt16)
	}
	if c.Y < math.MinInt16 || c.Y > math.MaxInt16 {
		return fmt.Errorf("invalid y position %d: must be between %d and %d", c.Y, math.MinInt16, math.MaxInt16)
	}
	if c.Duration < 0 {
		return fmt.Errorf("invalid duration %s: must not be negative", c.Duration)
	}
	return nil
}
