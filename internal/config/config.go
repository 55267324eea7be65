// Package config loads the engine tunables from the platform config
// directory. Absent files yield defaults; the versioned mapping file is
// handled separately by the mapping package.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vjkit/stagectl/internal/rotation"
)

// Rotation holds the arbitration tunables.
type Rotation struct {
	Sensitivity   float64 `toml:"sensitivity"`
	DebounceMS    int     `toml:"debounce_ms"`
	AngularSpeed  float64 `toml:"angular_speed"`
	CoastFriction float64 `toml:"coast_friction"`
	DragFriction  float64 `toml:"drag_friction"`
	CentroidRate  float64 `toml:"centroid_rate"`
}

// Transition holds the sequencer tunables. The slideshow and the
// randomizer animate independently, so each carries its own strategy.
type Transition struct {
	Strategy           string  `toml:"strategy"`            // slideshow: none, fade or zoom
	RandomizerStrategy string  `toml:"randomizer_strategy"` // mode randomizer: none, fade or zoom
	IntervalSeconds    float64 `toml:"interval_seconds"`
	DurationSeconds    float64 `toml:"duration_seconds"`
}

// Config is the full engine configuration.
type Config struct {
	MIDIPort   string     `toml:"midi_port"`
	Regions    int        `toml:"regions"`
	TickRate   int        `toml:"tick_rate"` // engine ticks per second
	Rotation   Rotation   `toml:"rotation"`
	Transition Transition `toml:"transition"`
}

// Default returns the stock configuration.
func Default() Config {
	rc := rotation.DefaultConfig()
	return Config{
		Regions:  8,
		TickRate: 60,
		Rotation: Rotation{
			Sensitivity:   rc.Sensitivity,
			DebounceMS:    int(rc.Debounce / time.Millisecond),
			AngularSpeed:  rc.AngularSpeed,
			CoastFriction: rc.CoastFriction,
			DragFriction:  rc.DragFriction,
			CentroidRate:  rc.CentroidRate,
		},
		Transition: Transition{
			Strategy:           "fade",
			RandomizerStrategy: "fade",
			IntervalSeconds:    8,
			DurationSeconds:    1.5,
		},
	}
}

// Path returns the full path to the config file.
func Path() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "stagectl", "config.toml"), nil
}

// Load reads the config from disk, returning defaults if not found.
func Load() (Config, error) {
	cfg := Default()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Regions <= 0 {
		cfg.Regions = Default().Regions
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = Default().TickRate
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// RotationConfig converts the tunables into the arbiter's config type.
func (c Config) RotationConfig() rotation.Config {
	return rotation.Config{
		Sensitivity:   c.Rotation.Sensitivity,
		Debounce:      time.Duration(c.Rotation.DebounceMS) * time.Millisecond,
		AngularSpeed:  c.Rotation.AngularSpeed,
		CoastFriction: c.Rotation.CoastFriction,
		DragFriction:  c.Rotation.DragFriction,
		CentroidRate:  c.Rotation.CentroidRate,
	}
}
