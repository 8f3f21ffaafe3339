// Package config loads the daemon settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the settings file inside Dir.
const FileName = "config.toml"

// Config is the full daemon configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen"`
	// StaticDir is served at / when set.
	StaticDir string `toml:"static_dir"`
	// InitialScene is installed at startup; empty starts on the idle view.
	InitialScene string `toml:"initial_scene"`
	TickFPS      int    `toml:"tick_fps"`
	// PreviewEvery publishes a preview JPEG every N ticks.
	PreviewEvery   int  `toml:"preview_every"`
	PreviewQuality int  `toml:"preview_quality"`
	Tray           bool `toml:"tray"`

	Source   Source   `toml:"source"`
	Display  Display  `toml:"display"`
	Tracking Tracking `toml:"tracking"`
	Record   Record   `toml:"record"`
}

// Source is the tracking backend the daemon dials. Leave URL empty to
// accept pushes on /api/landmarks only.
type Source struct {
	URL         string `toml:"url"`
	ReconnectMs int    `toml:"reconnect_ms"`
	// Replay plays back a recorded session instead of dialing URL.
	Replay string `toml:"replay"`
}

// Display is the render surface size.
type Display struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Tracking describes the landmark stream.
type Tracking struct {
	SourceWidth  float64    `toml:"source_width"`
	SourceHeight float64    `toml:"source_height"`
	HandScale    [3]float32 `toml:"hand_scale"`
	FaceScale    [3]float32 `toml:"face_scale"`
	FaceCapacity int        `toml:"face_capacity"`
	HandCapacity int        `toml:"hand_capacity"`
}

// Record controls session recording.
type Record struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
	Label   string `toml:"label"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:         ":8080",
		TickFPS:        60,
		PreviewEvery:   4,
		PreviewQuality: 70,
		Tray:           true,
		Source: Source{
			ReconnectMs: 2000,
		},
		Display: Display{Width: 1280, Height: 720},
		Tracking: Tracking{
			SourceWidth:  640,
			SourceHeight: 480,
			HandScale:    [3]float32{0.5, 0.5, 1},
			FaceScale:    [3]float32{1, 1, 1},
			FaceCapacity: 468,
			HandCapacity: 126,
		},
		Record: Record{
			DBPath: filepath.Join(Dir(), "sessions.db"),
		},
	}
}

// Dir returns the settings directory, ~/.abhinaya.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".abhinaya"
	}
	return filepath.Join(home, ".abhinaya")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks ranges that would otherwise fail at runtime.
func (c Config) Validate() error {
	switch {
	case c.TickFPS <= 0:
		return fmt.Errorf("%w: tick_fps must be positive", ErrInvalid)
	case c.Display.Width <= 0 || c.Display.Height <= 0:
		return fmt.Errorf("%w: display size must be positive", ErrInvalid)
	case c.Tracking.SourceWidth <= 0 || c.Tracking.SourceHeight <= 0:
		return fmt.Errorf("%w: tracking source size must be positive", ErrInvalid)
	case c.Tracking.FaceCapacity <= 0 || c.Tracking.HandCapacity <= 0:
		return fmt.Errorf("%w: buffer capacities must be positive", ErrInvalid)
	case c.PreviewQuality < 1 || c.PreviewQuality > 100:
		return fmt.Errorf("%w: preview_quality must be in [1, 100]", ErrInvalid)
	}
	return nil
}
