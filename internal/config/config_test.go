package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != ":8080" || cfg.TickFPS != 60 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Tracking.HandScale != [3]float32{0.5, 0.5, 1} {
		t.Errorf("hand scale = %v", cfg.Tracking.HandScale)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `
listen = "127.0.0.1:9000"
initial_scene = "scene2"

[source]
url = "ws://127.0.0.1:5000/landmarks"

[tracking]
source_width = 640
source_height = 360
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" || cfg.InitialScene != "scene2" {
		t.Errorf("top-level = %q/%q", cfg.Listen, cfg.InitialScene)
	}
	if cfg.Source.URL != "ws://127.0.0.1:5000/landmarks" {
		t.Errorf("source url = %q", cfg.Source.URL)
	}
	if cfg.Tracking.SourceHeight != 360 {
		t.Errorf("source height = %f, want 360", cfg.Tracking.SourceHeight)
	}
	if cfg.Source.ReconnectMs != 2000 || cfg.Tracking.HandCapacity != 126 {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "listen = "},
		{"unknown key", "colour = \"red\""},
		{"invalid value", "tick_fps = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Record.Enabled = true
	cfg.Display.Width = 800

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Record.Enabled || got.Display.Width != 800 {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.PreviewQuality = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error = %v, want ErrInvalid", err)
	}
}
