package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.SceneParams() != field.DefaultParams() {
		t.Errorf("scene params differ from defaults: %+v", cfg.SceneParams())
	}
	if cfg.InputParams() != input.DefaultParams() {
		t.Errorf("input params differ from defaults: %+v", cfg.InputParams())
	}
	if cfg.RenderParams() != render.DefaultParams() {
		t.Errorf("render params differ from defaults: %+v", cfg.RenderParams())
	}
	if cfg.Render.LayerOpacity != 0.65 {
		t.Errorf("expected layer opacity 0.65, got %f", cfg.Render.LayerOpacity)
	}
	if cfg.Policy() != host.PolicyNone {
		t.Errorf("expected none policy, got %s", cfg.Policy())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("terminal")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Render.FocalLength != 80 {
		t.Errorf("expected focal length 80, got %f", cfg.Render.FocalLength)
	}

	cfg.Render.FocalLength = 1
	if GetPreset("terminal").Render.FocalLength != 80 {
		t.Error("expected preset to be copied")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg.Preset != name {
			t.Errorf("%s: preset field is %q", name, cfg.Preset)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"calm", "subtle", "terminal", "warp"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fps", func(c *Config) { c.FPS = 0 }},
		{"max depth", func(c *Config) { c.Scene.MaxDepth = 0 }},
		{"decay", func(c *Config) { c.Scene.DecayRate = -1 }},
		{"decay beyond depth", func(c *Config) { c.Scene.DecayRate = 3000 }},
		{"damping", func(c *Config) { c.Input.Damping = 1.5 }},
		{"focal", func(c *Config) { c.Render.FocalLength = 0 }},
		{"vertices", func(c *Config) { c.Render.GemVertices = 2 }},
		{"opacity", func(c *Config) { c.Render.LayerOpacity = 2 }},
		{"permission", func(c *Config) { c.Permission = "maybe" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, field.ErrInvalidConfig) {
			t.Errorf("%s: expected invalid config, got %v", tt.name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parallax.yaml")
	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.Scene.StarsFull = 42

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n%+v\n%+v", loaded, cfg)
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parallax.yaml")
	data := "preset: terminal\nscene:\n  stars_full: 50\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene.StarsFull != 50 {
		t.Errorf("expected file value 50, got %d", cfg.Scene.StarsFull)
	}
	if cfg.Render.FocalLength != 80 {
		t.Errorf("expected preset focal length 80, got %f", cfg.Render.FocalLength)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("preset: nope\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, field.ErrInvalidConfig) {
		t.Errorf("expected invalid config for unknown preset, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("fps: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); !errors.Is(err, field.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}
