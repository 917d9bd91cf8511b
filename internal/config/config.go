package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/render"
	"github.com/san-kum/parallaxfield/internal/renderer"
)

const (
	DefaultFPS          = 60
	DefaultTheme        = "night"
	DefaultPermission   = "none"
	DefaultLayerOpacity = 0.65
)

type Config struct {
	Preset     string         `yaml:"preset,omitempty"`
	Seed       int64          `yaml:"seed"`
	FPS        int            `yaml:"fps"`
	Theme      string         `yaml:"theme"`
	Permission string         `yaml:"permission"`
	Scene      SceneConfig    `yaml:"scene"`
	Input      InputConfig    `yaml:"input"`
	Render     RenderConfig   `yaml:"render"`
	Terminal   TerminalConfig `yaml:"terminal"`
}

type SceneConfig struct {
	ConstrainedWidth int     `yaml:"constrained_width"`
	StarsFull        int     `yaml:"stars_full"`
	StarsConstrained int     `yaml:"stars_constrained"`
	Shapes           int     `yaml:"shapes"`
	Spread           float64 `yaml:"spread"`
	MaxDepth         float64 `yaml:"max_depth"`
	DecayRate        float64 `yaml:"decay_rate"`
	TimeStep         float64 `yaml:"time_step"`
	ShapeScale       float64 `yaml:"shape_scale"`
	FloatAmplitude   float64 `yaml:"float_amplitude"`
}

type InputConfig struct {
	Damping      float64 `yaml:"damping"`
	TiltRange    float64 `yaml:"tilt_range"`
	BetaBaseline float64 `yaml:"beta_baseline"`
}

type RenderConfig struct {
	FocalLength   float64 `yaml:"focal_length"`
	ParallaxX     float64 `yaml:"parallax_x"`
	ParallaxY     float64 `yaml:"parallax_y"`
	ShapeParallax float64 `yaml:"shape_parallax"`
	MinRadius     float64 `yaml:"min_radius"`
	RadiusScale   float64 `yaml:"radius_scale"`
	MaxAlpha      float64 `yaml:"max_alpha"`
	LineWidth     float64 `yaml:"line_width"`
	GemVertices   int     `yaml:"gem_vertices"`
	LayerOpacity  float64 `yaml:"layer_opacity"`
}

// TerminalConfig tunes the braille surface of the live view.
type TerminalConfig struct {
	Gain   float64 `yaml:"gain"`
	Cutoff float64 `yaml:"cutoff"`
}

func DefaultConfig() *Config {
	sp := field.DefaultParams()
	ip := input.DefaultParams()
	rp := render.DefaultParams()
	return &Config{
		Seed:       1,
		FPS:        DefaultFPS,
		Theme:      DefaultTheme,
		Permission: DefaultPermission,
		Scene: SceneConfig{
			ConstrainedWidth: sp.ConstrainedWidth,
			StarsFull:        sp.StarsFull,
			StarsConstrained: sp.StarsConstrained,
			Shapes:           sp.ShapesFull,
			Spread:           sp.Spread,
			MaxDepth:         sp.MaxDepth,
			DecayRate:        sp.DecayRate,
			TimeStep:         sp.TimeStep,
			ShapeScale:       sp.ShapeScale,
			FloatAmplitude:   sp.FloatAmplitude,
		},
		Input: InputConfig{
			Damping:      ip.Damping,
			TiltRange:    ip.TiltRange,
			BetaBaseline: ip.BetaBaseline,
		},
		Render: RenderConfig{
			FocalLength:   rp.FocalLength,
			ParallaxX:     rp.ParallaxX,
			ParallaxY:     rp.ParallaxY,
			ShapeParallax: rp.ShapeParallax,
			MinRadius:     rp.MinRadius,
			RadiusScale:   rp.RadiusScale,
			MaxAlpha:      rp.MaxAlpha,
			LineWidth:     rp.LineWidth,
			GemVertices:   rp.GemVertices,
			LayerOpacity:  DefaultLayerOpacity,
		},
		Terminal: TerminalConfig{
			Gain:   1,
			Cutoff: 0.02,
		},
	}
}

// Load reads a YAML file over the defaults, or over the preset it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var base struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if base.Preset != "" {
		if cfg = GetPreset(base.Preset); cfg == nil {
			return nil, fmt.Errorf("%s: %w: unknown preset %q", path, field.ErrInvalidConfig, base.Preset)
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first parameter outside its range.
func (c *Config) Validate() error {
	checks := []struct {
		ok   bool
		name string
	}{
		{c.FPS > 0 && c.FPS <= 240, "fps"},
		{c.Scene.ConstrainedWidth >= 0, "scene.constrained_width"},
		{c.Scene.StarsFull >= 0, "scene.stars_full"},
		{c.Scene.StarsConstrained >= 0, "scene.stars_constrained"},
		{c.Scene.Shapes >= 0, "scene.shapes"},
		{c.Scene.Spread > 0, "scene.spread"},
		{c.Scene.MaxDepth > 0, "scene.max_depth"},
		{c.Scene.DecayRate > 0 && c.Scene.DecayRate < c.Scene.MaxDepth, "scene.decay_rate"},
		{c.Scene.TimeStep >= 0, "scene.time_step"},
		{c.Scene.ShapeScale >= 0, "scene.shape_scale"},
		{c.Input.Damping > 0 && c.Input.Damping <= 1, "input.damping"},
		{c.Input.TiltRange > 0, "input.tilt_range"},
		{c.Render.FocalLength > 0, "render.focal_length"},
		{c.Render.MaxAlpha >= 0 && c.Render.MaxAlpha <= 1, "render.max_alpha"},
		{c.Render.GemVertices >= 3, "render.gem_vertices"},
		{c.Render.LayerOpacity >= 0 && c.Render.LayerOpacity <= 1, "render.layer_opacity"},
		{c.Terminal.Gain > 0, "terminal.gain"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s out of range", field.ErrInvalidConfig, chk.name)
		}
	}
	if _, err := host.ParsePolicy(c.Permission); err != nil {
		return fmt.Errorf("%w: %v", field.ErrInvalidConfig, err)
	}
	return nil
}

// Policy returns the permission policy for in-process hosts.
func (c *Config) Policy() host.Policy {
	p, _ := host.ParsePolicy(c.Permission)
	return p
}

func (c *Config) SceneParams() field.Params {
	return field.Params{
		ConstrainedWidth: c.Scene.ConstrainedWidth,
		StarsFull:        c.Scene.StarsFull,
		StarsConstrained: c.Scene.StarsConstrained,
		ShapesFull:       c.Scene.Shapes,
		Spread:           c.Scene.Spread,
		MaxDepth:         c.Scene.MaxDepth,
		DecayRate:        c.Scene.DecayRate,
		TimeStep:         c.Scene.TimeStep,
		ShapeScale:       c.Scene.ShapeScale,
		FloatAmplitude:   c.Scene.FloatAmplitude,
	}
}

func (c *Config) InputParams() input.Params {
	return input.Params{
		Damping:      c.Input.Damping,
		TiltRange:    c.Input.TiltRange,
		BetaBaseline: c.Input.BetaBaseline,
	}
}

func (c *Config) RenderParams() render.Params {
	return render.Params{
		FocalLength:   c.Render.FocalLength,
		ParallaxX:     c.Render.ParallaxX,
		ParallaxY:     c.Render.ParallaxY,
		ShapeParallax: c.Render.ShapeParallax,
		MinRadius:     c.Render.MinRadius,
		RadiusScale:   c.Render.RadiusScale,
		MaxAlpha:      c.Render.MaxAlpha,
		LineWidth:     c.Render.LineWidth,
		GemVertices:   c.Render.GemVertices,
	}
}

func (c *Config) Renderer() renderer.Config {
	return renderer.Config{
		Scene:  c.SceneParams(),
		Input:  c.InputParams(),
		Render: c.RenderParams(),
	}
}
