package config

import "sort"

// Presets maps a name to a complete configuration.
var Presets = map[string]*Config{
	// subtle is the background as shipped on the web page.
	"subtle": preset("subtle", func(c *Config) {}),

	// terminal scales the scene for braille canvases, where a full-width
	// terminal is only a few hundred sub-pixels wide.
	"terminal": preset("terminal", func(c *Config) {
		c.FPS = 30
		c.Scene.ConstrainedWidth = 100
		c.Scene.StarsFull = 360
		c.Scene.StarsConstrained = 120
		c.Scene.ShapeScale = 0.16
		c.Render.FocalLength = 80
		c.Render.ParallaxX = 3
		c.Render.ParallaxY = 2
		c.Render.MinRadius = 0.5
		c.Terminal.Gain = 2.2
	}),

	"warp": preset("warp", func(c *Config) {
		c.Scene.StarsFull = 1200
		c.Scene.DecayRate = 6
		c.Scene.TimeStep = 0.012
		c.Render.MaxAlpha = 0.9
		c.Input.Damping = 0.12
	}),

	"calm": preset("calm", func(c *Config) {
		c.Scene.StarsFull = 350
		c.Scene.StarsConstrained = 80
		c.Scene.DecayRate = 0.12
		c.Scene.TimeStep = 0.002
		c.Input.Damping = 0.02
		c.Render.ParallaxX = 4
		c.Render.ParallaxY = 3
	}),
}

func preset(name string, tune func(*Config)) *Config {
	c := DefaultConfig()
	c.Preset = name
	tune(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
