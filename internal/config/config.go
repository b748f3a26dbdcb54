// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds mapper settings.
type RenderConfig struct {
	MaterialMode              string  `yaml:"material_mode"` // default, ambient, diffuse, ambient_and_diffuse
	ScalarVisibility          bool    `yaml:"scalar_visibility"`
	ScalarMode                string  `yaml:"scalar_mode"`                 // default, point, cell
	ResolveCoincidentTopology string  `yaml:"resolve_coincident_topology"` // off, polygon_offset
	PolygonOffsetFactor       float32 `yaml:"polygon_offset_factor"`
	PolygonOffsetUnits        float32 `yaml:"polygon_offset_units"`
	MaxTextureUnits           int     `yaml:"max_texture_units"` // 0 uses the device limit
	ShaderDumpDir             string  `yaml:"shader_dump_dir"`
	Texture                   string  `yaml:"texture"` // tga, png or bmp; empty uses a checkerboard
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "meshview",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			MaterialMode:              "default",
			ScalarVisibility:          true,
			ScalarMode:                "default",
			ResolveCoincidentTopology: "polygon_offset",
			PolygonOffsetFactor:       1,
			PolygonOffsetUnits:        1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown value %q", field, value)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height))
	}
	err = multierr.Append(err, oneOf("render.material_mode", c.Render.MaterialMode,
		"default", "ambient", "diffuse", "ambient_and_diffuse"))
	err = multierr.Append(err, oneOf("render.scalar_mode", c.Render.ScalarMode,
		"default", "point", "cell"))
	err = multierr.Append(err, oneOf("render.resolve_coincident_topology", c.Render.ResolveCoincidentTopology,
		"off", "polygon_offset"))
	if c.Render.MaxTextureUnits < 0 {
		err = multierr.Append(err, fmt.Errorf("render.max_texture_units: negative value %d", c.Render.MaxTextureUnits))
	}
	err = multierr.Append(err, oneOf("logging.level", c.Logging.Level,
		"debug", "info", "warn", "error"))
	return err
}
