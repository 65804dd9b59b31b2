// Package config handles renderer configuration loading and management.
package config

import (
	"fmt"

	"github.com/df07/go-analytic-raytracer/pkg/integrator"
	"github.com/df07/go-analytic-raytracer/pkg/renderer"
)

// Config holds all renderer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Web     WebConfig     `yaml:"web"`
}

// RenderConfig holds image and sampling settings.
type RenderConfig struct {
	Scene     string  `yaml:"scene"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Samples   int     `yaml:"samples"`
	Passes    int     `yaml:"passes"`
	MaxDepth  int     `yaml:"max_depth"`
	MinWeight float32 `yaml:"min_weight"`
	Workers   int     `yaml:"workers"`   // 0 = CPU count
	TileSize  int     `yaml:"tile_size"` // pixels per tile side
	Seed      uint64  `yaml:"seed"`
	ToneMap   string  `yaml:"tone_map"` // none, reinhard
	Exposure  float32 `yaml:"exposure"`
	Shadows   bool    `yaml:"shadows"`
	Antialias bool    `yaml:"antialias"`
}

// OutputConfig holds where and how rendered images are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png, bmp, tiff
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// WebConfig holds the HTTP server settings.
type WebConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Scene:     "hexagon",
			Width:     400,
			Height:    400,
			Samples:   16,
			Passes:    5,
			MaxDepth:  5,
			MinWeight: 0.01,
			Workers:   0,
			TileSize:  32,
			Seed:      1,
			ToneMap:   string(renderer.ToneMapNone),
			Exposure:  1,
			Shadows:   true,
			Antialias: true,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Web: WebConfig{
			Port: 8080,
		},
	}
}

// TracerConfig converts the render section into tracer settings.
func (r RenderConfig) TracerConfig() (renderer.Config, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return renderer.Config{}, fmt.Errorf("invalid image size %dx%d", r.Width, r.Height)
	}
	toneMap, err := renderer.ParseToneMap(r.ToneMap)
	if err != nil {
		return renderer.Config{}, err
	}

	cfg := renderer.DefaultConfig()
	cfg.Samples = r.Samples
	cfg.Passes = r.Passes
	cfg.TileSize = r.TileSize
	cfg.Workers = r.Workers
	cfg.Seed = r.Seed
	cfg.ToneMap = toneMap
	cfg.Exposure = r.Exposure
	cfg.Integrator = integrator.Config{
		MaxDepth:  r.MaxDepth,
		MinWeight: r.MinWeight,
		Shadows:   r.Shadows,
		Antialias: r.Antialias,
	}
	return cfg, nil
}
