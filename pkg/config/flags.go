package config

import "flag"

// Flags are the command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config   string
	Debug    bool
	Scene    string
	Width    int
	Height   int
	Samples  int
	Passes   int
	Workers  int
	ToneMap  string
	Exposure float64
	Format   string
	Out      string
	Port     int
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Scene, "scene", "", "Built-in scene name")
	fs.IntVar(&f.Width, "width", 0, "Image width")
	fs.IntVar(&f.Height, "height", 0, "Image height")
	fs.IntVar(&f.Samples, "samples", 0, "Samples per pixel")
	fs.IntVar(&f.Passes, "passes", 0, "Progressive passes")
	fs.IntVar(&f.Workers, "workers", 0, "Worker goroutines (0 = CPU count)")
	fs.StringVar(&f.ToneMap, "tonemap", "", "Tone map: none or reinhard")
	fs.Float64Var(&f.Exposure, "exposure", 0, "Exposure multiplier")
	fs.StringVar(&f.Format, "format", "", "Output format: png, bmp or tiff")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.IntVar(&f.Port, "port", 0, "Web server port")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Scene != "" {
		cfg.Render.Scene = f.Scene
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.Samples > 0 {
		cfg.Render.Samples = f.Samples
	}
	if f.Passes > 0 {
		cfg.Render.Passes = f.Passes
	}
	if f.Workers > 0 {
		cfg.Render.Workers = f.Workers
	}
	if f.ToneMap != "" {
		cfg.Render.ToneMap = f.ToneMap
	}
	if f.Exposure > 0 {
		cfg.Render.Exposure = float32(f.Exposure)
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Port > 0 {
		cfg.Web.Port = f.Port
	}
}
