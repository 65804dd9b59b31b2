package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/catalog"
	"github.com/df07/go-analytic-raytracer/pkg/config"
	"github.com/df07/go-analytic-raytracer/pkg/logger"
	"github.com/df07/go-analytic-raytracer/pkg/output"
	"github.com/df07/go-analytic-raytracer/pkg/renderer"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

func main() {
	os.Exit(realMain())
}

// realMain runs the command and returns its exit code, so deferred cleanup
// runs before the process exits
func realMain() int {
	flags := config.RegisterFlags(flag.CommandLine)
	help := flag.Bool("help", false, "Show help information")
	list := flag.Bool("list", false, "List built-in scenes and exit")
	flag.Parse()

	if *help {
		printHelp()
		return 0
	}
	if *list {
		for _, info := range catalog.List() {
			fmt.Printf("  %-12s %s\n", info.ID, info.Description)
		}
		return 0
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), true)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filename, err := run(ctx, cfg, log)
	if err != nil {
		log.Error("render failed", zap.Error(err))
		return 1
	}
	log.Info("render saved", zap.String("file", filename))
	return 0
}

func printHelp() {
	fmt.Println("Analytic Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range catalog.List() {
		fmt.Printf("  %-12s %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("  <file>.ply   Triangle mesh loaded from a PLY file")
	fmt.Println()
	fmt.Println("Output will be saved to <out>/<scene>/render_<timestamp>.<format>")
}

// createScene builds a catalog scene, or a mesh scene when name is a .ply path
func createScene(name string, device accel.Device, log *zap.Logger) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("no scene given")
	}
	if strings.EqualFold(filepath.Ext(name), ".ply") {
		return catalog.BuildPLY(name, device, log)
	}
	return catalog.Build(name, device, log)
}

// sceneDirName names the output directory of a scene
func sceneDirName(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".ply") {
		base := filepath.Base(name)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return name
}

// run renders the configured scene and writes the image, returning its path
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (string, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return "", err
	}
	tracerConfig, err := cfg.Render.TracerConfig()
	if err != nil {
		return "", err
	}

	device := accel.NewDevice(accel.WithLogger(log))
	defer device.Close()

	sc, err := createScene(cfg.Render.Scene, device, log)
	if err != nil {
		return "", err
	}
	defer sc.Close()

	tracer, err := renderer.New(cfg.Render.Width, cfg.Render.Height, tracerConfig, log)
	if err != nil {
		return "", err
	}

	log.Info("rendering",
		zap.String("scene", cfg.Render.Scene),
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.Int("samples", tracerConfig.Samples),
		zap.Int("passes", tracerConfig.Passes))

	startTime := time.Now()
	if tracerConfig.Passes > 1 {
		err = tracer.RenderProgressive(ctx, sc, nil)
	} else {
		_, err = tracer.Render(ctx, sc)
	}
	if err != nil {
		return "", err
	}

	stats := tracer.Framebuffer().Stats()
	log.Info("render completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Float64("avg_samples", stats.AverageSamples),
		zap.Int("min_samples", stats.MinSamples),
		zap.Int("max_samples", stats.MaxSamplesUsed))

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(cfg.Output.Dir, sceneDirName(cfg.Render.Scene), fmt.Sprintf("render_%s.%s", timestamp, format))
	if err := output.Save(filename, tracer.Output()); err != nil {
		return "", err
	}
	return filename, nil
}
