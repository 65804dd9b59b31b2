package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/integrator"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// ErrInvalidSize is returned for non-positive image dimensions
var ErrInvalidSize = errors.New("invalid image size")

// Config contains rendering configuration
type Config struct {
	Samples    int     // Samples per pixel for Render and the progressive total
	Passes     int     // Number of progressive passes
	TileSize   int     // Size of each square tile in pixels
	Workers    int     // Number of parallel workers (0 = use CPU count)
	Seed       uint64  // Base seed of the per-sample random streams
	ToneMap    ToneMap // Tone curve applied before sRGB encoding
	Exposure   float32 // Linear scale applied before tone mapping
	AutoCommit bool    // Commit the scene before every render call

	Integrator integrator.Config
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Samples:    16,
		Passes:     5,
		TileSize:   32,
		Workers:    0,
		Seed:       1,
		ToneMap:    ToneMapNone,
		Exposure:   1,
		AutoCommit: true,
		Integrator: integrator.DefaultConfig(),
	}
}

// Tracer renders scenes into a framebuffer and resolves it into an 8-bit
// image. Between calls it keeps only the framebuffer and the output image;
// scenes are passed to every call. Render calls on one Tracer are serialized.
type Tracer struct {
	config     Config
	integrator integrator.Integrator
	logger     *zap.Logger

	mu     sync.Mutex
	fb     *Framebuffer
	output *image.NRGBA
	taken  int // next sample index per pixel
}

// New creates a tracer for a width x height image
func New(width, height int, config Config, logger *zap.Logger) (*Tracer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Exposure <= 0 {
		config.Exposure = 1
	}
	if config.Samples <= 0 {
		config.Samples = 1
	}
	if config.Passes <= 0 {
		config.Passes = 1
	}

	return &Tracer{
		config:     config,
		integrator: integrator.NewDirect(config.Integrator),
		logger:     logger,
		fb:         NewFramebuffer(width, height),
		output:     image.NewNRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Config returns the tracer configuration
func (t *Tracer) Config() Config {
	return t.config
}

// Size returns the image dimensions
func (t *Tracer) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fb.Width(), t.fb.Height()
}

// Render clears the framebuffer and renders Config.Samples samples per pixel
func (t *Tracer) Render(ctx context.Context, s *scene.Scene) (RenderStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset()
	return t.accumulate(ctx, s, t.config.Samples)
}

// Accumulate adds samples more samples per pixel on top of the current
// framebuffer contents
func (t *Tracer) Accumulate(ctx context.Context, s *scene.Scene, samples int) (RenderStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accumulate(ctx, s, samples)
}

// Output returns the image resolved by the last render call. It is updated
// in place by later calls.
func (t *Tracer) Output() *image.NRGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output
}

// Framebuffer returns the accumulation buffer
func (t *Tracer) Framebuffer() *Framebuffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fb
}

// Resize reallocates the framebuffer and output image, discarding samples
func (t *Tracer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.fb = NewFramebuffer(width, height)
	t.output = image.NewNRGBA(image.Rect(0, 0, width, height))
	t.taken = 0
	return nil
}

// Reset discards all accumulated samples
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

func (t *Tracer) reset() {
	t.fb.Clear()
	t.taken = 0
}

// accumulate runs one render call. Must be called with t.mu held.
func (t *Tracer) accumulate(ctx context.Context, s *scene.Scene, samples int) (RenderStats, error) {
	if s == nil {
		return RenderStats{}, errors.New("render: nil scene")
	}
	if samples <= 0 {
		return t.fb.Stats(), nil
	}

	startTime := time.Now()
	if t.config.AutoCommit {
		if err := s.Commit(); err != nil {
			return RenderStats{}, fmt.Errorf("render: %w", err)
		}
	}

	tiles := NewTileGrid(t.fb.Width(), t.fb.Height(), t.config.TileSize)
	workers := t.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	tasks := planTasks(tiles, t.taken, samples, workers)
	pool := NewWorkerPool(workers, len(tasks))

	t.logger.Debug("render started",
		zap.Int("width", t.fb.Width()),
		zap.Int("height", t.fb.Height()),
		zap.Int("first_sample", t.taken),
		zap.Int("samples", samples),
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", pool.GetNumWorkers()))

	pool.Start(&renderJob{
		ctx:        ctx,
		scene:      s,
		integrator: t.integrator,
		fb:         t.fb,
		seed:       t.config.Seed,
	})
	for _, task := range tasks {
		pool.SubmitTask(task)
	}
	pool.Stop()

	// the next call starts after the furthest sample any task reached, so a
	// pixel never takes the same sample index twice
	var renderErr error
	reached := t.taken
	for result, ok := pool.GetResult(); ok; result, ok = pool.GetResult() {
		if result.Error != nil && renderErr == nil {
			renderErr = result.Error
		}
		reached = max(reached, tasks[result.TaskID].Samples.Start+result.Samples)
	}
	t.taken = max(reached, t.taken)

	if renderErr == nil {
		renderErr = s.Err()
		if renderErr != nil {
			renderErr = fmt.Errorf("render: engine: %w", renderErr)
		}
	}

	t.fb.Resolve(t.output, t.config.Exposure, t.config.ToneMap)

	stats := t.fb.Stats()
	stats.Duration = time.Since(startTime)
	if renderErr != nil {
		t.logger.Warn("render stopped", zap.Error(renderErr), zap.Float64("avg_samples", stats.AverageSamples))
		return stats, renderErr
	}

	t.logger.Debug("render finished",
		zap.Duration("duration", stats.Duration),
		zap.Float64("avg_samples", stats.AverageSamples),
		zap.Int64("dropped", stats.Dropped))
	return stats, nil
}

// InspectResult describes what the center ray of a pixel sees
type InspectResult struct {
	X, Y  int
	Ray   core.Ray
	Hit   core.HitRecord
	Point core.Vec3 // hit position; zero on a miss
	Color core.RGBA // shaded color of the center sample
}

// Inspect traces the center ray of pixel (x, y) and shades it. The scene
// must already be committed.
func (t *Tracer) Inspect(s *scene.Scene, x, y int) (InspectResult, error) {
	width, height := t.Size()
	if x < 0 || y < 0 || x >= width || y >= height {
		return InspectResult{}, fmt.Errorf("inspect: pixel (%d, %d) outside %dx%d", x, y, width, height)
	}

	ray := s.Camera.GenerateRay(float32(x)+0.5, float32(y)+0.5, width, height, core.Vec2{0.5, 0.5})
	hit := s.Intersect(ray)
	if err := s.Err(); err != nil {
		return InspectResult{}, fmt.Errorf("inspect: %w", err)
	}

	sampler := core.NewStreamSampler(t.config.Seed+1, core.SampleStream(y*width+x, 0))
	result := InspectResult{
		X:     x,
		Y:     y,
		Ray:   ray,
		Hit:   hit,
		Color: t.integrator.Shade(ray, hit, s, sampler),
	}
	if hit.Hit() {
		result.Point = ray.At(hit.T)
	}
	return result, nil
}
