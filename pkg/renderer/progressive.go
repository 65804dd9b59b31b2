package renderer

import (
	"context"
	"errors"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// ErrStopped can be returned by a progressive callback to end the render
// early without reporting a failure
var ErrStopped = errors.New("progressive render stopped")

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber  int
	TotalPasses int
	Image       *image.NRGBA // snapshot owned by the receiver
	Stats       RenderStats
	IsLast      bool
}

// samplesForPass calculates the target total samples after a given pass.
// The first pass is a one-sample preview; the rest of the budget is spread
// evenly over the remaining passes and the last pass takes what is left.
func samplesForPass(passNumber, passes, total int) int {
	if passes <= 1 || total <= 1 {
		return total
	}
	if passNumber == 1 {
		return 1
	}
	if passNumber >= passes {
		return total
	}

	perPass := (total - 1) / (passes - 1)
	return min(1+(passNumber-1)*perPass, total)
}

// RenderProgressive renders Config.Samples samples per pixel over
// Config.Passes passes, starting from an empty framebuffer, and hands a
// snapshot of the image to callback after every pass. A callback error ends
// the render; ErrStopped ends it without an error.
func (t *Tracer) RenderProgressive(ctx context.Context, s *scene.Scene, callback func(PassResult) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset()
	passes := t.config.Passes
	total := t.config.Samples

	t.logger.Info("progressive render started", zap.Int("passes", passes), zap.Int("samples", total))

	for pass := 1; pass <= passes; pass++ {
		if err := ctx.Err(); err != nil {
			t.logger.Info("progressive render cancelled", zap.Int("pass", pass))
			return err
		}

		target := samplesForPass(pass, passes, total)
		if target <= t.taken {
			continue
		}

		startTime := time.Now()
		stats, err := t.accumulate(ctx, s, target-t.taken)
		if err != nil {
			return err
		}

		isLast := pass == passes || t.taken >= total
		t.logger.Info("pass completed",
			zap.Int("pass", pass),
			zap.Duration("duration", time.Since(startTime)),
			zap.Float64("avg_samples", stats.AverageSamples))

		if callback != nil {
			snapshot := image.NewNRGBA(t.output.Rect)
			copy(snapshot.Pix, t.output.Pix)
			err := callback(PassResult{
				PassNumber:  pass,
				TotalPasses: passes,
				Image:       snapshot,
				Stats:       stats,
				IsLast:      isLast,
			})
			if errors.Is(err, ErrStopped) {
				return nil
			}
			if err != nil {
				return err
			}
		}
		if isLast {
			break
		}
	}
	return nil
}
