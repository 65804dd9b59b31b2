package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

const numShards = 1 << 10 // power of two

// shardLocks guards pixel accumulators; pixel i uses lock i mod numShards
type shardLocks struct{ mu [numShards]sync.Mutex }

func (sl *shardLocks) lock(idx int)   { sl.mu[idx&(numShards-1)].Lock() }
func (sl *shardLocks) unlock(idx int) { sl.mu[idx&(numShards-1)].Unlock() }

// Framebuffer accumulates radiance per pixel. Each pixel holds the sum of
// its samples and their count; the resolved color is sum/count, which does
// not depend on the order samples arrive in.
type Framebuffer struct {
	width, height int
	sum           []core.RGBA
	count         []int
	dropped       atomic.Int64
	locks         shardLocks
}

// NewFramebuffer creates an empty framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		sum:    make([]core.RGBA, width*height),
		count:  make([]int, width*height),
	}
}

// Width returns the framebuffer width in pixels
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the framebuffer height in pixels
func (fb *Framebuffer) Height() int { return fb.height }

// AddSample adds one sample to pixel (x, y). Samples with a non-finite
// channel are dropped and counted instead.
func (fb *Framebuffer) AddSample(x, y int, c core.RGBA) {
	if !c.IsFinite() {
		fb.dropped.Add(1)
		return
	}
	fb.Merge(x, y, c, 1)
}

// Merge adds a locally reduced sum of n samples to pixel (x, y). The sum and
// the count change together.
func (fb *Framebuffer) Merge(x, y int, sum core.RGBA, n int) {
	if n <= 0 {
		return
	}
	idx := y*fb.width + x
	fb.locks.lock(idx)
	acc := &fb.sum[idx]
	acc.RGB = acc.RGB.Add(sum.RGB)
	acc.A += sum.A
	fb.count[idx] += n
	fb.locks.unlock(idx)
}

// Pixel returns the averaged color and sample count of pixel (x, y)
func (fb *Framebuffer) Pixel(x, y int) (core.RGBA, int) {
	idx := y*fb.width + x
	fb.locks.lock(idx)
	sum, n := fb.sum[idx], fb.count[idx]
	fb.locks.unlock(idx)

	if n == 0 {
		return core.RGBA{}, 0
	}
	inv := 1 / float32(n)
	return core.RGBA{RGB: sum.RGB.Scale(inv), A: sum.A * inv}, n
}

// Dropped returns the number of non-finite samples discarded so far
func (fb *Framebuffer) Dropped() int64 {
	return fb.dropped.Load()
}

// Clear discards every accumulated sample
func (fb *Framebuffer) Clear() {
	for i := range fb.sum {
		fb.locks.lock(i)
		fb.sum[i] = core.RGBA{}
		fb.count[i] = 0
		fb.locks.unlock(i)
	}
	fb.dropped.Store(0)
}

// Stats summarizes the sample counts across the framebuffer
func (fb *Framebuffer) Stats() RenderStats {
	stats := RenderStats{TotalPixels: fb.width * fb.height}
	if stats.TotalPixels == 0 {
		return stats
	}
	stats.MinSamples = int(^uint(0) >> 1)
	for i := range fb.count {
		fb.locks.lock(i)
		n := fb.count[i]
		fb.locks.unlock(i)

		stats.TotalSamples += n
		stats.MinSamples = min(stats.MinSamples, n)
		stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, n)
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	stats.Dropped = fb.Dropped()
	return stats
}
