package renderer

import (
	"context"
	"image"
	"runtime"
	"sync"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/integrator"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// TileTask is one tile and the sample indices to take in it
type TileTask struct {
	TaskID  int
	Tile    Tile
	Samples sampleRange
}

// TileResult reports a finished task
type TileResult struct {
	TaskID  int
	Samples int   // samples accumulated per pixel
	Dropped int64 // non-finite samples discarded
	Error   error
}

// renderJob is the state shared read-only by every worker of one render call
type renderJob struct {
	ctx        context.Context
	scene      *scene.Scene
	integrator integrator.Integrator
	fb         *Framebuffer
	seed       uint64
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker renders tile tasks with its own sampler and ray batch buffers
type Worker struct {
	ID          int
	job         *renderJob
	taskQueue   chan TileTask
	resultQueue chan TileResult

	sampler *core.StreamSampler
	rays    []core.Ray
	hits    []core.HitRecord
	sums    []core.RGBA
	counts  []int
}

// NewWorkerPool creates a pool of numWorkers workers (0 = CPU count) whose
// queues hold queueSize tasks
func NewWorkerPool(numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, queueSize),
		resultQueue: make(chan TileResult, queueSize),
		numWorkers:  numWorkers,
	}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
			sampler:     core.NewStreamSampler(0, 0),
		})
	}
	return wp
}

// Start begins all workers on job
func (wp *WorkerPool) Start(job *renderJob) {
	for _, worker := range wp.workers {
		worker.job = job
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.renderTile(task)
	}
}

// renderTile takes the task's samples for every pixel of the tile. Samples
// are reduced locally and merged into the framebuffer once, so a pixel's
// sum and count always move together. The context is checked between
// samples; whatever was finished is still merged.
func (w *Worker) renderTile(task TileTask) TileResult {
	job := w.job
	bounds := task.Tile.Bounds
	tileWidth, tileHeight := bounds.Dx(), bounds.Dy()

	w.reserve(tileWidth, tileHeight)
	result := TileResult{TaskID: task.TaskID}

	for sample := task.Samples.Start; sample < task.Samples.End; sample++ {
		if err := job.ctx.Err(); err != nil {
			result.Error = err
			break
		}
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			result.Dropped += w.renderRow(bounds, y, sample)
		}
		result.Samples++
	}

	for ty := 0; ty < tileHeight; ty++ {
		for tx := 0; tx < tileWidth; tx++ {
			i := ty*tileWidth + tx
			job.fb.Merge(bounds.Min.X+tx, bounds.Min.Y+ty, w.sums[i], w.counts[i])
		}
	}
	if result.Dropped > 0 {
		job.fb.dropped.Add(result.Dropped)
	}
	return result
}

// renderRow traces one sample for each pixel of a tile row. Primary rays go
// to the engine as one batch; shading then runs per pixel.
func (w *Worker) renderRow(bounds image.Rectangle, y, sample int) (dropped int64) {
	job := w.job
	width, height := job.fb.Width(), job.fb.Height()
	n := bounds.Dx()
	rays, hits := w.rays[:n], w.hits[:n]

	for i := range rays {
		x := bounds.Min.X + i
		var sampler core.Sampler = core.FixedSampler{Value: 0.5}
		if sample > 0 {
			w.sampler.Reseed(job.seed, core.SampleStream(y*width+x, sample))
			sampler = w.sampler
		}
		jitter := sampler.Get2D()
		lens := sampler.Get2D()
		rays[i] = job.scene.Camera.GenerateRay(float32(x)+jitter[0], float32(y)+jitter[1], width, height, lens)
	}

	job.scene.IntersectN(rays, hits)

	row := (y - bounds.Min.Y) * n
	for i := range rays {
		x := bounds.Min.X + i
		// shading draws from its own stream so it does not depend on how
		// many values ray generation consumed
		w.sampler.Reseed(job.seed+1, core.SampleStream(y*width+x, sample))
		c := job.integrator.Shade(rays[i], hits[i], job.scene, w.sampler)
		if !c.IsFinite() {
			dropped++
			continue
		}
		acc := &w.sums[row+i]
		acc.RGB = acc.RGB.Add(c.RGB)
		acc.A += c.A
		w.counts[row+i]++
	}
	return dropped
}

// reserve sizes and clears the worker's scratch buffers for a tile
func (w *Worker) reserve(tileWidth, tileHeight int) {
	if cap(w.rays) < tileWidth {
		w.rays = make([]core.Ray, tileWidth)
		w.hits = make([]core.HitRecord, tileWidth)
	}
	pixels := tileWidth * tileHeight
	if cap(w.sums) < pixels {
		w.sums = make([]core.RGBA, pixels)
		w.counts = make([]int, pixels)
	}
	w.sums = w.sums[:pixels]
	w.counts = w.counts[:pixels]
	clear(w.sums)
	clear(w.counts)
}
