package accel

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// Option configures a BVHDevice
type Option func(*BVHDevice)

// WithMaxPrimitives limits the total number of primitives registered across
// all scenes of the device. Zero means unlimited.
func WithMaxPrimitives(n int) Option {
	return func(d *BVHDevice) { d.maxPrimitives = n }
}

// WithMaxScenes limits the number of open scenes. Zero means unlimited.
func WithMaxScenes(n int) Option {
	return func(d *BVHDevice) { d.maxScenes = n }
}

// WithLogger sets the logger used for build diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(d *BVHDevice) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// BVHDevice is an in-process engine building a bounding volume hierarchy
// over registered primitives
type BVHDevice struct {
	maxPrimitives int
	maxScenes     int
	logger        *zap.Logger

	mu         sync.Mutex
	primitives int
	scenes     map[*bvhScene]struct{}
	pending    error
	closed     bool
}

// NewDevice creates a BVH engine device
func NewDevice(opts ...Option) *BVHDevice {
	d := &BVHDevice{
		logger: zap.NewNop(),
		scenes: make(map[*bvhScene]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewScene creates an empty scene
func (d *BVHDevice) NewScene() (Scene, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.maxScenes > 0 && len(d.scenes) >= d.maxScenes {
		return nil, fmt.Errorf("%w: scene limit %d reached", ErrResourceExhausted, d.maxScenes)
	}

	s := &bvhScene{
		device: d,
		geoms:  make(map[core.GeomID]registration),
		nextID: 1,
	}
	d.scenes[s] = struct{}{}
	return s, nil
}

// Err returns the first pending error and clears it
func (d *BVHDevice) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.pending
	d.pending = nil
	return err
}

// Close closes every open scene and the device itself
func (d *BVHDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	scenes := make([]*bvhScene, 0, len(d.scenes))
	for s := range d.scenes {
		scenes = append(scenes, s)
	}
	d.mu.Unlock()

	var err error
	for _, s := range scenes {
		err = multierr.Append(err, s.Close())
	}
	return err
}

// post queues an asynchronous error; only the first one is kept
func (d *BVHDevice) post(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		d.pending = err
	}
}

func (d *BVHDevice) reserve(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.maxPrimitives > 0 && d.primitives+n > d.maxPrimitives {
		return fmt.Errorf("%w: %d primitives requested, %d of %d in use",
			ErrResourceExhausted, n, d.primitives, d.maxPrimitives)
	}
	d.primitives += n
	return nil
}

func (d *BVHDevice) release(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.primitives -= n
}

func (d *BVHDevice) forget(s *bvhScene) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.scenes, s)
}

type registration struct {
	n     int
	prims Primitives
}

// bvhScene implements Scene. The built tree is published atomically so
// traversal never takes a lock.
type bvhScene struct {
	device *BVHDevice

	mu     sync.Mutex
	geoms  map[core.GeomID]registration
	nextID core.GeomID
	closed bool

	tree atomic.Pointer[bvh]
}

func (s *bvhScene) Register(n int, prims Primitives) (core.GeomID, error) {
	if n <= 0 || prims == nil {
		return core.InvalidGeomID, fmt.Errorf("%w: register %d primitives", ErrInvalidArgument, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.InvalidGeomID, ErrClosed
	}
	if err := s.device.reserve(n); err != nil {
		return core.InvalidGeomID, err
	}

	id := s.nextID
	s.nextID++
	s.geoms[id] = registration{n: n, prims: prims}
	s.tree.Store(nil)
	return id, nil
}

func (s *bvhScene) Deregister(id core.GeomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	reg, ok := s.geoms[id]
	if !ok {
		return fmt.Errorf("%w: unknown geometry %d", ErrInvalidArgument, id)
	}

	delete(s.geoms, id)
	s.device.release(reg.n)
	s.tree.Store(nil)
	return nil
}

// Commit rebuilds the hierarchy from the current bounds of every registered
// primitive
func (s *bvhScene) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	start := time.Now()
	ids := make([]core.GeomID, 0, len(s.geoms))
	total := 0
	for id, reg := range s.geoms {
		ids = append(ids, id)
		total += reg.n
	}
	slices.Sort(ids)

	refs := make([]primRef, 0, total)
	for _, id := range ids {
		reg := s.geoms[id]
		for item := 0; item < reg.n; item++ {
			box := reg.prims.Bounds(item)
			if !box.IsValid() {
				err := fmt.Errorf("%w: geometry %d item %d: %v", ErrInvalidBounds, id, item, box)
				s.device.post(err)
				return err
			}
			refs = append(refs, primRef{box: box, geom: id, item: item, prims: reg.prims})
		}
	}

	tree := newBVH(refs)
	s.tree.Store(tree)

	stats := tree.stats()
	s.device.logger.Debug("bvh built",
		zap.Int("geometries", len(ids)),
		zap.Int("primitives", total),
		zap.Int("nodes", stats.totalNodes),
		zap.Int("leaves", stats.leafNodes),
		zap.Int("max_depth", stats.maxDepth),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *bvhScene) current() *bvh {
	tree := s.tree.Load()
	if tree == nil {
		s.device.post(ErrNotCommitted)
	}
	return tree
}

func (s *bvhScene) Intersect(ray core.Ray) core.HitRecord {
	hit := core.NewHitRecord(ray)
	if tree := s.current(); tree != nil {
		tree.intersect(ray, &hit)
	}
	return hit
}

func (s *bvhScene) IntersectN(rays []core.Ray, hits []core.HitRecord) {
	if len(hits) < len(rays) {
		s.device.post(fmt.Errorf("%w: %d rays, %d hit records", ErrInvalidArgument, len(rays), len(hits)))
		return
	}

	tree := s.current()
	for i, ray := range rays {
		hits[i] = core.NewHitRecord(ray)
		if tree != nil {
			tree.intersect(ray, &hits[i])
		}
	}
}

func (s *bvhScene) Occluded(ray core.Ray) bool {
	tree := s.current()
	return tree != nil && tree.occluded(ray)
}

// Close deregisters everything and returns the scene's budget to the device
func (s *bvhScene) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for id, reg := range s.geoms {
		s.device.release(reg.n)
		delete(s.geoms, id)
	}
	s.tree.Store(nil)
	s.device.forget(s)
	return nil
}
