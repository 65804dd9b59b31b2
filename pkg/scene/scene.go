package scene

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/material"
)

// ErrClosed is returned by operations on a closed scene
var ErrClosed = errors.New("scene closed")

// Geometry is an adapter attached to a scene: a primitive set registered with
// the scene's engine handle, plus the materials used to shade it
type Geometry interface {
	ID() core.GeomID
	Len() int
	Material() material.Material
	OutlineMaterial() material.Material
	OutlineWidth() float32

	// Retain adds an owner; Release drops one and deregisters the geometry
	// from the engine when the last owner is gone
	Retain()
	Release() error
}

// Scene aggregates geometry, camera and lights around one engine scene
type Scene struct {
	Camera          Camera
	Lights          []Light
	Background      core.RGB
	BackgroundAlpha float32
	Ambient         core.RGB

	device accel.Device
	handle accel.Scene
	logger *zap.Logger

	mu         sync.Mutex
	order      []Geometry
	geometries atomic.Pointer[map[core.GeomID]Geometry]
	closed     bool
}

// Option configures a Scene
type Option func(*Scene)

// WithCamera sets the camera
func WithCamera(camera Camera) Option {
	return func(s *Scene) { s.Camera = camera }
}

// WithLights replaces the default light
func WithLights(lights ...Light) Option {
	return func(s *Scene) { s.Lights = lights }
}

// WithBackground sets the color and alpha returned for rays that miss
func WithBackground(color core.RGB, alpha float32) Option {
	return func(s *Scene) {
		s.Background = color
		s.BackgroundAlpha = alpha
	}
}

// WithAmbient sets the ambient light added to every lit surface
func WithAmbient(color core.RGB) Option {
	return func(s *Scene) { s.Ambient = color }
}

// WithLogger sets the scene logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a scene with its own engine handle. By default the camera
// looks down -Z from (0, 0, 10), a white directional light shines along the
// view direction and the background is transparent black.
func New(device accel.Device, opts ...Option) (*Scene, error) {
	if device == nil {
		return nil, fmt.Errorf("create scene: %w", accel.ErrInvalidArgument)
	}

	handle, err := device.NewScene()
	if err == nil {
		err = device.Err()
	}
	if err != nil {
		if handle != nil {
			err = multierr.Append(err, handle.Close())
		}
		return nil, fmt.Errorf("create scene: %w", err)
	}

	s := &Scene{
		Camera: NewOrthographic(core.NewVec3(0, 0, 10), core.Vec3{}, core.NewVec3(0, 1, 0), 3),
		Lights: []Light{NewDirectional(core.NewVec3(0, 0, 1), core.NewRGB(1, 1, 1))},
		device: device,
		handle: handle,
		logger: zap.NewNop(),
	}
	empty := make(map[core.GeomID]Geometry)
	s.geometries.Store(&empty)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Engine returns the engine handle adapters register with
func (s *Scene) Engine() accel.Scene {
	return s.handle
}

// Device returns the engine device, polled for errors after engine calls
func (s *Scene) Device() accel.Device {
	return s.device
}

// Logger returns the scene logger
func (s *Scene) Logger() *zap.Logger {
	return s.logger
}

// Attach adds a fully constructed geometry. The scene takes over the
// reference the geometry was created with.
func (s *Scene) Attach(g Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	current := *s.geometries.Load()
	if _, exists := current[g.ID()]; exists || g.ID() == core.InvalidGeomID {
		return fmt.Errorf("attach geometry %d: %w", g.ID(), accel.ErrInvalidArgument)
	}

	next := maps.Clone(current)
	next[g.ID()] = g
	s.geometries.Store(&next)
	s.order = append(s.order, g)

	s.logger.Debug("geometry attached", zap.Uint32("id", uint32(g.ID())), zap.Int("primitives", g.Len()))
	return nil
}

// Geometry looks up an attached geometry by engine id. Safe to call during
// a render.
func (s *Scene) Geometry(id core.GeomID) (Geometry, bool) {
	g, ok := (*s.geometries.Load())[id]
	return g, ok
}

// Geometries returns the attached geometry in attach order
func (s *Scene) Geometries() []Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Geometry(nil), s.order...)
}

// Commit rebuilds the engine structure from the current primitive bounds. It
// must be called after buffers change and before the next render.
func (s *Scene) Commit() error {
	err := s.handle.Commit()
	if err == nil {
		err = s.device.Err()
	}
	if err != nil {
		return fmt.Errorf("commit scene: %w", err)
	}
	return nil
}

// Intersect returns the closest hit along ray
func (s *Scene) Intersect(ray core.Ray) core.HitRecord {
	return s.handle.Intersect(ray)
}

// IntersectN traces a batch of rays; hits must be at least as long as rays
func (s *Scene) IntersectN(rays []core.Ray, hits []core.HitRecord) {
	s.handle.IntersectN(rays, hits)
}

// Occluded reports whether anything blocks ray within its interval
func (s *Scene) Occluded(ray core.Ray) bool {
	return s.handle.Occluded(ray)
}

// Err returns the first pending engine error
func (s *Scene) Err() error {
	return s.device.Err()
}

// Close releases the scene's reference on every attached geometry and
// closes the engine handle
func (s *Scene) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	attached := s.order
	s.order = nil
	empty := make(map[core.GeomID]Geometry)
	s.geometries.Store(&empty)
	s.mu.Unlock()

	var err error
	for _, g := range attached {
		err = multierr.Append(err, g.Release())
	}
	return multierr.Append(err, s.handle.Close())
}
