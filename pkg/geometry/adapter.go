// Package geometry implements the primitive families that plug into the
// acceleration engine: spheres, spherocylinders, convex polyhedra and
// triangle meshes.
//
// Each adapter owns index-aligned attribute buffers, registers itself with
// its scene's engine handle on construction and answers the engine's bounds
// and intersect callbacks from those buffers.
package geometry

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/intersect"
	"github.com/df07/go-analytic-raytracer/pkg/material"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// ErrReleased is returned when releasing a geometry that has no owners left
var ErrReleased = errors.New("geometry already released")

// Options are the creation-time settings shared by every family. Nil
// materials select material.Default and material.DefaultOutline.
type Options struct {
	Material        *material.Material
	OutlineMaterial *material.Material
	OutlineWidth    float32 // 0 disables outlines
}

type adapter interface {
	accel.Primitives
	scene.Geometry
}

// base holds the state every adapter shares: engine registration,
// materials, validity and ownership
type base struct {
	scene  *scene.Scene
	id     core.GeomID
	n      int
	kind   string
	logger *zap.Logger

	material     material.Material
	outline      material.Material
	outlineWidth float32

	valid atomic.Bool
	refs  atomic.Int32
}

// attach registers self with the scene's engine and attaches it to the scene.
// On failure nothing stays registered and the scene never sees the adapter.
func (b *base) attach(s *scene.Scene, kind string, n int, opts Options, self adapter) error {
	if s == nil || n <= 0 {
		return fmt.Errorf("create %s: %w: %d primitives", kind, accel.ErrInvalidArgument, n)
	}

	b.scene = s
	b.kind = kind
	b.n = n
	b.logger = s.Logger()
	b.material = material.Default()
	b.outline = material.DefaultOutline()
	b.outlineWidth = opts.OutlineWidth

	if opts.Material != nil {
		b.material = *opts.Material
	}
	if opts.OutlineMaterial != nil {
		b.outline = *opts.OutlineMaterial
	}
	if err := b.material.Validate(); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	if err := b.outline.Validate(); err != nil {
		return fmt.Errorf("create %s outline: %w", kind, err)
	}
	if !core.IsFinite(b.outlineWidth) || b.outlineWidth < 0 {
		return fmt.Errorf("create %s: outline width %v must be non-negative", kind, b.outlineWidth)
	}

	engine := s.Engine()
	id, err := engine.Register(n, self)
	if err == nil {
		err = s.Device().Err()
	}
	if err != nil {
		if id != core.InvalidGeomID {
			err = multierr.Append(err, engine.Deregister(id))
		}
		return fmt.Errorf("create %s: %w", kind, err)
	}

	b.id = id
	b.refs.Store(1)
	b.valid.Store(true)

	if err := s.Attach(self); err != nil {
		b.valid.Store(false)
		b.refs.Store(0)
		return fmt.Errorf("create %s: %w", kind, multierr.Append(err, engine.Deregister(id)))
	}

	b.logger.Debug("geometry created", zap.String("kind", kind), zap.Uint32("id", uint32(id)), zap.Int("primitives", n))
	return nil
}

// ID returns the engine geometry id
func (b *base) ID() core.GeomID { return b.id }

// Len returns the number of engine items
func (b *base) Len() int { return b.n }

// Kind names the primitive type, such as "sphere"
func (b *base) Kind() string { return b.kind }

// Valid reports whether the geometry is registered and usable
func (b *base) Valid() bool { return b.valid.Load() }

func (b *base) Material() material.Material        { return b.material }
func (b *base) OutlineMaterial() material.Material { return b.outline }
func (b *base) OutlineWidth() float32              { return b.outlineWidth }

// SetMaterial replaces the primary material
func (b *base) SetMaterial(m material.Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	b.material = m
	return nil
}

// SetOutlineMaterial replaces the outline material
func (b *base) SetOutlineMaterial(m material.Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	b.outline = m
	return nil
}

// SetOutlineWidth sets the outline width; 0 disables outlines
func (b *base) SetOutlineWidth(w float32) error {
	if !core.IsFinite(w) || w < 0 {
		return fmt.Errorf("outline width %v must be non-negative", w)
	}
	b.outlineWidth = w
	return nil
}

// Retain adds an owner
func (b *base) Retain() {
	if b.valid.Load() {
		b.refs.Add(1)
	}
}

// Release drops an owner. The last release deregisters from the engine.
func (b *base) Release() error {
	refs := b.refs.Add(-1)
	if refs > 0 {
		return nil
	}
	if refs < 0 {
		b.refs.Store(0)
		return fmt.Errorf("release %s %d: %w", b.kind, b.id, ErrReleased)
	}

	b.valid.Store(false)
	err := b.scene.Engine().Deregister(b.id)
	if errors.Is(err, accel.ErrClosed) {
		// the engine scene is gone and took the registration with it
		err = nil
	}
	if err != nil {
		return fmt.Errorf("release %s %d: %w", b.kind, b.id, err)
	}
	b.logger.Debug("geometry released", zap.String("kind", b.kind), zap.Uint32("id", uint32(b.id)))
	return nil
}

// record writes an accepted hit into the best-hit record
func (b *base) record(hit *core.HitRecord, item int, h intersect.Hit, n core.Vec3, color core.RGB) {
	hit.T = h.T
	hit.Normal = n
	hit.EdgeDistance = h.D
	hit.Silhouette = h.S
	hit.Color = color
	hit.GeomID = b.id
	hit.PrimID = item
}
