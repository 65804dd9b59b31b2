package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/intersect"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// Sphere is a set of N spheres with per-sphere position, radius and color
type Sphere struct {
	base
	position *Buffer[core.Vec3]
	radius   *Buffer[float32]
	color    *Buffer[core.RGB]
}

// NewSphere creates n spheres of radius 0.5 at the origin and attaches them
// to the scene
func NewSphere(s *scene.Scene, n int, opts Options) (*Sphere, error) {
	n = max(n, 0)
	sp := &Sphere{
		position: newBuffer(n, core.Vec3{}),
		radius:   newBuffer(n, float32(0.5)),
		color:    newBuffer(n, core.RGB{}),
	}
	if err := sp.attach(s, "sphere", n, opts, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Position returns the center buffer
func (sp *Sphere) Position() *Buffer[core.Vec3] { return sp.position }

// Radius returns the radius buffer
func (sp *Sphere) Radius() *Buffer[float32] { return sp.radius }

// Color returns the per-sphere color buffer, mixed in by PrimitiveColorMix
func (sp *Sphere) Color() *Buffer[core.RGB] { return sp.color }

// Bounds returns center ± radius
func (sp *Sphere) Bounds(item int) core.AABB {
	c := sp.position.data[item]
	r := mgl32.Abs(sp.radius.data[item])
	extent := core.NewVec3(r, r, r)
	return core.NewAABB(c.Sub(extent), c.Add(extent))
}

// Intersect tests one sphere and records it if it is the closest so far
func (sp *Sphere) Intersect(ray core.Ray, item int, hit *core.HitRecord) {
	h, ok := intersect.RaySphere(ray.Origin, ray.Direction, sp.position.data[item], sp.radius.data[item])
	if !ok || !hit.Accepts(ray, h.T) {
		return
	}
	sp.record(hit, item, h, h.N, sp.color.data[item])
}
