package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/intersect"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// Cylinder is a set of N spherocylinders. Each has two endpoints and a color
// per endpoint; a hit takes the color of the nearer end.
type Cylinder struct {
	base
	points *Buffer[[2]core.Vec3]
	radius *Buffer[float32]
	color  *Buffer[[2]core.RGB]
}

// NewCylinder creates n cylinders from (-1,0,0) to (1,0,0) with radius 0.5
func NewCylinder(s *scene.Scene, n int, opts Options) (*Cylinder, error) {
	n = max(n, 0)
	cyl := &Cylinder{
		points: newBuffer(n, [2]core.Vec3{{-1, 0, 0}, {1, 0, 0}}),
		radius: newBuffer(n, float32(0.5)),
		color:  newBuffer(n, [2]core.RGB{}),
	}
	if err := cyl.attach(s, "cylinder", n, opts, cyl); err != nil {
		return nil, err
	}
	return cyl, nil
}

// Points returns the endpoint buffer
func (c *Cylinder) Points() *Buffer[[2]core.Vec3] { return c.points }

// Radius returns the radius buffer
func (c *Cylinder) Radius() *Buffer[float32] { return c.radius }

// Color returns the per-endpoint color buffer
func (c *Cylinder) Color() *Buffer[[2]core.RGB] { return c.color }

func (c *Cylinder) Bounds(item int) core.AABB {
	p := c.points.data[item]
	r := mgl32.Abs(c.radius.data[item])
	extent := core.NewVec3(r, r, r)
	box := core.NewAABBFromPoints(p[0], p[1])
	return core.NewAABB(box.Min.Sub(extent), box.Max.Add(extent))
}

func (c *Cylinder) Intersect(ray core.Ray, item int, hit *core.HitRecord) {
	p := c.points.data[item]
	h, ok := intersect.RayCylinder(ray.Origin, ray.Direction, p[0], p[1], c.radius.data[item])
	if !ok || !hit.Accepts(ray, h.T) {
		return
	}

	colors := c.color.data[item]
	color := colors[0]
	if h.U >= 0.5 {
		color = colors[1]
	}
	c.record(hit, item, h, h.N, color)
}
