package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/intersect"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// MeshShape is a triangle list in the mesh's local frame
type MeshShape struct {
	Vertices  []core.Vec3
	Triangles [][3]int
}

// Mesh is N instances of one triangle mesh. Every (instance, triangle) pair
// is a separate engine item. Colors are per vertex, shared by all instances
// and interpolated across each triangle.
type Mesh struct {
	base
	vertices  []core.Vec3
	triangles [][3]int

	position    *Buffer[core.Vec3]
	orientation *Buffer[mgl32.Quat]
	color       *Buffer[core.RGB] // one per vertex
}

// NewMesh creates n instances of shape at the origin with identity orientation
func NewMesh(s *scene.Scene, n int, shape MeshShape, opts Options) (*Mesh, error) {
	if len(shape.Triangles) == 0 {
		return nil, fmt.Errorf("create mesh: %w: no triangles", accel.ErrInvalidArgument)
	}
	for i, tri := range shape.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(shape.Vertices) {
				return nil, fmt.Errorf("create mesh: %w: triangle %d vertex index %d out of range",
					accel.ErrInvalidArgument, i, idx)
			}
		}
	}

	n = max(n, 0)
	m := &Mesh{
		vertices:    append([]core.Vec3(nil), shape.Vertices...),
		triangles:   append([][3]int(nil), shape.Triangles...),
		position:    newBuffer(n, core.Vec3{}),
		orientation: newBuffer(n, mgl32.QuatIdent()),
		color:       newBuffer(len(shape.Vertices), core.RGB{}),
	}
	if err := m.attach(s, "mesh", n*len(shape.Triangles), opts, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Instances returns the number of mesh instances
func (m *Mesh) Instances() int { return m.position.Len() }

// Position returns the instance position buffer
func (m *Mesh) Position() *Buffer[core.Vec3] { return m.position }

// Orientation returns the instance rotation buffer
func (m *Mesh) Orientation() *Buffer[mgl32.Quat] { return m.orientation }

// Color returns the per-vertex color buffer
func (m *Mesh) Color() *Buffer[core.RGB] { return m.color }

// split decodes an engine item into instance and triangle indices
func (m *Mesh) split(item int) (instance, triangle int) {
	return item / len(m.triangles), item % len(m.triangles)
}

func (m *Mesh) Bounds(item int) core.AABB {
	instance, triangle := m.split(item)
	pos := m.position.data[instance]
	q := m.orientation.data[instance].Normalize()

	tri := m.triangles[triangle]
	box := core.EmptyAABB()
	for _, idx := range tri {
		box = box.Extend(pos.Add(q.Rotate(m.vertices[idx])))
	}
	return box
}

func (m *Mesh) Intersect(ray core.Ray, item int, hit *core.HitRecord) {
	instance, triangle := m.split(item)
	q := m.orientation.data[instance].Normalize()
	inv := q.Inverse()

	origin := inv.Rotate(ray.Origin.Sub(m.position.data[instance]))
	dir := inv.Rotate(ray.Direction)

	tri := m.triangles[triangle]
	h, ok := intersect.RayTriangle(origin, dir, m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]])
	if !ok || !hit.Accepts(ray, h.T) {
		return
	}

	c0, c1, c2 := m.color.data[tri[0]], m.color.data[tri[1]], m.color.data[tri[2]]
	color := c0.Scale(1 - h.U - h.V).Add(c1.Scale(h.U)).Add(c2.Scale(h.V))
	m.record(hit, item, h, q.Rotate(h.N), color)
}
