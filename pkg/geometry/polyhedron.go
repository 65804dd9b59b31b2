package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/intersect"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// PolyhedronShape is a convex polyhedron in its local frame, given as
// vertices and faces (vertex index loops). FaceColors, when set, has one
// color per face and is blended in by ColorByFace.
type PolyhedronShape struct {
	Vertices    []core.Vec3
	Faces       [][]int
	FaceColors  []core.RGB
	ColorByFace float32
}

// ConvexPolyhedron is N instances of one convex shape, each with its own
// position, orientation and color
type ConvexPolyhedron struct {
	base
	planes      []intersect.Plane
	vertices    []core.Vec3
	faceColors  []core.RGB
	colorByFace float32

	position    *Buffer[core.Vec3]
	orientation *Buffer[mgl32.Quat]
	color       *Buffer[core.RGB]
}

// NewConvexPolyhedron creates n instances of shape at the origin with identity
// orientation
func NewConvexPolyhedron(s *scene.Scene, n int, shape PolyhedronShape, opts Options) (*ConvexPolyhedron, error) {
	for _, face := range shape.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(shape.Vertices) {
				return nil, fmt.Errorf("create polyhedron: %w: vertex index %d out of range", accel.ErrInvalidArgument, idx)
			}
		}
	}

	planes := intersect.PlanesFromFaces(shape.Vertices, shape.Faces)
	if len(planes) < 4 {
		return nil, fmt.Errorf("create polyhedron: %w: %d usable faces", accel.ErrInvalidArgument, len(planes))
	}
	if shape.FaceColors != nil && len(shape.FaceColors) != len(shape.Faces) {
		return nil, fmt.Errorf("create polyhedron: %w: %d face colors for %d faces",
			accel.ErrInvalidArgument, len(shape.FaceColors), len(shape.Faces))
	}

	// faces without a usable plane are dropped, so keep colors aligned with planes
	var faceColors []core.RGB
	if shape.FaceColors != nil {
		for i, face := range shape.Faces {
			if usableFace(shape.Vertices, face) {
				faceColors = append(faceColors, shape.FaceColors[i])
			}
		}
	}

	n = max(n, 0)
	poly := &ConvexPolyhedron{
		planes:      planes,
		vertices:    append([]core.Vec3(nil), shape.Vertices...),
		faceColors:  faceColors,
		colorByFace: mgl32.Clamp(shape.ColorByFace, 0, 1),
		position:    newBuffer(n, core.Vec3{}),
		orientation: newBuffer(n, mgl32.QuatIdent()),
		color:       newBuffer(n, core.RGB{}),
	}
	if err := poly.attach(s, "polyhedron", n, opts, poly); err != nil {
		return nil, err
	}
	return poly, nil
}

func usableFace(vertices []core.Vec3, face []int) bool {
	if len(face) < 3 {
		return false
	}
	p0 := vertices[face[0]]
	_, _, ok := core.SafeNormalize(vertices[face[1]].Sub(p0).Cross(vertices[face[2]].Sub(p0)))
	return ok
}

// Position returns the instance position buffer
func (p *ConvexPolyhedron) Position() *Buffer[core.Vec3] { return p.position }

// Orientation returns the instance rotation buffer. Quaternions are
// normalized when used.
func (p *ConvexPolyhedron) Orientation() *Buffer[mgl32.Quat] { return p.orientation }

// Color returns the instance color buffer
func (p *ConvexPolyhedron) Color() *Buffer[core.RGB] { return p.color }

func (p *ConvexPolyhedron) Bounds(item int) core.AABB {
	pos := p.position.data[item]
	q := p.orientation.data[item].Normalize()

	box := core.EmptyAABB()
	for _, v := range p.vertices {
		box = box.Extend(pos.Add(q.Rotate(v)))
	}
	return box
}

func (p *ConvexPolyhedron) Intersect(ray core.Ray, item int, hit *core.HitRecord) {
	q := p.orientation.data[item].Normalize()
	inv := q.Inverse()

	origin := inv.Rotate(ray.Origin.Sub(p.position.data[item]))
	dir := inv.Rotate(ray.Direction)

	h, ok := intersect.RayConvexPolyhedron(origin, dir, p.planes)
	if !ok || !hit.Accepts(ray, h.T) {
		return
	}

	color := p.color.data[item]
	if p.faceColors != nil {
		color = color.Lerp(p.faceColors[h.Face], p.colorByFace)
	}
	p.record(hit, item, h, q.Rotate(h.N), color)
}
