package intersect

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// RayTriangle intersects a ray with a triangle using the Möller-Trumbore
// algorithm. Triangles are two sided. U and V are the barycentric weights of
// v1 and v2; D is the distance from the hit point to the nearest edge. A lone
// triangle cannot tell which of its edges lie on a mesh silhouette, so S is
// always +Inf.
func RayTriangle(origin, dir, v0, v1, v2 core.Vec3) (Hit, bool) {
	v, dirLen, ok := unitRay(dir)
	if !ok {
		return Hit{}, false
	}

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	// a scales with the triangle's area, so the parallel test is relative to it
	h := v.Cross(edge2)
	a := edge1.Dot(h)
	if mgl32.Abs(a) <= epsilon*edge1.Len()*edge2.Len() || !core.IsFinite(1/a) {
		// ray lies in the plane of the triangle
		return Hit{}, false
	}

	f := 1.0 / a
	s := origin.Sub(v0)
	bu := f * s.Dot(h)
	if bu < 0 || bu > 1 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	bv := f * v.Dot(q)
	if bv < 0 || bu+bv > 1 {
		return Hit{}, false
	}

	t := f * edge2.Dot(q)
	if t < 0 {
		return Hit{}, false
	}

	cross := edge1.Cross(edge2)
	n, area2, ok := core.SafeNormalize(cross)
	if !ok {
		return Hit{}, false
	}

	// distance to an edge is the opposite barycentric times the height over it
	bw := 1 - bu - bv
	d := bw * area2 / v2.Sub(v1).Len()
	d = min(d, bu*area2/v2.Sub(v0).Len())
	d = min(d, bv*area2/edge1.Len())

	return Hit{T: t / dirLen, D: max(0, d), N: n, S: noSilhouette, U: bu, V: bv}, true
}
