package intersect

import (
	"math"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// Plane is a half-space boundary: points x with N·x <= Offset are inside.
// N must be unit length.
type Plane struct {
	N      core.Vec3
	Offset float32
}

// PlanesFromFaces builds outward planes for a convex polyhedron centered near
// the origin from per-face vertex loops. Faces with fewer than three distinct
// vertices are skipped.
func PlanesFromFaces(vertices []core.Vec3, faces [][]int) []Plane {
	var centroid core.Vec3
	for _, v := range vertices {
		centroid = centroid.Add(v)
	}
	if len(vertices) > 0 {
		centroid = centroid.Mul(1 / float32(len(vertices)))
	}

	planes := make([]Plane, 0, len(faces))
	for _, face := range faces {
		if len(face) < 3 {
			continue
		}
		p0 := vertices[face[0]]
		n, _, ok := core.SafeNormalize(vertices[face[1]].Sub(p0).Cross(vertices[face[2]].Sub(p0)))
		if !ok {
			continue
		}
		// orient outward regardless of the winding used by the caller
		if n.Dot(p0.Sub(centroid)) < 0 {
			n = n.Mul(-1)
		}
		planes = append(planes, Plane{N: n, Offset: n.Dot(p0)})
	}
	return planes
}

// RayConvexPolyhedron intersects a ray with the convex region bounded by
// planes, using Kay-Kajiya slab clipping. The normal is that of the entering
// face, or of the exiting face when the origin is inside. D is the distance,
// within the hit face, from the hit point to the nearest face edge. S only
// counts edges on the silhouette, where the neighboring face turns away from
// the ray.
func RayConvexPolyhedron(origin, dir core.Vec3, planes []Plane) (Hit, bool) {
	v, dirLen, ok := unitRay(dir)
	if !ok || len(planes) == 0 {
		return Hit{}, false
	}

	tEnter := float32(math.Inf(-1))
	tExit := float32(math.Inf(1))
	enterFace, exitFace := -1, -1

	for i, p := range planes {
		denom := p.N.Dot(v)
		dist := p.Offset - p.N.Dot(origin) // positive when the origin is inside
		if denom > -epsilon && denom < epsilon {
			if dist < 0 {
				return Hit{}, false
			}
			continue
		}

		t := dist / denom
		if denom < 0 {
			if t > tEnter {
				tEnter, enterFace = t, i
			}
		} else if t < tExit {
			tExit, exitFace = t, i
		}

		if tEnter > tExit {
			return Hit{}, false
		}
	}

	if tExit < 0 {
		return Hit{}, false
	}

	t, face := tEnter, enterFace
	if face < 0 || tEnter < 0 {
		t, face = tExit, exitFace
	}
	if face < 0 || !core.IsFinite(t) {
		return Hit{}, false
	}

	hitFace := planes[face]
	point := origin.Add(v.Mul(t))
	d := float32(math.Inf(1))
	for j, p := range planes {
		if j == face {
			continue
		}
		cos := p.N.Dot(hitFace.N)
		sinSq := 1 - cos*cos
		if sinSq < epsilon {
			continue
		}
		inFace := (p.Offset - p.N.Dot(point)) / core.Sqrt(sinSq)
		d = min(d, inFace)
	}
	if math.IsInf(float64(d), 1) {
		d = 0
	}

	// seen from inside there is no silhouette
	silhouette := noSilhouette
	if face == enterFace && tEnter >= 0 {
		silhouette = silhouetteDistance(point, v, planes, face)
	}

	return Hit{T: t / dirLen, D: max(0, d), N: hitFace.N, S: silhouette, Face: face}, true
}

// silhouetteDistance returns the in-face distance from point to the nearest
// edge of the entered face whose neighbor faces away from the unit ray
// direction v. Edges shared with other front faces are not silhouette and are
// ignored, as are planes that do not touch the face.
func silhouetteDistance(point, v core.Vec3, planes []Plane, face int) float32 {
	hitFace := planes[face]
	best := noSilhouette

	for j, p := range planes {
		if j == face || p.N.Dot(v) < -edgeOnCos {
			continue
		}
		cos := p.N.Dot(hitFace.N)
		sinSq := 1 - cos*cos
		if sinSq < epsilon {
			continue
		}
		sin := core.Sqrt(sinSq)
		inFace := max(0, (p.Offset-p.N.Dot(point))/sin)
		if inFace >= best {
			continue
		}

		// foot of the perpendicular on the edge line, and the line direction
		toward := p.N.Sub(hitFace.N.Mul(cos)).Mul(1 / sin)
		foot := point.Add(toward.Mul(inFace))
		along := hitFace.N.Cross(p.N).Mul(1 / sin)

		// clip the edge line by the remaining planes to find the edge itself
		lo, hi := float32(math.Inf(-1)), float32(math.Inf(1))
		for k, q := range planes {
			if k == face || k == j {
				continue
			}
			denom := q.N.Dot(along)
			dist := q.Offset - q.N.Dot(foot)
			if denom > -epsilon && denom < epsilon {
				if dist < -edgeTolerance(q.Offset) {
					lo, hi = 1, 0
					break
				}
				continue
			}
			if s := dist / denom; denom > 0 {
				hi = min(hi, s)
			} else {
				lo = max(lo, s)
			}
		}
		if lo > hi {
			// the plane does not bound this face
			continue
		}

		along0 := min(max(0, lo), hi)
		best = min(best, core.Sqrt(inFace*inFace+along0*along0))
	}
	return best
}

// edgeOnCos is the largest n·v at which a face still counts as edge-on, so
// rotation round-off cannot hide a silhouette
const edgeOnCos = 1e-5

// edgeTolerance scales the inside test of a parallel plane to its offset
func edgeTolerance(offset float32) float32 {
	return 1e-5 * max(1, float32(math.Abs(float64(offset))))
}
