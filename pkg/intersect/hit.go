// Package intersect holds the analytic ray/primitive intersection routines.
//
// Every routine is a pure function in single precision and shares one return
// shape: a Hit (distance, edge distance, unit normal) and a flag. Degenerate
// input such as a zero-length direction yields a miss, never a NaN normal.
package intersect

import (
	"math"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// Hit is the result of a ray/primitive intersection.
type Hit struct {
	T float32   // distance in units of the caller's ray direction
	D float32   // distance from the hit to the nearest primitive edge, >= 0
	N core.Vec3 // unit surface normal, pointing out of the primitive

	// S is the distance from the hit to the primitive's silhouette as seen
	// along the ray, >= 0. It is +Inf when no silhouette edge bounds the hit
	// surface, so the hit always covers its pixel fully.
	S float32

	// U and V are primitive specific surface parameters: barycentrics for
	// triangles, the normalized axial coordinate (U) for cylinders.
	U, V float32

	Face int // index of the hit plane for polyhedra
}

// epsilon guards divisions by near-zero denominators
const epsilon = 1e-7

// noSilhouette is the silhouette distance of surfaces without edge coverage
var noSilhouette = float32(math.Inf(1))

// unitRay normalizes the ray direction, returning the length needed to
// convert distances back to the caller's parametrization
func unitRay(dir core.Vec3) (core.Vec3, float32, bool) {
	return core.SafeNormalize(dir)
}
