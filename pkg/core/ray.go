package core

import "math"

// GeomID identifies a geometry registered with an acceleration engine scene.
// The zero value is reserved and means "no geometry".
type GeomID uint32

// InvalidGeomID marks a hit record without a hit
const InvalidGeomID GeomID = 0

// PrimRef names a single primitive: one item inside one registered geometry
type PrimRef struct {
	Geom GeomID
	Prim int
}

// Valid reports whether the reference names a primitive
func (p PrimRef) Valid() bool {
	return p.Geom != InvalidGeomID
}

// Ray is an immutable ray descriptor.
//
// Direction need not be normalized; T values are measured in units of
// Direction. Only intersections with TNear < t < TFar count.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TNear     float32
	TFar      float32

	Depth  int     // recursion level, 0 for primary rays
	Weight float32 // product of attenuations along the path

	// Footprint is the width of the pixel cone at the origin and Spread its
	// growth per unit t; edge antialiasing compares edge distances against it.
	Footprint float32
	Spread    float32

	// Skip excludes one primitive from traversal, used by rays leaving a surface
	Skip PrimRef
}

// Infinity is the default far bound for rays
var Infinity = float32(math.Inf(1))

// NewRay creates a primary ray with an unbounded interval and unit weight
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		TNear:     0,
		TFar:      Infinity,
		Weight:    1,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// FootprintAt returns the world-space width of the pixel cone at distance t
func (r Ray) FootprintAt(t float32) float32 {
	return r.Footprint + t*r.Spread*r.Direction.Len()
}

// Secondary derives a ray leaving a surface point: the new ray starts at the
// hit point, skips the primitive it leaves and inherits the pixel cone.
func (r Ray) Secondary(hit HitRecord, direction Vec3, weight float32) Ray {
	return Ray{
		Origin:    r.At(hit.T),
		Direction: direction,
		TNear:     0,
		TFar:      Infinity,
		Depth:     r.Depth + 1,
		Weight:    weight,
		Footprint: r.FootprintAt(hit.T),
		Spread:    r.Spread,
		Skip:      hit.Ref(),
	}
}

// Continuation returns the same ray restarted behind a hit, skipping the hit
// primitive. Used to find what is visible through a partially covered edge.
func (r Ray) Continuation(hit HitRecord) Ray {
	next := r
	next.TNear = hit.T
	next.Depth = r.Depth + 1
	next.Skip = hit.Ref()
	return next
}

// HitRecord is the closest-hit record written by intersect callbacks.
// T starts at the ray's TFar and only ever shrinks.
type HitRecord struct {
	T            float32
	Normal       Vec3 // geometric normal, not necessarily unit length
	Color        RGB  // per-primitive shading color
	EdgeDistance float32 // to the nearest primitive edge; drives outlines
	Silhouette   float32 // to the nearest silhouette edge; drives pixel coverage
	GeomID       GeomID
	PrimID       int
}

// NewHitRecord returns an empty record bounded by the ray's far distance
func NewHitRecord(ray Ray) HitRecord {
	return HitRecord{T: ray.TFar, GeomID: InvalidGeomID, PrimID: -1}
}

// Hit reports whether a primitive was recorded
func (h HitRecord) Hit() bool {
	return h.GeomID != InvalidGeomID
}

// Ref returns the primitive reference of the hit
func (h HitRecord) Ref() PrimRef {
	return PrimRef{Geom: h.GeomID, Prim: h.PrimID}
}

// Accepts reports whether t improves on the record for the given ray
func (h *HitRecord) Accepts(ray Ray, t float32) bool {
	return ray.TNear < t && t < h.T
}
