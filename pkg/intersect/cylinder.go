package intersect

import (
	"math"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// RayCylinder intersects a ray with a spherocylinder: a cylinder of the given
// radius around segment a-b closed by hemispherical caps.
//
// U reports the axial coordinate of the hit point along a-b in [0, 1], which
// adapters use to pick the color of the nearer endpoint. D is the radius minus
// the distance from the ray line to the segment.
func RayCylinder(origin, dir, a, b core.Vec3, radius float32) (Hit, bool) {
	v, dirLen, ok := unitRay(dir)
	if !ok || !(radius > 0) {
		return Hit{}, false
	}

	u, length, ok := core.SafeNormalize(b.Sub(a))
	if !ok {
		hit, ok := RaySphere(origin, v, a, radius)
		if ok {
			hit.T /= dirLen
		}
		return hit, ok
	}

	ro := origin.Sub(a)
	best := Hit{T: float32(math.Inf(1))}
	found := false

	consider := func(t float32, n core.Vec3, s float32) {
		if t >= 0 && t < best.T {
			best = Hit{T: t, N: n, U: s}
			found = true
		}
	}

	// body: project out the axis and solve the 2D circle problem
	vu, rou := v.Dot(u), ro.Dot(u)
	vp := v.Sub(u.Mul(vu))
	rop := ro.Sub(u.Mul(rou))
	qa := vp.Dot(vp)
	if qa > epsilon {
		qb := vp.Dot(rop)
		qc := rop.Dot(rop) - radius*radius
		det := qb*qb - qa*qc
		if det >= 0 {
			sq := core.Sqrt(det)
			for _, t := range [2]float32{(-qb - sq) / qa, (-qb + sq) / qa} {
				s := rou + vu*t
				if s < 0 || s > length {
					continue
				}
				radial := rop.Add(vp.Mul(t))
				if n, _, ok := core.SafeNormalize(radial); ok {
					consider(t, n, s/length)
				}
			}
		}
	}

	// caps: only the part of each sphere beyond its end of the segment
	for end, center := range [2]core.Vec3{a, b} {
		if capHit, ok := RaySphere(origin, v, center, radius); ok {
			s := origin.Add(v.Mul(capHit.T)).Sub(a).Dot(u)
			if (end == 0 && s <= 0) || (end == 1 && s >= length) {
				consider(capHit.T, capHit.N, float32(end))
			}
		}
		// the far side of a cap can be the exit when the origin is inside
		if farT, n, ok := sphereFarRoot(ro.Sub(center.Sub(a)), v, radius); ok {
			s := origin.Add(v.Mul(farT)).Sub(a).Dot(u)
			if (end == 0 && s <= 0) || (end == 1 && s >= length) {
				consider(farT, n, float32(end))
			}
		}
	}

	if !found {
		return Hit{}, false
	}

	best.D = max(0, radius-lineSegmentDistance(ro, v, u, length))
	best.S = best.D
	best.T /= dirLen
	return best, true
}

// sphereFarRoot returns the far intersection of a unit ray with a sphere
// centered at the origin, ro being the ray origin relative to the center
func sphereFarRoot(ro, v core.Vec3, radius float32) (float32, core.Vec3, bool) {
	b := v.Dot(ro)
	w := v.Cross(ro)
	det := radius*radius - w.Dot(w)
	if det < 0 {
		return 0, core.Vec3{}, false
	}
	t := -b + core.Sqrt(det)
	if t < 0 {
		return 0, core.Vec3{}, false
	}
	n, _, ok := core.SafeNormalize(ro.Add(v.Mul(t)))
	return t, n, ok
}

// lineSegmentDistance returns the distance between the line ro + v*t (v unit)
// and the segment u*s, s in [0, length] (u unit), both relative to the
// segment start
func lineSegmentDistance(ro, v, u core.Vec3, length float32) float32 {
	bb := v.Dot(u)
	dd := v.Dot(ro)
	ee := u.Dot(ro)
	denom := 1 - bb*bb

	var s float32
	if denom > epsilon {
		s = (ee - bb*dd) / denom
	}
	s = min(max(s, 0), length)

	t := bb*s - dd
	closest := ro.Add(v.Mul(t)).Sub(u.Mul(s))
	return closest.Len()
}
