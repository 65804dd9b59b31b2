package intersect

import "github.com/df07/go-analytic-raytracer/pkg/core"

// RaySphere intersects a ray with a sphere.
//
// The nearest non-negative root is reported; when the origin is inside the
// sphere that is the exit point. D is the radius minus the distance from the
// ray line to the center, which falls continuously to zero at the silhouette;
// the whole outline of a sphere is silhouette, so S equals D.
func RaySphere(origin, dir, center core.Vec3, radius float32) (Hit, bool) {
	v, dirLen, ok := unitRay(dir)
	if !ok || !(radius > 0) {
		return Hit{}, false
	}

	// vector from sphere center to ray origin
	ro := origin.Sub(center)
	b := v.Dot(ro)
	c := ro.Dot(ro) - radius*radius

	// origin outside and pointing away
	if c > 0 && b > 0 {
		return Hit{}, false
	}

	// squared distance from the center to the ray line
	w := v.Cross(ro)
	dsq := w.Dot(w)
	det := radius*radius - dsq
	if det < 0 || !core.IsFinite(det) {
		return Hit{}, false
	}

	sq := core.Sqrt(det)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return Hit{}, false
	}

	n, _, ok := core.SafeNormalize(ro.Add(v.Mul(t)))
	if !ok {
		return Hit{}, false
	}

	d := max(0, radius-core.Sqrt(dsq))
	return Hit{T: t / dirLen, D: d, N: n, S: d}, true
}
