package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the single-precision 3D vector used throughout the tracer
type Vec3 = mgl32.Vec3

// Vec2 is a single-precision 2D vector, used for sample pairs
type Vec2 = mgl32.Vec2

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Sqrt returns the float32 square root of x
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// IsFinite reports whether x is neither NaN nor infinite
func IsFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// IsFiniteVec reports whether every component of v is finite
func IsFiniteVec(v Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

// minNormalizeLengthSq is the smallest squared length that still normalizes to a
// meaningful direction in float32
const minNormalizeLengthSq = 1e-30

// SafeNormalize returns v scaled to unit length and its original length.
// ok is false when the length underflows or is not finite; callers treat that as
// a degenerate case rather than propagating NaN.
func SafeNormalize(v Vec3) (unit Vec3, length float32, ok bool) {
	lenSq := v.Dot(v)
	if !(lenSq > minNormalizeLengthSq) || !IsFinite(lenSq) {
		return Vec3{}, 0, false
	}
	length = Sqrt(lenSq)
	inv := 1 / length
	return Vec3{v[0] * inv, v[1] * inv, v[2] * inv}, length, true
}

// Reflect mirrors direction d about the unit normal n
func Reflect(d, n Vec3) Vec3 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}

// Lerp linearly interpolates between a and b
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Clamp01 clamps x to [0, 1]
func Clamp01(x float32) float32 {
	return mgl32.Clamp(x, 0, 1)
}

// OrthonormalBasis builds two unit vectors perpendicular to the unit vector w
func OrthonormalBasis(w Vec3) (u, v Vec3) {
	var a Vec3
	if mgl32.Abs(w[0]) > 0.1 {
		a = Vec3{0, 1, 0}
	} else {
		a = Vec3{1, 0, 0}
	}
	u = a.Cross(w).Normalize()
	v = w.Cross(u)
	return u, v
}

// MinVec returns the component-wise minimum of a and b
func MinVec(a, b Vec3) Vec3 {
	return Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// MaxVec returns the component-wise maximum of a and b
func MaxVec(a, b Vec3) Vec3 {
	return Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
