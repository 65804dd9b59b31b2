package scene

import (
	"math"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// Light is a source of direct illumination
type Light interface {
	// Sample returns the unit direction from p toward a point on the light,
	// the distance to that point, and the radiance arriving at p
	Sample(p core.Vec3, sample core.Vec2) (dir core.Vec3, dist float32, radiance core.RGB)
}

// Directional is a light at infinity. Direction points toward the light.
// Theta is the angular radius in radians; values above zero soften shadows.
type Directional struct {
	Direction core.Vec3
	Color     core.RGB
	Theta     float32
}

// NewDirectional creates a hard directional light
func NewDirectional(direction core.Vec3, color core.RGB) *Directional {
	return &Directional{Direction: direction, Color: color}
}

func (l *Directional) Sample(_ core.Vec3, sample core.Vec2) (core.Vec3, float32, core.RGB) {
	dir, _, ok := core.SafeNormalize(l.Direction)
	if !ok {
		return core.Vec3{}, 0, core.RGB{}
	}
	if l.Theta > 0 {
		dir = core.SampleCone(dir, float32(math.Cos(float64(l.Theta))), sample)
	}
	return dir, core.Infinity, l.Color
}

// Point is a spherical light with inverse square falloff. Radius zero gives
// a point source with hard shadows.
type Point struct {
	Position core.Vec3
	Color    core.RGB
	Radius   float32
}

func (l *Point) Sample(p core.Vec3, sample core.Vec2) (core.Vec3, float32, core.RGB) {
	target := l.Position
	if l.Radius > 0 {
		target = target.Add(core.SampleOnUnitSphere(sample).Mul(l.Radius))
	}

	dir, dist, ok := core.SafeNormalize(target.Sub(p))
	if !ok {
		return core.Vec3{}, 0, core.RGB{}
	}
	return dir, dist, l.Color.Scale(1 / (dist * dist))
}
