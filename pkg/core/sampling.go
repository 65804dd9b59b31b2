package core

import (
	"math"
	"math/rand/v2"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float32
	Get2D() Vec2
}

// StreamSampler is a sampler over a reseedable PCG stream.
// Reseeding per (pixel, sample) makes every sample reproducible regardless of
// which worker draws it or in what order.
type StreamSampler struct {
	src    *rand.PCG
	random *rand.Rand
}

// NewStreamSampler creates a sampler seeded with (seed, stream)
func NewStreamSampler(seed, stream uint64) *StreamSampler {
	src := rand.NewPCG(seed, stream)
	return &StreamSampler{src: src, random: rand.New(src)}
}

// Reseed restarts the sampler on a new stream
func (s *StreamSampler) Reseed(seed, stream uint64) {
	s.src.Seed(seed, stream)
}

// Get1D returns a random float32 in [0, 1)
func (s *StreamSampler) Get1D() float32 {
	return s.random.Float32()
}

// Get2D returns two random float32 values in [0, 1)
func (s *StreamSampler) Get2D() Vec2 {
	return Vec2{s.random.Float32(), s.random.Float32()}
}

// SampleStream mixes a pixel index and sample index into a PCG stream id
func SampleStream(pixel, sample int) uint64 {
	return uint64(pixel)<<20 ^ uint64(sample)*0x9E3779B97F4A7C15
}

// FixedSampler returns the same values forever; useful for centered samples and tests
type FixedSampler struct {
	Value float32
}

// Get1D returns the fixed value
func (f FixedSampler) Get1D() float32 { return f.Value }

// Get2D returns the fixed value in both dimensions
func (f FixedSampler) Get2D() Vec2 { return Vec2{f.Value, f.Value} }

// SampleCone samples a direction uniformly within a cone around the unit vector direction
func SampleCone(direction Vec3, cosTotalWidth float32, sample Vec2) Vec3 {
	u, v := OrthonormalBasis(direction)

	cosTheta := 1.0 - sample[0]*(1.0-cosTotalWidth)
	sinTheta := Sqrt(max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * float64(sample[1])

	x := sinTheta * float32(math.Cos(phi))
	y := sinTheta * float32(math.Sin(phi))
	return u.Mul(x).Add(v.Mul(y)).Add(direction.Mul(cosTheta))
}

// SamplePointInUnitDisk generates a point in the unit disk using concentric mapping
// This avoids rejection sampling by mapping a square uniformly to a disk
func SamplePointInUnitDisk(sample Vec2) Vec2 {
	ux, uy := 2*sample[0]-1, 2*sample[1]-1
	if ux == 0 && uy == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(float64(ux)) > math.Abs(float64(uy)) {
		r = float64(ux)
		theta = math.Pi / 4 * float64(uy/ux)
	} else {
		r = float64(uy)
		theta = math.Pi/2 - math.Pi/4*float64(ux/uy)
	}

	return Vec2{float32(r * math.Cos(theta)), float32(r * math.Sin(theta))}
}

// SampleOnUnitSphere generates a uniform direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample[0]
	r := Sqrt(max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * float64(sample[1])
	return Vec3{r * float32(math.Cos(phi)), r * float32(math.Sin(phi)), z}
}
