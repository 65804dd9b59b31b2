package material

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// Material describes how a surface responds to light. Colors are linear RGB.
type Material struct {
	Color core.RGB

	// Solid blends from lit shading (0) to the flat base color (1), ignoring
	// lights and view angle
	Solid float32

	// PrimitiveColorMix selects the material color (0), the per-primitive
	// color from the geometry (1), or a mix of the two
	PrimitiveColorMix float32

	Roughness float32 // specular spread; 0 is a perfect mirror highlight
	Specular  float32 // strength of the highlight
	Metal     float32 // 1 tints highlights and reflections with the base color
}

// Default is the material assigned to new geometry: opaque magenta
func Default() Material {
	return Material{
		Color:     core.NewRGB(1, 0, 1),
		Roughness: 0.3,
		Specular:  0.5,
	}
}

// DefaultOutline is the outline material assigned to new geometry: solid black
func DefaultOutline() Material {
	return Material{
		Color: core.NewRGB(0, 0, 0),
		Solid: 1,
	}
}

// Validate checks that every parameter is finite and in [0, 1]
func (m Material) Validate() error {
	if !m.Color.IsFinite() || m.Color.R < 0 || m.Color.G < 0 || m.Color.B < 0 {
		return fmt.Errorf("material color %v must be finite and non-negative", m.Color)
	}

	params := []struct {
		name  string
		value float32
	}{
		{"solid", m.Solid},
		{"primitive_color_mix", m.PrimitiveColorMix},
		{"roughness", m.Roughness},
		{"specular", m.Specular},
		{"metal", m.Metal},
	}
	for _, p := range params {
		if !core.IsFinite(p.value) || p.value < 0 || p.value > 1 {
			return fmt.Errorf("material %s %v out of range [0, 1]", p.name, p.value)
		}
	}
	return nil
}

// BaseColor mixes the material color with the primitive's own color
func (m Material) BaseColor(primitive core.RGB) core.RGB {
	return m.Color.Lerp(primitive, m.PrimitiveColorMix)
}

// IsSolid reports whether shading can skip lighting entirely
func (m Material) IsSolid() bool {
	return m.Solid >= 1
}

// BRDF returns the reflected fraction of light arriving from unit direction l
// toward the viewer along unit direction v, excluding the cosine term.
// Diffuse is Lambertian with unit albedo scale; the highlight is a normalized
// Blinn-Phong lobe whose exponent follows Roughness.
func (m Material) BRDF(l, v, n core.Vec3, primitive core.RGB) core.RGB {
	if n.Dot(l) <= 0 || n.Dot(v) <= 0 {
		return core.RGB{}
	}

	base := m.BaseColor(primitive)
	diffuse := base.Scale(1 - m.Metal)
	if m.Specular <= 0 {
		return diffuse
	}

	h, _, ok := core.SafeNormalize(l.Add(v))
	if !ok {
		return diffuse
	}

	exponent := m.shininess()
	nh := mgl32.Clamp(n.Dot(h), 0, 1)
	lobe := float32(math.Pow(float64(nh), float64(exponent))) * (exponent + 8) / (8 * math.Pi)

	tint := core.NewRGB(1, 1, 1).Lerp(base, m.Metal)
	return diffuse.Add(tint.Scale(m.Specular * lobe))
}

// shininess maps roughness to a Blinn-Phong exponent
func (m Material) shininess() float32 {
	r2 := max(m.Roughness*m.Roughness, 1e-4)
	return max(1, 2/r2-2)
}

// Reflection returns the tint applied to a mirror reflection ray. The tint is
// black for non-reflective materials.
func (m Material) Reflection(primitive core.RGB) core.RGB {
	weight := m.Metal * (1 - m.Roughness)
	if weight <= 0 {
		return core.RGB{}
	}
	return m.BaseColor(primitive).Scale(weight)
}
