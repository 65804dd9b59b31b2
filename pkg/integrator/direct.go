package integrator

import (
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/material"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// Direct shades hits with direct lighting from every scene light, optional
// hard or soft shadows and mirror reflections. Silhouette edges are
// antialiased analytically: the primitive's silhouette distance is compared
// with the pixel footprint and the remainder is filled by tracing behind it.
// Edges between faces of one primitive never blend.
type Direct struct {
	config Config
}

// NewDirect creates a direct lighting integrator
func NewDirect(config Config) *Direct {
	return &Direct{config: config}
}

// RayColor implements Integrator
func (d *Direct) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.RGBA {
	return d.Shade(ray, s.Intersect(ray), s, sampler)
}

// Shade implements Integrator
func (d *Direct) Shade(ray core.Ray, hit core.HitRecord, s *scene.Scene, sampler core.Sampler) core.RGBA {
	background := core.RGBA{RGB: s.Background, A: s.BackgroundAlpha}
	if !hit.Hit() {
		return background
	}
	g, ok := s.Geometry(hit.GeomID)
	if !ok {
		return background
	}

	footprint := ray.FootprintAt(hit.T)
	surface := core.Opaque(d.surfaceColor(ray, hit, g, footprint, s, sampler))

	coverage := float32(1)
	if d.config.Antialias && footprint > 0 {
		coverage = core.Clamp01(hit.Silhouette / footprint)
	}
	if coverage >= 1 {
		return surface
	}

	behind := background
	if ray.Depth < d.config.MaxDepth {
		behind = d.RayColor(ray.Continuation(hit), s, sampler)
	}
	return surface.Over(behind, coverage)
}

// surfaceColor picks the fill or outline material by edge distance and
// shades with it. The fill/outline boundary is blended over one footprint.
func (d *Direct) surfaceColor(ray core.Ray, hit core.HitRecord, g scene.Geometry, footprint float32, s *scene.Scene, sampler core.Sampler) core.RGB {
	width := g.OutlineWidth()
	if width <= 0 || hit.EdgeDistance >= width+footprint {
		return d.shade(ray, hit, g.Material(), s, sampler)
	}

	outline := d.shade(ray, hit, g.OutlineMaterial(), s, sampler)
	if hit.EdgeDistance < width || footprint <= 0 || !d.config.Antialias {
		return outline
	}
	fill := d.shade(ray, hit, g.Material(), s, sampler)
	return outline.Lerp(fill, core.Clamp01((hit.EdgeDistance-width)/footprint))
}

// shade evaluates one material at the hit point
func (d *Direct) shade(ray core.Ray, hit core.HitRecord, m material.Material, s *scene.Scene, sampler core.Sampler) core.RGB {
	base := m.BaseColor(hit.Color)
	if m.IsSolid() {
		return base
	}

	n, _, ok := core.SafeNormalize(hit.Normal)
	if !ok {
		return base
	}
	v, _, ok := core.SafeNormalize(ray.Direction.Mul(-1))
	if !ok {
		return base
	}
	// light both sides of open surfaces such as mesh triangles
	if n.Dot(v) < 0 {
		n = n.Mul(-1)
	}

	p := ray.At(hit.T)
	color := s.Ambient.Mul(base)
	for _, light := range s.Lights {
		l, dist, radiance := light.Sample(p, sampler.Get2D())
		cosTheta := n.Dot(l)
		if cosTheta <= 0 {
			continue
		}
		if d.config.Shadows {
			shadow := ray.Secondary(hit, l, ray.Weight)
			shadow.TFar = dist
			if s.Occluded(shadow) {
				continue
			}
		}
		color = color.Add(m.BRDF(l, v, n, hit.Color).Mul(radiance).Scale(cosTheta))
	}

	tint := m.Reflection(hit.Color)
	weight := ray.Weight * max(tint.R, tint.G, tint.B)
	if weight >= d.config.MinWeight && weight > 0 && ray.Depth < d.config.MaxDepth {
		reflected := ray.Secondary(hit, core.Reflect(v.Mul(-1), n), weight)
		color = color.Add(tint.Mul(d.RayColor(reflected, s, sampler).RGB))
	}

	if m.Solid > 0 {
		color = color.Lerp(base, m.Solid)
	}
	return color
}
