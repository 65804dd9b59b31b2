package integrator

import (
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// Integrator defines the interface for shading algorithms
type Integrator interface {
	// RayColor traces ray through the scene and returns its color and coverage
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.RGBA

	// Shade is RayColor for a ray whose closest hit is already known, so
	// primary rays can be traversed in batches
	Shade(ray core.Ray, hit core.HitRecord, scene *scene.Scene, sampler core.Sampler) core.RGBA
}

// Config controls recursion and optional effects
type Config struct {
	MaxDepth  int     // maximum reflection and edge continuation depth
	MinWeight float32 // rays whose weight falls below this are not traced
	Shadows   bool    // cast shadow rays toward every light
	Antialias bool    // blend partially covered silhouette edges
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		MaxDepth:  5,
		MinWeight: 0.01,
		Shadows:   true,
		Antialias: true,
	}
}
