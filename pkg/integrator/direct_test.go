package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/geometry"
	"github.com/df07/go-analytic-raytracer/pkg/material"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

const tolerance = 1e-5

func approxRGB(a, b core.RGB) bool {
	return math.Abs(float64(a.R-b.R)) <= tolerance &&
		math.Abs(float64(a.G-b.G)) <= tolerance &&
		math.Abs(float64(a.B-b.B)) <= tolerance
}

func newScene(t *testing.T, opts ...scene.Option) *scene.Scene {
	t.Helper()
	s, err := scene.New(accel.NewDevice(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// addSphere adds one sphere with the given material and commits the scene
func addSphere(t *testing.T, s *scene.Scene, center core.Vec3, radius float32, opts geometry.Options) *geometry.Sphere {
	t.Helper()
	sp, err := geometry.NewSphere(s, 1, opts)
	if err != nil {
		t.Fatal(err)
	}
	sp.Position().Set(0, center)
	sp.Radius().Set(0, radius)
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	return sp
}

func down(x, y float32) core.Ray {
	return core.NewRay(core.NewVec3(x, y, 5), core.NewVec3(0, 0, -1))
}

var center = core.FixedSampler{Value: 0.5}

func TestDirect_MissReturnsBackground(t *testing.T) {
	s := newScene(t, scene.WithBackground(core.NewRGB(0.1, 0.2, 0.3), 0.5))
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	got := NewDirect(DefaultConfig()).RayColor(down(0, 0), s, center)
	expected := core.RGBA{RGB: core.NewRGB(0.1, 0.2, 0.3), A: 0.5}
	if got != expected {
		t.Errorf("Expected background %v, got %v", expected, got)
	}
}

func TestDirect_SolidMaterial(t *testing.T) {
	s := newScene(t)
	mat := material.Material{Color: core.NewRGB(0.2, 0.4, 0.6), Solid: 1}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &mat})

	got := NewDirect(DefaultConfig()).RayColor(down(0.3, 0.2), s, center)
	if got != core.Opaque(mat.Color) {
		t.Errorf("Expected flat color %v, got %v", mat.Color, got)
	}
}

func TestDirect_Lambert(t *testing.T) {
	s := newScene(t, scene.WithLights(scene.NewDirectional(core.NewVec3(0, 0, 1), core.NewRGB(1, 1, 1))))
	mat := material.Material{Color: core.NewRGB(0.5, 0.25, 1)}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &mat})

	integrator := NewDirect(DefaultConfig())

	got := integrator.RayColor(down(0, 0), s, center)
	if !approxRGB(got.RGB, mat.Color) || got.A != 1 {
		t.Errorf("Expected full Lambert response %v, got %v", mat.Color, got)
	}

	// at x=0.6 the normal is (0.6, 0, 0.8)
	got = integrator.RayColor(down(0.6, 0), s, center)
	if !approxRGB(got.RGB, mat.Color.Scale(0.8)) {
		t.Errorf("Expected cosine falloff %v, got %v", mat.Color.Scale(0.8), got)
	}
}

func TestDirect_PrimitiveColorMix(t *testing.T) {
	s := newScene(t)
	mat := material.Material{Color: core.NewRGB(1, 0, 0), PrimitiveColorMix: 1, Solid: 1}
	sp := addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &mat})
	sp.Color().Set(0, core.NewRGB(0, 0, 1))

	got := NewDirect(DefaultConfig()).RayColor(down(0, 0), s, center)
	if got.RGB != core.NewRGB(0, 0, 1) {
		t.Errorf("Expected the primitive color, got %v", got)
	}
}

func TestDirect_Shadows(t *testing.T) {
	light := scene.NewDirectional(core.NewVec3(0, 1, 1), core.NewRGB(1, 1, 1))
	s := newScene(t, scene.WithLights(light))
	mat := material.Material{Color: core.NewRGB(1, 1, 1)}

	sp, err := geometry.NewSphere(s, 2, geometry.Options{Material: &mat})
	if err != nil {
		t.Fatal(err)
	}
	// the second sphere sits on the shadow ray from the top of the first
	_ = sp.Position().SetAll([]core.Vec3{{0, 0, 0}, {0, 2.5, 3.5}})
	_ = sp.Radius().SetAll([]float32{1, 0.5})
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	config := DefaultConfig()
	lit := NewDirect(Config{MaxDepth: config.MaxDepth, MinWeight: config.MinWeight, Antialias: true})
	got := lit.RayColor(down(0, 0), s, center)
	expected := float32(1 / math.Sqrt2)
	if math.Abs(float64(got.R-expected)) > tolerance {
		t.Errorf("Expected unshadowed value %f, got %v", expected, got)
	}

	shadowed := NewDirect(config).RayColor(down(0, 0), s, center)
	if shadowed.RGB != (core.RGB{}) {
		t.Errorf("Expected the point to be in shadow, got %v", shadowed)
	}
}

func TestDirect_Outline(t *testing.T) {
	s := newScene(t)
	fill := material.Material{Color: core.NewRGB(0, 1, 0), Solid: 1}
	outline := material.Material{Color: core.NewRGB(1, 0, 0), Solid: 1}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &fill, OutlineMaterial: &outline, OutlineWidth: 0.3})

	integrator := NewDirect(DefaultConfig())
	if got := integrator.RayColor(down(0.9, 0), s, center); got.RGB != outline.Color {
		t.Errorf("Expected outline color inside the outline band, got %v", got)
	}
	if got := integrator.RayColor(down(0, 0), s, center); got.RGB != fill.Color {
		t.Errorf("Expected fill color at the center, got %v", got)
	}
}

func TestDirect_OutlineWidthZeroDisables(t *testing.T) {
	s := newScene(t)
	fill := material.Material{Color: core.NewRGB(0, 1, 0), Solid: 1}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &fill})

	if got := NewDirect(DefaultConfig()).RayColor(down(0.99, 0), s, center); got.RGB != fill.Color {
		t.Errorf("Expected fill color near the edge without outline, got %v", got)
	}
}

func TestDirect_EdgeAntialiasing(t *testing.T) {
	s := newScene(t, scene.WithBackground(core.NewRGB(0, 0, 1), 1))
	fill := material.Material{Color: core.NewRGB(1, 0, 0), Solid: 1}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &fill})

	ray := down(0.95, 0)
	ray.Footprint = 0.2

	got := NewDirect(DefaultConfig()).RayColor(ray, s, center)
	// edge distance 0.05 over a footprint of 0.2 covers a quarter of the pixel
	expected := core.NewRGB(0.25, 0, 0.75)
	if !approxRGB(got.RGB, expected) {
		t.Errorf("Expected partial coverage %v, got %v", expected, got)
	}

	inner := down(0, 0)
	inner.Footprint = 0.2
	if got := NewDirect(DefaultConfig()).RayColor(inner, s, center); got.RGB != fill.Color {
		t.Errorf("Expected full coverage well inside the silhouette, got %v", got)
	}

	config := DefaultConfig()
	config.Antialias = false
	if got := NewDirect(config).RayColor(ray, s, center); got.RGB != fill.Color {
		t.Errorf("Expected a hard edge with antialiasing off, got %v", got)
	}
}

func TestDirect_EdgeShowsGeometryBehind(t *testing.T) {
	s := newScene(t, scene.WithBackground(core.NewRGB(0, 0, 1), 1))
	front := material.Material{Color: core.NewRGB(1, 0, 0), Solid: 1}
	back := material.Material{Color: core.NewRGB(0, 1, 0), Solid: 1}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &front})
	addSphere(t, s, core.NewVec3(0, 0, -5), 3, geometry.Options{Material: &back})

	ray := down(0.95, 0)
	ray.Footprint = 0.2
	got := NewDirect(DefaultConfig()).RayColor(ray, s, center)
	expected := core.NewRGB(0.25, 0.75, 0)
	if !approxRGB(got.RGB, expected) {
		t.Errorf("Expected the edge to blend with the sphere behind, got %v", got)
	}
}

func TestDirect_Reflection(t *testing.T) {
	s := newScene(t, scene.WithLights())
	mirror := material.Material{Color: core.NewRGB(1, 1, 1), Metal: 1}
	green := material.Material{Color: core.NewRGB(0, 1, 0), Solid: 1}
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{Material: &mirror})
	addSphere(t, s, core.NewVec3(0, 0, 6), 1, geometry.Options{Material: &green})

	ray := core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1))

	got := NewDirect(DefaultConfig()).RayColor(ray, s, center)
	if !approxRGB(got.RGB, green.Color) {
		t.Errorf("Expected the mirror to show the green sphere, got %v", got)
	}

	config := DefaultConfig()
	config.MaxDepth = 0
	if got := NewDirect(config).RayColor(ray, s, center); got.RGB != (core.RGB{}) {
		t.Errorf("Expected no reflection at depth limit, got %v", got)
	}
}

func TestDirect_ShadeMatchesRayColor(t *testing.T) {
	s := newScene(t)
	addSphere(t, s, core.Vec3{}, 1, geometry.Options{})

	integrator := NewDirect(DefaultConfig())
	ray := down(0.4, -0.3)
	if a, b := integrator.RayColor(ray, s, center), integrator.Shade(ray, s.Intersect(ray), s, center); a != b {
		t.Errorf("Expected Shade with a precomputed hit to match RayColor: %v vs %v", b, a)
	}
}
