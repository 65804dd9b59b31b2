package intersect

import (
	"math"
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

func TestRayTriangle(t *testing.T) {
	v0 := core.NewVec3(-1, -1, 0)
	v1 := core.NewVec3(1, -1, 0)
	v2 := core.NewVec3(0, 1, 0)

	tests := []struct {
		name      string
		origin    core.Vec3
		dir       core.Vec3
		expectHit bool
		expectedT float32
		expectedU float32
		expectedV float32
		expectedD float32
	}{
		{
			name:      "front",
			origin:    core.NewVec3(0, 0, 5),
			dir:       core.NewVec3(0, 0, -1),
			expectHit: true,
			expectedT: 5,
			expectedU: 0.25,
			expectedV: 0.5,
			expectedD: float32(1 / math.Sqrt(5)),
		},
		{
			name:      "back side",
			origin:    core.NewVec3(0, 0, -5),
			dir:       core.NewVec3(0, 0, 2),
			expectHit: true,
			expectedT: 2.5,
			expectedU: 0.25,
			expectedV: 0.5,
			expectedD: float32(1 / math.Sqrt(5)),
		},
		{
			name:      "near bottom edge",
			origin:    core.NewVec3(0, -0.9, 1),
			dir:       core.NewVec3(0, 0, -1),
			expectHit: true,
			expectedT: 1,
			expectedU: 0.475,
			expectedV: 0.05,
			expectedD: 0.1,
		},
		{
			name:      "outside",
			origin:    core.NewVec3(2, 2, 5),
			dir:       core.NewVec3(0, 0, -1),
			expectHit: false,
		},
		{
			name:      "parallel",
			origin:    core.NewVec3(0, 0, 5),
			dir:       core.NewVec3(1, 0, 0),
			expectHit: false,
		},
		{
			name:      "behind",
			origin:    core.NewVec3(0, 0, 5),
			dir:       core.NewVec3(0, 0, 1),
			expectHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := RayTriangle(tt.origin, tt.dir, v0, v1, v2)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if !approx(hit.T, tt.expectedT) {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
			if !approx(hit.U, tt.expectedU) || !approx(hit.V, tt.expectedV) {
				t.Errorf("Expected barycentrics (%f,%f), got (%f,%f)", tt.expectedU, tt.expectedV, hit.U, hit.V)
			}
			if !approx(hit.D, tt.expectedD) {
				t.Errorf("Expected edge distance %f, got %f", tt.expectedD, hit.D)
			}
			if !hit.N.ApproxEqualThreshold(core.NewVec3(0, 0, 1), tolerance) {
				t.Errorf("Expected geometric normal (0,0,1), got %v", hit.N)
			}
		})
	}
}

func TestRayTriangle_DegenerateTriangle(t *testing.T) {
	p := core.NewVec3(1, 1, 0)
	if _, ok := RayTriangle(core.NewVec3(1, 1, 5), core.NewVec3(0, 0, -1), p, p, core.NewVec3(2, 2, 0)); ok {
		t.Error("Expected degenerate triangle to miss")
	}
}

func TestRayTriangle_SmallTriangles(t *testing.T) {
	for _, scale := range []float32{1, 1e-2, 1e-3, 1e-4} {
		v0 := core.NewVec3(-1, -1, 0).Mul(scale)
		v1 := core.NewVec3(1, -1, 0).Mul(scale)
		v2 := core.NewVec3(0, 1, 0).Mul(scale)
		centroid := v0.Add(v1).Add(v2).Mul(1.0 / 3)

		hit, ok := RayTriangle(centroid.Add(core.NewVec3(0, 0, 1)), core.NewVec3(0, 0, -1), v0, v1, v2)
		if !ok {
			t.Errorf("scale %g: head-on ray through the centroid missed", scale)
			continue
		}
		if !approx(hit.T, 1) {
			t.Errorf("scale %g: expected t=1, got %f", scale, hit.T)
		}
		if !approxTol(hit.U, 1.0/3, 1e-3) || !approxTol(hit.V, 1.0/3, 1e-3) {
			t.Errorf("scale %g: expected centroid barycentrics, got (%f,%f)", scale, hit.U, hit.V)
		}
		if !math.IsInf(float64(hit.S), 1) {
			t.Errorf("scale %g: expected no silhouette distance, got %f", scale, hit.S)
		}
	}
}
