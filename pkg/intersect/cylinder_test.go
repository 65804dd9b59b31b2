package intersect

import (
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

func TestRayCylinder(t *testing.T) {
	a := core.NewVec3(0, -1, 0)
	b := core.NewVec3(0, 1, 0)

	tests := []struct {
		name           string
		origin         core.Vec3
		dir            core.Vec3
		expectHit      bool
		expectedT      float32
		expectedNormal core.Vec3
		expectedU      float32
		expectedD      float32
	}{
		{
			name:           "body",
			origin:         core.NewVec3(0, 0, 5),
			dir:            core.NewVec3(0, 0, -1),
			expectHit:      true,
			expectedT:      4.5,
			expectedNormal: core.NewVec3(0, 0, 1),
			expectedU:      0.5,
			expectedD:      0.5,
		},
		{
			name:           "top cap along axis",
			origin:         core.NewVec3(0, 5, 0),
			dir:            core.NewVec3(0, -1, 0),
			expectHit:      true,
			expectedT:      3.5,
			expectedNormal: core.NewVec3(0, 1, 0),
			expectedU:      1,
			expectedD:      0.5,
		},
		{
			name:           "bottom cap from below",
			origin:         core.NewVec3(0, -5, 0),
			dir:            core.NewVec3(0, 2, 0),
			expectHit:      true,
			expectedT:      1.75,
			expectedNormal: core.NewVec3(0, -1, 0),
			expectedU:      0,
			expectedD:      0.5,
		},
		{
			name:           "off-axis body",
			origin:         core.NewVec3(0.3, 0.5, 5),
			dir:            core.NewVec3(0, 0, -1),
			expectHit:      true,
			expectedT:      4.6,
			expectedNormal: core.NewVec3(0.6, 0, 0.8),
			expectedU:      0.75,
			expectedD:      0.2,
		},
		{
			name:      "beside",
			origin:    core.NewVec3(2, 0, 5),
			dir:       core.NewVec3(0, 0, -1),
			expectHit: false,
		},
		{
			name:      "above the cap",
			origin:    core.NewVec3(0, 1.6, 5),
			dir:       core.NewVec3(0, 0, -1),
			expectHit: false,
		},
		{
			name:      "pointing away",
			origin:    core.NewVec3(0, 0, 5),
			dir:       core.NewVec3(0, 0, 1),
			expectHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := RayCylinder(tt.origin, tt.dir, a, b, 0.5)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if !approx(hit.T, tt.expectedT) {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
			if !hit.N.ApproxEqualThreshold(tt.expectedNormal, tolerance) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.N)
			}
			if !approx(hit.U, tt.expectedU) {
				t.Errorf("Expected u=%f, got %f", tt.expectedU, hit.U)
			}
			if !approx(hit.D, tt.expectedD) {
				t.Errorf("Expected edge distance %f, got %f", tt.expectedD, hit.D)
			}
		})
	}
}

func TestRayCylinder_OriginInside(t *testing.T) {
	hit, ok := RayCylinder(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), 0.5)
	if !ok {
		t.Fatal("Expected exit hit from inside")
	}
	if !approx(hit.T, 0.5) {
		t.Errorf("Expected t=0.5, got %f", hit.T)
	}
	if !hit.N.ApproxEqualThreshold(core.NewVec3(1, 0, 0), tolerance) {
		t.Errorf("Expected normal (1,0,0), got %v", hit.N)
	}
}

func TestRayCylinder_DegenerateAxisIsSphere(t *testing.T) {
	p := core.NewVec3(0, 0, 0)
	cyl, ok := RayCylinder(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -2), p, p, 1)
	if !ok {
		t.Fatal("Expected hit")
	}
	sphere, _ := RaySphere(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -2), p, 1)
	if !approx(cyl.T, sphere.T) || !cyl.N.ApproxEqualThreshold(sphere.N, tolerance) {
		t.Errorf("Expected sphere result %+v, got %+v", sphere, cyl)
	}
}

func TestRayCylinder_HitsInsideBounds(t *testing.T) {
	a := core.NewVec3(-1, 0.5, 2)
	b := core.NewVec3(1.5, -1, 0)
	radius := float32(0.4)
	r := core.NewVec3(radius, radius, radius)
	box := core.NewAABBFromPoints(a, b)
	box = core.NewAABB(box.Min.Sub(r), box.Max.Add(r))
	mid := a.Add(b).Mul(0.5)

	sampler := core.NewStreamSampler(11, 2)
	hits := 0
	for i := 0; i < 2000; i++ {
		origin := mid.Add(core.SampleOnUnitSphere(sampler.Get2D()).Mul(8))
		target := mid.Add(core.SampleOnUnitSphere(sampler.Get2D()).Mul(2))
		dir := target.Sub(origin)

		hit, ok := RayCylinder(origin, dir, a, b, radius)
		if !ok {
			continue
		}
		hits++
		if p := origin.Add(dir.Mul(hit.T)); !box.Contains(p, 1e-4) {
			t.Fatalf("Hit point %v outside bounds %v", p, box)
		}
		if !approx(hit.N.Len(), 1) {
			t.Fatalf("Expected unit normal, got %v", hit.N)
		}
	}
	if hits == 0 {
		t.Fatal("Expected some rays to hit")
	}
}
