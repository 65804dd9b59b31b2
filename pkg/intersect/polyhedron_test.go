package intersect

import (
	"math"
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

func cubePlanes() []Plane {
	return []Plane{
		{N: core.NewVec3(1, 0, 0), Offset: 1},
		{N: core.NewVec3(-1, 0, 0), Offset: 1},
		{N: core.NewVec3(0, 1, 0), Offset: 1},
		{N: core.NewVec3(0, -1, 0), Offset: 1},
		{N: core.NewVec3(0, 0, 1), Offset: 1},
		{N: core.NewVec3(0, 0, -1), Offset: 1},
	}
}

func TestRayConvexPolyhedron(t *testing.T) {
	tests := []struct {
		name           string
		origin         core.Vec3
		dir            core.Vec3
		expectHit      bool
		expectedT      float32
		expectedNormal core.Vec3
		expectedD      float32
		expectedFace   int
	}{
		{
			name:           "front face center",
			origin:         core.NewVec3(0, 0, 5),
			dir:            core.NewVec3(0, 0, -1),
			expectHit:      true,
			expectedT:      4,
			expectedNormal: core.NewVec3(0, 0, 1),
			expectedD:      1,
			expectedFace:   4,
		},
		{
			name:           "front face off center",
			origin:         core.NewVec3(0.5, 0.25, 5),
			dir:            core.NewVec3(0, 0, -4),
			expectHit:      true,
			expectedT:      1,
			expectedNormal: core.NewVec3(0, 0, 1),
			expectedD:      0.5,
			expectedFace:   4,
		},
		{
			name:           "inside exits",
			origin:         core.Vec3{},
			dir:            core.NewVec3(1, 0, 0),
			expectHit:      true,
			expectedT:      1,
			expectedNormal: core.NewVec3(1, 0, 0),
			expectedD:      1,
			expectedFace:   0,
		},
		{
			name:      "parallel outside",
			origin:    core.NewVec3(3, 0, 5),
			dir:       core.NewVec3(0, 0, -1),
			expectHit: false,
		},
		{
			name:      "behind",
			origin:    core.NewVec3(0, 0, 5),
			dir:       core.NewVec3(0, 0, 1),
			expectHit: false,
		},
		{
			name:      "diagonal miss past corner",
			origin:    core.NewVec3(3, 0, 5),
			dir:       core.NewVec3(0, 1, -1),
			expectHit: false,
		},
		{
			name:      "zero direction",
			origin:    core.NewVec3(0, 0, 5),
			dir:       core.Vec3{},
			expectHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := RayConvexPolyhedron(tt.origin, tt.dir, cubePlanes())
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
			if !approx(hit.D, tt.expectedD) {
				t.Errorf("Expected edge distance %f, got %f", tt.expectedD, hit.D)
			}
			if hit.Face != tt.expectedFace {
				t.Errorf("Expected face %d, got %d", tt.expectedFace, hit.Face)
			}
		})
	}
}

// rotatedCubePlanes is the unit cube turned 45 degrees about Y, so a ray
// down -Z sees two front faces meeting at a vertical edge through x = 0
func rotatedCubePlanes() []Plane {
	s := float32(math.Sqrt2 / 2)
	return []Plane{
		{N: core.NewVec3(s, 0, s), Offset: 1},
		{N: core.NewVec3(-s, 0, -s), Offset: 1},
		{N: core.NewVec3(0, 1, 0), Offset: 1},
		{N: core.NewVec3(0, -1, 0), Offset: 1},
		{N: core.NewVec3(-s, 0, s), Offset: 1},
		{N: core.NewVec3(s, 0, -s), Offset: 1},
	}
}

func TestRayConvexPolyhedron_Silhouette(t *testing.T) {
	inf := float32(math.Inf(1))
	down := core.NewVec3(0, 0, -1)
	tests := []struct {
		name      string
		planes    []Plane
		origin    core.Vec3
		dir       core.Vec3
		expectedD float32
		expectedS float32
	}{
		{"cube face center", cubePlanes(), core.NewVec3(0, 0, 5), down, 1, 1},
		{"cube near side edge", cubePlanes(), core.NewVec3(0.9, 0.25, 5), down, 0.1, 0.1},
		// the nearest edge is shared with the other front face and is not silhouette
		{"beside front edge", rotatedCubePlanes(), core.NewVec3(0.1, 0.5, 5), down, 0.1 * math.Sqrt2, 0.5},
		{"on front edge", rotatedCubePlanes(), core.NewVec3(0, 0, 5), down, 0, 1},
		{"near outer edge", rotatedCubePlanes(), core.NewVec3(1.4, 0, 5), down, (math.Sqrt2 - 1.4) * math.Sqrt2, (math.Sqrt2 - 1.4) * math.Sqrt2},
		{"inside", cubePlanes(), core.Vec3{}, core.NewVec3(1, 0, 0), 1, inf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := RayConvexPolyhedron(tt.origin, tt.dir, tt.planes)
			if !ok {
				t.Fatal("Expected a hit")
			}
			if !approxTol(hit.D, tt.expectedD, 1e-4) {
				t.Errorf("Expected edge distance %f, got %f", tt.expectedD, hit.D)
			}
			if math.IsInf(float64(tt.expectedS), 1) {
				if !math.IsInf(float64(hit.S), 1) {
					t.Errorf("Expected no silhouette, got %f", hit.S)
				}
				return
			}
			if !approxTol(hit.S, tt.expectedS, 1e-4) {
				t.Errorf("Expected silhouette distance %f, got %f", tt.expectedS, hit.S)
			}
		})
	}
}

func TestRayConvexPolyhedron_NoPlanes(t *testing.T) {
	if _, ok := RayConvexPolyhedron(core.Vec3{}, core.NewVec3(0, 0, 1), nil); ok {
		t.Error("Expected miss with no planes")
	}
}

func TestPlanesFromFaces_Cube(t *testing.T) {
	vertices := []core.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	// mixed winding; planes must still face outward
	faces := [][]int{
		{0, 1, 2, 3}, {4, 5, 6, 7},
		{0, 4, 7, 3}, {1, 2, 6, 5},
		{0, 1, 5, 4}, {3, 7, 6, 2},
		{0, 1},
	}

	planes := PlanesFromFaces(vertices, faces)
	if len(planes) != 6 {
		t.Fatalf("Expected 6 planes, got %d", len(planes))
	}
	for i, p := range planes {
		if !approx(p.Offset, 1) {
			t.Errorf("Plane %d: expected offset 1, got %f (normal %v)", i, p.Offset, p.N)
		}
		if !approx(p.N.Len(), 1) {
			t.Errorf("Plane %d: expected unit normal, got %v", i, p.N)
		}
	}

	hit, ok := RayConvexPolyhedron(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), planes)
	if !ok || !approx(hit.T, 4) {
		t.Errorf("Expected hit at t=4 on derived planes, got %+v ok=%t", hit, ok)
	}
}
