package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
)

func quadShape() MeshShape {
	return MeshShape{
		Vertices:  []core.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

func TestMesh_Instances(t *testing.T) {
	s := newScene(t)
	mesh, err := NewMesh(s, 2, quadShape(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Len() != 4 || mesh.Instances() != 2 {
		t.Fatalf("Expected 4 items over 2 instances, got %d and %d", mesh.Len(), mesh.Instances())
	}
	mesh.Position().Set(1, core.NewVec3(5, 0, 0))
	_ = mesh.Color().SetAll([]core.RGB{{R: 1}, {G: 1}, {B: 1}, {R: 1, G: 1, B: 1}})
	commit(t, s)

	hit := s.Intersect(core.NewRay(core.NewVec3(5.5, -0.5, 5), core.NewVec3(0, 0, -1)))
	if !hit.Hit() {
		t.Fatal("Expected hit on the second instance")
	}
	if hit.PrimID != 2 {
		t.Errorf("Expected item 2 (instance 1, triangle 0), got %d", hit.PrimID)
	}

	expected := core.NewRGB(0.25, 0.5, 0.25)
	if math.Abs(float64(hit.Color.R-expected.R)) > 1e-5 ||
		math.Abs(float64(hit.Color.G-expected.G)) > 1e-5 ||
		math.Abs(float64(hit.Color.B-expected.B)) > 1e-5 {
		t.Errorf("Expected interpolated color %v, got %v", expected, hit.Color)
	}
	if math.Abs(float64(hit.EdgeDistance-0.5)) > 1e-5 {
		t.Errorf("Expected edge distance 0.5, got %f", hit.EdgeDistance)
	}
	if !math.IsInf(float64(hit.Silhouette), 1) {
		t.Errorf("Expected mesh hits to cover their pixel, got silhouette distance %f", hit.Silhouette)
	}
	if !hit.Normal.ApproxEqualThreshold(core.NewVec3(0, 0, 1), 1e-5) {
		t.Errorf("Expected normal (0,0,1), got %v", hit.Normal)
	}
}

func TestMesh_BoundsPerTriangle(t *testing.T) {
	s := newScene(t)
	mesh, err := NewMesh(s, 2, quadShape(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	mesh.Position().Set(1, core.NewVec3(0, 0, 3))

	box := mesh.Bounds(3) // instance 1, triangle 1
	expected := core.NewAABB(core.NewVec3(-1, -1, 3), core.NewVec3(1, 1, 3))
	if box != expected {
		t.Errorf("Expected %v, got %v", expected, box)
	}
}

func TestNewMesh_Invalid(t *testing.T) {
	s := newScene(t)
	if _, err := NewMesh(s, 1, MeshShape{Vertices: quadShape().Vertices}, Options{}); !errors.Is(err, accel.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument without triangles, got %v", err)
	}
	bad := quadShape()
	bad.Triangles = append(bad.Triangles, [3]int{0, 1, 9})
	if _, err := NewMesh(s, 1, bad, Options{}); !errors.Is(err, accel.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a bad index, got %v", err)
	}
}
