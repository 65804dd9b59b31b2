package catalog

import (
	"math"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/geometry"
)

// boxShape is an axis-aligned box centered on the origin. Vertex i has the
// sign of bit 0, 1 and 2 of i on x, y and z.
func boxShape(hx, hy, hz float32) geometry.PolyhedronShape {
	vertices := make([]core.Vec3, 8)
	for i := range vertices {
		v := core.NewVec3(-hx, -hy, -hz)
		if i&1 != 0 {
			v[0] = hx
		}
		if i&2 != 0 {
			v[1] = hy
		}
		if i&4 != 0 {
			v[2] = hz
		}
		vertices[i] = v
	}
	return geometry.PolyhedronShape{
		Vertices: vertices,
		Faces: [][]int{
			{0, 2, 6, 4}, {1, 3, 7, 5}, // -x, +x
			{0, 1, 5, 4}, {2, 3, 7, 6}, // -y, +y
			{0, 1, 3, 2}, {4, 5, 7, 6}, // -z, +z
		},
	}
}

func tetrahedronShape() geometry.PolyhedronShape {
	return geometry.PolyhedronShape{
		Vertices: []core.Vec3{{1, 1, 1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}},
		Faces:    [][]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}},
	}
}

func octahedronShape() geometry.PolyhedronShape {
	shape := geometry.PolyhedronShape{
		Vertices: []core.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}},
	}
	for _, x := range []int{0, 1} {
		for _, y := range []int{2, 3} {
			for _, z := range []int{4, 5} {
				shape.Faces = append(shape.Faces, []int{x, y, z})
			}
		}
	}
	return shape
}

// icosahedronShape is a regular icosahedron with circumradius 1
func icosahedronShape() geometry.MeshShape {
	phi := float32((1 + math.Sqrt(5)) / 2)
	vertices := []core.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	for i, v := range vertices {
		vertices[i] = v.Normalize()
	}
	return geometry.MeshShape{
		Vertices: vertices,
		Triangles: [][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
	}
}
