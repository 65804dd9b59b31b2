package catalog

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/geometry"
	"github.com/df07/go-analytic-raytracer/pkg/material"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

func builtins() map[string]entry {
	entries := []entry{
		{
			info: SceneInfo{
				ID:          "hexagon",
				DisplayName: "Hexagon",
				Description: "Six outlined spheres in a ring, orthographic",
				Width:       300, Height: 300,
			},
			opts:  hexagonOptions,
			build: buildHexagon,
		},
		{
			info: SceneInfo{
				ID:          "spheres",
				DisplayName: "Four Spheres",
				Description: "Four spheres colored per primitive, lit from the side",
				Width:       300, Height: 300,
			},
			opts:  fourSpheresOptions,
			build: buildFourSpheres,
		},
		{
			info: SceneInfo{
				ID:          "spheregrid",
				DisplayName: "Sphere Grid",
				Description: "A 10x10 grid of matte and metal spheres on a slab",
				Width:       640, Height: 360,
			},
			opts:  sphereGridOptions,
			build: buildSphereGrid,
		},
		{
			info: SceneInfo{
				ID:          "polyhedra",
				DisplayName: "Polyhedra",
				Description: "Rotated cubes, tetrahedra and octahedra with face colors",
				Width:       400, Height: 300,
			},
			opts:  polyhedraOptions,
			build: buildPolyhedra,
		},
		{
			info: SceneInfo{
				ID:          "mesh",
				DisplayName: "Icosahedra",
				Description: "Instanced triangle mesh with per-vertex colors",
				Width:       400, Height: 300,
			},
			opts:  meshOptions,
			build: buildMesh,
		},
		{
			info: SceneInfo{
				ID:          "molecule",
				DisplayName: "Benzene",
				Description: "Ball and stick model built from spheres and spherocylinders",
				Width:       400, Height: 400,
			},
			opts:  moleculeOptions,
			build: buildMolecule,
		},
	}

	registry := make(map[string]entry, len(entries))
	for _, e := range entries {
		registry[e.info.ID] = e
	}
	return registry
}

// ringPositions places n points evenly on a circle in the XY plane
func ringPositions(n int, radius float32) []core.Vec3 {
	positions := make([]core.Vec3, n)
	for i := range positions {
		angle := float64(i) * 2 * math.Pi / float64(n)
		positions[i] = core.NewVec3(radius*float32(math.Cos(angle)), radius*float32(math.Sin(angle)), 0)
	}
	return positions
}

func hexagonOptions() []scene.Option {
	return []scene.Option{
		scene.WithCamera(scene.NewOrthographic(core.NewVec3(0, 0, 10), core.Vec3{}, core.NewVec3(0, 1, 0), 6)),
	}
}

func buildHexagon(s *scene.Scene) error {
	m := material.Default()
	m.Color = core.LinearRGB(1, 0.874, 0.169)

	spheres, err := geometry.NewSphere(s, 6, geometry.Options{Material: &m, OutlineWidth: 0.12})
	if err != nil {
		return err
	}
	spheres.Radius().Fill(1)
	return spheres.Position().SetAll(ringPositions(6, 2))
}

func fourSpheresOptions() []scene.Option {
	return []scene.Option{
		scene.WithCamera(scene.NewOrthographic(core.NewVec3(10, 10, 10), core.Vec3{}, core.NewVec3(0, 1, 0), 4)),
		scene.WithLights(scene.NewDirectional(core.NewVec3(4, 3, 0), core.NewRGB(1, 1, 1))),
	}
}

func buildFourSpheres(s *scene.Scene) error {
	m := material.Default()
	m.Color = core.LinearRGB(0.42, 0.267, 1)
	m.PrimitiveColorMix = 1

	spheres, err := geometry.NewSphere(s, 4, geometry.Options{Material: &m})
	if err != nil {
		return err
	}
	spheres.Radius().Fill(1)
	if err := spheres.Position().SetAll([]core.Vec3{{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1}}); err != nil {
		return err
	}
	return spheres.Color().SetAll([]core.RGB{
		core.LinearRGB(1, 0, 0),
		core.LinearRGB(0, 1, 0),
		core.LinearRGB(0, 0, 1),
		core.LinearRGB(1, 0, 1),
	})
}

func sphereGridOptions() []scene.Option {
	return []scene.Option{
		scene.WithCamera(scene.NewPerspective(scene.CameraConfig{
			Center:   core.NewVec3(4.5, 6, 18),
			LookAt:   core.NewVec3(4.5, 0.8, 4.5),
			Up:       core.NewVec3(0, 1, 0),
			VFov:     40,
			Aperture: 0.02,
		})),
		scene.WithLights(
			&scene.Directional{Direction: core.NewVec3(-1, 2, 1.5), Color: core.NewRGB(0.9, 0.9, 0.85), Theta: 0.05},
			&scene.Point{Position: core.NewVec3(4.5, 5, 4.5), Color: core.NewRGB(4, 4, 4), Radius: 0.5},
		),
		scene.WithBackground(core.NewRGB(0.5, 0.7, 1.0), 1),
		scene.WithAmbient(core.NewRGB(0.08, 0.08, 0.1)),
	}
}

func buildSphereGrid(s *scene.Scene) error {
	const gridSize = 10

	matte := material.Default()
	matte.PrimitiveColorMix = 1
	metal := matte
	metal.Metal = 1
	metal.Roughness = 0.1

	// alternate cells use the metal material
	var mattePos, metalPos []core.Vec3
	var matteColor, metalColor []core.RGB
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			pos := core.NewVec3(float32(i), 0.4, float32(j))
			c := oklchToRGB(0.7, 0.15, float64(i*gridSize+j)*360/(gridSize*gridSize))
			if (i+j)%2 == 0 {
				mattePos, matteColor = append(mattePos, pos), append(matteColor, c)
			} else {
				metalPos, metalColor = append(metalPos, pos), append(metalColor, c)
			}
		}
	}

	for _, group := range []struct {
		m      material.Material
		pos    []core.Vec3
		colors []core.RGB
	}{{matte, mattePos, matteColor}, {metal, metalPos, metalColor}} {
		spheres, err := geometry.NewSphere(s, len(group.pos), geometry.Options{Material: &group.m})
		if err != nil {
			return err
		}
		spheres.Radius().Fill(0.4)
		if err := spheres.Position().SetAll(group.pos); err != nil {
			return err
		}
		if err := spheres.Color().SetAll(group.colors); err != nil {
			return err
		}
	}

	ground := material.Material{Color: core.NewRGB(0.6, 0.6, 0.6), Roughness: 0.8, Specular: 0.1}
	slab, err := geometry.NewConvexPolyhedron(s, 1, boxShape(6, 0.1, 6), geometry.Options{Material: &ground})
	if err != nil {
		return err
	}
	slab.Position().Set(0, core.NewVec3(4.5, -0.1, 4.5))
	return nil
}

func polyhedraOptions() []scene.Option {
	return []scene.Option{
		scene.WithCamera(scene.NewOrthographic(core.NewVec3(5, 4, 10), core.Vec3{}, core.NewVec3(0, 1, 0), 7)),
		scene.WithLights(
			scene.NewDirectional(core.NewVec3(1, 2, 3), core.NewRGB(0.9, 0.9, 0.9)),
			scene.NewDirectional(core.NewVec3(-2, 1, 1), core.NewRGB(0.3, 0.3, 0.35)),
		),
		scene.WithAmbient(core.NewRGB(0.05, 0.05, 0.05)),
	}
}

func buildPolyhedra(s *scene.Scene) error {
	m := material.Default()
	m.Color = core.NewRGB(0.8, 0.8, 0.8)
	m.PrimitiveColorMix = 1

	cube := boxShape(0.6, 0.6, 0.6)
	cube.FaceColors = []core.RGB{
		oklchToRGB(0.7, 0.15, 0), oklchToRGB(0.7, 0.15, 60),
		oklchToRGB(0.7, 0.15, 120), oklchToRGB(0.7, 0.15, 180),
		oklchToRGB(0.7, 0.15, 240), oklchToRGB(0.7, 0.15, 300),
	}
	cube.ColorByFace = 1

	shapes := []struct {
		shape geometry.PolyhedronShape
		row   float32
		color core.RGB
	}{
		{cube, 2, core.NewRGB(1, 1, 1)},
		{tetrahedronShape(), 0, core.LinearRGB(0.9, 0.4, 0.2)},
		{octahedronShape(), -2, core.LinearRGB(0.2, 0.6, 0.9)},
	}

	for _, row := range shapes {
		poly, err := geometry.NewConvexPolyhedron(s, 3, row.shape, geometry.Options{Material: &m, OutlineWidth: 0.04})
		if err != nil {
			return err
		}
		for i := 0; i < 3; i++ {
			angle := float32(i+1) * 0.5
			poly.Position().Set(i, core.NewVec3(float32(i-1)*2.5, row.row, 0))
			poly.Orientation().Set(i, mgl32.QuatRotate(angle, core.NewVec3(1, 1, 0).Normalize()))
			poly.Color().Set(i, row.color)
		}
	}
	return nil
}

func meshOptions() []scene.Option {
	return []scene.Option{
		scene.WithCamera(scene.NewPerspective(scene.CameraConfig{
			Center: core.NewVec3(0, 1.5, 7),
			LookAt: core.Vec3{},
			Up:     core.NewVec3(0, 1, 0),
			VFov:   45,
		})),
		scene.WithLights(&scene.Point{Position: core.NewVec3(3, 4, 5), Color: core.NewRGB(40, 40, 40), Radius: 0.3}),
		scene.WithAmbient(core.NewRGB(0.05, 0.05, 0.05)),
	}
}

func buildMesh(s *scene.Scene) error {
	m := material.Default()
	m.PrimitiveColorMix = 1
	m.Specular = 0.3

	shape := icosahedronShape()
	mesh, err := geometry.NewMesh(s, 3, shape, geometry.Options{Material: &m, OutlineWidth: 0.015})
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		mesh.Position().Set(i, core.NewVec3(float32(i-1)*2.4, 0, 0))
		mesh.Orientation().Set(i, mgl32.QuatRotate(float32(i)*0.6, core.NewVec3(0, 1, 0)))
	}
	for i, v := range shape.Vertices {
		// hue from the vertex direction
		hue := math.Atan2(float64(v[1]), float64(v[0]))*180/math.Pi + 180
		mesh.Color().Set(i, oklchToRGB(0.75, 0.14, hue))
	}
	return nil
}

func moleculeOptions() []scene.Option {
	return []scene.Option{
		scene.WithCamera(scene.NewOrthographic(core.NewVec3(0, -3, 10), core.Vec3{}, core.NewVec3(0, 1, 0), 7)),
		scene.WithLights(scene.NewDirectional(core.NewVec3(1, 1, 2), core.NewRGB(1, 1, 1))),
		scene.WithAmbient(core.NewRGB(0.1, 0.1, 0.1)),
	}
}

func buildMolecule(s *scene.Scene) error {
	carbon := core.LinearRGB(0.35, 0.35, 0.35)
	hydrogen := core.LinearRGB(0.95, 0.95, 0.95)

	m := material.Default()
	m.PrimitiveColorMix = 1

	carbons := ringPositions(6, 1.4)
	hydrogens := ringPositions(6, 2.48)

	atoms, err := geometry.NewSphere(s, 12, geometry.Options{Material: &m, OutlineWidth: 0.02})
	if err != nil {
		return err
	}
	for i := 0; i < 6; i++ {
		atoms.Position().Set(i, carbons[i])
		atoms.Radius().Set(i, 0.4)
		atoms.Color().Set(i, carbon)
		atoms.Position().Set(6+i, hydrogens[i])
		atoms.Radius().Set(6+i, 0.25)
		atoms.Color().Set(6+i, hydrogen)
	}

	// ring bonds then carbon-hydrogen bonds
	bonds, err := geometry.NewCylinder(s, 12, geometry.Options{Material: &m})
	if err != nil {
		return err
	}
	bonds.Radius().Fill(0.12)
	for i := 0; i < 6; i++ {
		bonds.Points().Set(i, [2]core.Vec3{carbons[i], carbons[(i+1)%6]})
		bonds.Color().Set(i, [2]core.RGB{carbon, carbon})
		bonds.Points().Set(6+i, [2]core.Vec3{carbons[i], hydrogens[i]})
		bonds.Color().Set(6+i, [2]core.RGB{carbon, hydrogen})
	}
	return nil
}
