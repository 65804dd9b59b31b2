package catalog

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/core"
	"github.com/df07/go-analytic-raytracer/pkg/geometry"
	"github.com/df07/go-analytic-raytracer/pkg/loaders"
	"github.com/df07/go-analytic-raytracer/pkg/material"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// BuildPLY creates a scene holding the mesh of a PLY file, framed by an
// orthographic camera looking down the (1, 1, 1) diagonal. Vertex colors
// are used when the file has them.
func BuildPLY(path string, device accel.Device, logger *zap.Logger) (*scene.Scene, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scene", filepath.Base(path)))

	data, err := loaders.LoadPLY(path)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded mesh",
		zap.Int("vertices", len(data.Vertices)),
		zap.Int("triangles", len(data.Triangles)),
		zap.Bool("colors", len(data.Colors) > 0))

	if len(data.Triangles) == 0 {
		return nil, fmt.Errorf("build scene %s: no faces", path)
	}

	bounds := core.NewAABBFromPoints(data.Vertices...)
	center := bounds.Center()
	radius := bounds.Size().Len() / 2
	if radius <= 0 {
		radius = 1
	}
	eye := center.Add(core.NewVec3(1, 1, 1).Normalize().Mul(3 * radius))

	s, err := scene.New(device,
		scene.WithCamera(scene.NewOrthographic(eye, center, core.NewVec3(0, 1, 0), 2.2*radius)),
		scene.WithLights(scene.NewDirectional(core.NewVec3(1, 2, 3), core.NewRGB(1, 1, 1))),
		scene.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build scene %s: %w", path, err)
	}

	if err := addPLYMesh(s, data); err != nil {
		return nil, multierr.Append(fmt.Errorf("build scene %s: %w", path, err), s.Close())
	}
	return s, nil
}

func addPLYMesh(s *scene.Scene, data *loaders.PLYData) error {
	m := material.Default()
	m.Color = core.LinearRGB(0.8, 0.8, 0.8)
	if len(data.Colors) > 0 {
		m.PrimitiveColorMix = 1
	}

	mesh, err := geometry.NewMesh(s, 1, geometry.MeshShape{
		Vertices:  data.Vertices,
		Triangles: data.Triangles,
	}, geometry.Options{Material: &m})
	if err != nil {
		return err
	}
	if len(data.Colors) > 0 {
		return mesh.Color().SetAll(data.Colors)
	}
	return nil
}
