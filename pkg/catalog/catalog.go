// Package catalog holds the built-in demonstration scenes.
package catalog

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/accel"
	"github.com/df07/go-analytic-raytracer/pkg/scene"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Width       int    `json:"width"`  // suggested image width
	Height      int    `json:"height"` // suggested image height
}

type entry struct {
	info  SceneInfo
	build func(s *scene.Scene) error
	opts  func() []scene.Option
}

var registry = builtins()

// List returns every built-in scene ordered by id
func List() []SceneInfo {
	infos := make([]SceneInfo, 0, len(registry))
	for _, e := range registry {
		infos = append(infos, e.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Lookup returns the description of a built-in scene
func Lookup(id string) (SceneInfo, bool) {
	e, ok := registry[id]
	return e.info, ok
}

// Build creates the named scene on device. The scene is not committed; the
// caller owns it and must Close it.
func Build(id string, device accel.Device, logger *zap.Logger) (*scene.Scene, error) {
	e, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", id)
	}

	opts := e.opts()
	if logger != nil {
		opts = append(opts, scene.WithLogger(logger.With(zap.String("scene", id))))
	}
	s, err := scene.New(device, opts...)
	if err != nil {
		return nil, fmt.Errorf("build scene %s: %w", id, err)
	}
	if err := e.build(s); err != nil {
		return nil, multierr.Append(fmt.Errorf("build scene %s: %w", id, err), s.Close())
	}
	return s, nil
}
