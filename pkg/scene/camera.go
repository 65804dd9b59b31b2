package scene

import (
	"math"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

// Camera generates primary rays. (px, py) are continuous pixel coordinates
// with (0, 0) at the top-left corner of the image; lens is a sample in
// [0,1)^2 used for depth of field.
type Camera interface {
	GenerateRay(px, py float32, width, height int, lens core.Vec2) core.Ray
}

// basis returns the camera frame: forward, right and up unit vectors
func basis(position, lookAt, up core.Vec3) (forward, right, trueUp core.Vec3) {
	forward, _, ok := core.SafeNormalize(lookAt.Sub(position))
	if !ok {
		forward = core.NewVec3(0, 0, -1)
	}
	right, _, ok = core.SafeNormalize(forward.Cross(up))
	if !ok {
		// up parallel to the view direction; pick any perpendicular
		right, _ = core.OrthonormalBasis(forward)
	}
	trueUp = right.Cross(forward)
	return forward, right, trueUp
}

// Orthographic projects along a single view direction. Height is the
// world-space height of the visible area; the width follows the image aspect.
type Orthographic struct {
	Position core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	Height   float32

	forward, right, up core.Vec3
}

// NewOrthographic creates an orthographic camera
func NewOrthographic(position, lookAt, up core.Vec3, height float32) *Orthographic {
	c := &Orthographic{Position: position, LookAt: lookAt, Up: up, Height: height}
	c.forward, c.right, c.up = basis(position, lookAt, up)
	return c
}

// GenerateRay returns a parallel ray through the pixel position. The pixel
// footprint is constant along the ray.
func (c *Orthographic) GenerateRay(px, py float32, width, height int, _ core.Vec2) core.Ray {
	pixel := c.Height / float32(height)
	sx := (px - float32(width)/2) * pixel
	sy := (float32(height)/2 - py) * pixel

	origin := c.Position.Add(c.right.Mul(sx)).Add(c.up.Mul(sy))
	ray := core.NewRay(origin, c.forward)
	ray.Footprint = pixel
	return ray
}

// CameraConfig describes a perspective camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction
	VFov          float32   // Vertical field of view in degrees
	Aperture      float32   // Lens diameter; 0 disables depth of field
	FocusDistance float32   // Distance to the focus plane; 0 means |LookAt - Center|
}

// Perspective is a pinhole or thin-lens camera
type Perspective struct {
	config CameraConfig

	forward, right, up core.Vec3
	halfHeight         float32 // tan(vfov/2)
	focus              float32
}

// NewPerspective creates a perspective camera
func NewPerspective(config CameraConfig) *Perspective {
	if config.VFov <= 0 {
		config.VFov = 45
	}
	if config.FocusDistance <= 0 {
		config.FocusDistance = max(config.LookAt.Sub(config.Center).Len(), 1e-3)
	}

	c := &Perspective{config: config}
	c.forward, c.right, c.up = basis(config.Center, config.LookAt, config.Up)
	c.halfHeight = float32(math.Tan(float64(config.VFov) * math.Pi / 360))
	c.focus = config.FocusDistance
	return c
}

// Config returns the camera configuration with defaults applied
func (c *Perspective) Config() CameraConfig {
	return c.config
}

// GenerateRay returns a ray from the lens through the focus plane point of
// the pixel position
func (c *Perspective) GenerateRay(px, py float32, width, height int, lens core.Vec2) core.Ray {
	aspect := float32(width) / float32(height)
	sx := (2*px/float32(width) - 1) * c.halfHeight * aspect
	sy := (1 - 2*py/float32(height)) * c.halfHeight

	target := c.config.Center.Add(
		c.forward.Add(c.right.Mul(sx)).Add(c.up.Mul(sy)).Mul(c.focus))

	origin := c.config.Center
	if c.config.Aperture > 0 {
		disk := core.SamplePointInUnitDisk(lens)
		radius := c.config.Aperture / 2
		origin = origin.Add(c.right.Mul(disk[0] * radius)).Add(c.up.Mul(disk[1] * radius))
	}

	ray := core.NewRay(origin, target.Sub(origin))
	ray.Spread = 2 * c.halfHeight / float32(height)
	return ray
}
