// Package accel defines the boundary between the tracer and a ray
// acceleration engine, and provides a BVH implementation of it.
//
// Geometry plugs into an engine by implementing Primitives: the engine asks
// for per-item bounds while it builds, and calls back into Intersect for
// every candidate item during traversal. The engine never interprets the
// geometry itself.
package accel

import (
	"errors"

	"github.com/df07/go-analytic-raytracer/pkg/core"
)

var (
	ErrResourceExhausted = errors.New("accel: resource exhausted")
	ErrInvalidArgument   = errors.New("accel: invalid argument")
	ErrInvalidBounds     = errors.New("accel: invalid primitive bounds")
	ErrNotCommitted      = errors.New("accel: scene not committed")
	ErrClosed            = errors.New("accel: closed")
)

// Primitives is the capability a geometry registers with an engine scene.
//
// Bounds must not mutate anything: the engine may call it any number of
// times and in any order. Intersect must only write to hit when it finds a
// hit with ray.TNear < t < hit.T.
type Primitives interface {
	Bounds(item int) core.AABB
	Intersect(ray core.Ray, item int, hit *core.HitRecord)
}

// Device owns engine-wide resources. Errors raised outside a direct call
// (during traversal, for example) are queued and reported by Err.
type Device interface {
	NewScene() (Scene, error)
	// Err returns the first pending error and clears it
	Err() error
	Close() error
}

// Scene is a set of registered primitive sets and the structure built over
// their bounds. Traversal methods are safe for concurrent use; registration
// and Commit are not safe to run concurrently with traversal.
type Scene interface {
	Register(n int, prims Primitives) (core.GeomID, error)
	Deregister(id core.GeomID) error
	Commit() error

	Intersect(ray core.Ray) core.HitRecord
	IntersectN(rays []core.Ray, hits []core.HitRecord)
	Occluded(ray core.Ray) bool

	Close() error
}
