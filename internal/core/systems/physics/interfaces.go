package physics

import "gonum.org/v1/gonum/spatial/r3"

// Scene is the query capability the vision core depends on.
// Implementations are expected to be deterministic for a static scene.
type Scene interface {
	// CastRay casts from origin along direction (normalized internally) up to
	// maxDistance and reports the closest collider whose layer matches mask.
	CastRay(origin, direction r3.Vec, maxDistance float64, mask Layer) (RaycastHit, bool)

	// OverlapSphere writes every collider on mask overlapping the sphere into buf
	// and returns the number of valid entries. It never grows buf; colliders past
	// len(buf) are dropped.
	OverlapSphere(origin r3.Vec, radius float64, mask Layer, buf []Overlap) int
}

// Collider is a shape that can be struck by rays and found by overlap queries.
type Collider interface {
	ID() ColliderID
	Name() string
	Layer() Layer
	Center() r3.Vec

	// IntersectRay returns the entry distance along a unit direction.
	// Colliders that contain the origin are not reported.
	IntersectRay(origin, dir r3.Vec, maxDistance float64) (float64, bool)
	OverlapsSphere(center r3.Vec, radius float64) bool
}

// ColliderID is a stable identity for a collider. Zero is never assigned.
type ColliderID uint64

// RaycastHit describes the closest collider struck by a ray.
type RaycastHit struct {
	Collider ColliderID
	Point    r3.Vec
	Distance float64
}

// Overlap is one overlap query match.
type Overlap struct {
	Collider ColliderID
	Position r3.Vec
}
