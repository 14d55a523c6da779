package vision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// edgeScene reports a wall at fixed distance for every direction at or to
// the right of edgeDegrees, and nothing to its left.
type edgeScene struct {
	edgeDegrees float64
	wallAt      float64
	wall        phys.ColliderID
	casts       int
}

func (s *edgeScene) CastRay(origin, direction r3.Vec, maxDistance float64, _ phys.Layer) (phys.RaycastHit, bool) {
	s.casts++
	if angleOf(direction) < s.edgeDegrees || maxDistance < s.wallAt {
		return phys.RaycastHit{}, false
	}
	return phys.RaycastHit{
		Collider: s.wall,
		Point:    r3.Add(origin, r3.Scale(s.wallAt, r3.Unit(direction))),
		Distance: s.wallAt,
	}, true
}

func (s *edgeScene) OverlapSphere(r3.Vec, float64, phys.Layer, []phys.Overlap) int { return 0 }

// angleOf returns the local yaw of v in degrees, forward being zero.
func angleOf(v r3.Vec) float64 {
	return math.Atan2(v.X, v.Z) * 180 / math.Pi
}

func identityPose() phys.Pose { return phys.NewPose(r3.Vec{}, phys.Identity()) }
