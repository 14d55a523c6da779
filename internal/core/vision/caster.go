package vision

import (
	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// RayCaster casts rays from a sensor pose against the obstruction layers.
//
// Directions are local and need not be unit length. The cast segment is
// direction*maxDistance: a shortened direction shortens the cast, and a miss
// lands exactly on the segment end.
type RayCaster struct {
	scene       phys.Scene
	pose        phys.Pose
	maxDistance float64
	mask        phys.Layer
}

func NewRayCaster(scene phys.Scene, pose phys.Pose, maxDistance float64, mask phys.Layer) *RayCaster {
	return &RayCaster{scene: scene, pose: pose, maxDistance: maxDistance, mask: mask}
}

// SetPose updates the origin and orientation used by subsequent casts.
func (c *RayCaster) SetPose(pose phys.Pose) { c.pose = pose }

func (c *RayCaster) Pose() phys.Pose { return c.pose }

func (c *RayCaster) MaxDistance() float64 { return c.maxDistance }

// Cast casts one ray along the local direction.
func (c *RayCaster) Cast(direction r3.Vec) Sample {
	miss := Sample{
		Direction:  direction,
		Distance:   c.maxDistance,
		LocalPoint: r3.Scale(c.maxDistance, direction),
		Target:     NoTarget,
	}

	length := r3.Norm(direction) * c.maxDistance
	if length == 0 {
		return miss
	}

	world := c.pose.TransformDirection(direction)
	hit, ok := c.scene.CastRay(c.pose.Position, world, length, c.mask)
	if !ok {
		return miss
	}

	return Sample{
		Direction:  direction,
		Hit:        true,
		Distance:   hit.Distance,
		LocalPoint: c.pose.InverseTransformPoint(hit.Point),
		Target:     TargetOf(hit.Collider),
	}
}
