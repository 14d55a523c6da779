package vision

import (
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// Target identifies what a ray struck. The zero Target means "no target":
// the ray reached the environment bound. Validity is carried next to the
// identity so no collider identity can be mistaken for the sentinel.
type Target struct {
	ID    phys.ColliderID
	Valid bool
}

// NoTarget is the sentinel for a miss.
var NoTarget = Target{}

func TargetOf(id phys.ColliderID) Target { return Target{ID: id, Valid: true} }

func (t Target) String() string {
	if !t.Valid {
		return "none"
	}
	return strconv.FormatUint(uint64(t.ID), 16)
}

// Sample is the result of one cast, expressed in the sensor's local space.
type Sample struct {
	Direction  r3.Vec
	Hit        bool
	Distance   float64
	LocalPoint r3.Vec
	Target     Target
}

// BoundaryPoints is the ordered fan outline. Element 0 is always the origin.
type BoundaryPoints []r3.Vec

// NearestTarget is the result of a proximity scan. Target.Valid is false
// when nothing was detected.
type NearestTarget struct {
	Target   Target
	Distance float64
}

func (n NearestTarget) Found() bool { return n.Target.Valid }
