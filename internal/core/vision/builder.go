package vision

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// PolygonBuilder samples the field of view and produces the fan outline.
type PolygonBuilder struct {
	caster  Caster
	refiner *SilhouetteRefiner
	points  []r3.Vec
}

func NewPolygonBuilder(caster Caster) *PolygonBuilder {
	return &PolygonBuilder{
		caster:  caster,
		refiner: NewSilhouetteRefiner(caster),
	}
}

// Build casts sampleCount evenly spaced rays across fovDegrees, centered on
// the forward axis, and refines every adjacent pair whose targets differ.
//
// The returned points start with the origin, followed by the sample points
// in angular order with refined edge points inserted before the sample that
// closes each bracket. A refined point that is exactly the zero vector is
// not inserted, which also drops a genuine hit at the sensor origin.
func (b *PolygonBuilder) Build(fovDegrees float64, sampleCount, iterations int) (BoundaryPoints, error) {
	if sampleCount < 2 {
		return nil, fmt.Errorf("build with %d samples: %w", sampleCount, ErrInvalidSampleCount)
	}
	if math.IsNaN(fovDegrees) || fovDegrees < 0 || fovDegrees > 360 {
		return nil, fmt.Errorf("build with %v degrees: %w", fovDegrees, ErrInvalidAngle)
	}

	step := fovDegrees / float64(sampleCount-1)
	half := fovDegrees / 2

	b.points = append(b.points[:0], r3.Vec{})

	prev := Sample{Target: NoTarget}
	for i := 0; i < sampleCount; i++ {
		cur := b.caster.Cast(DirectionFromAngle(step*float64(i) - half))

		if i > 0 && prev.Target != cur.Target {
			ra, rb := b.refiner.Refine(prev, cur, iterations)
			b.appendEdge(ra.LocalPoint)
			b.appendEdge(rb.LocalPoint)
		}

		b.points = append(b.points, cur.LocalPoint)
		prev = cur
	}

	out := make(BoundaryPoints, len(b.points))
	copy(out, b.points)
	return out, nil
}

func (b *PolygonBuilder) appendEdge(p r3.Vec) {
	if phys.IsZero(p) {
		return
	}
	b.points = append(b.points, p)
}
