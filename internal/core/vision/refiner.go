package vision

import "gonum.org/v1/gonum/spatial/r3"

// MaxRefineIterations bounds the bisection depth.
const MaxRefineIterations = 50

// Caster is the single-ray capability the refiner and builder need.
type Caster interface {
	Cast(direction r3.Vec) Sample
}

// SilhouetteRefiner narrows a bracket of two samples with different targets
// towards the direction where the struck target changes.
type SilhouetteRefiner struct {
	caster Caster
}

func NewSilhouetteRefiner(caster Caster) *SilhouetteRefiner {
	return &SilhouetteRefiner{caster: caster}
}

// Refine halves the bracket iterations times. The midpoint direction is the
// plain average of the two directions and is not renormalized.
//
// Each step keeps the new sample on the side whose target it matches, so the
// result always lies inside the starting bracket. If the bracket held no real
// edge the result is still a valid, if uninformative, pair.
func (r *SilhouetteRefiner) Refine(a, b Sample, iterations int) (Sample, Sample) {
	iterations = clampIterations(iterations)
	for i := 0; i < iterations; i++ {
		mid := r3.Scale(0.5, r3.Add(a.Direction, b.Direction))
		s := r.caster.Cast(mid)
		if s.Target == a.Target {
			a = s
		} else {
			b = s
		}
	}
	return a, b
}

func clampIterations(n int) int {
	switch {
	case n < 0:
		return 0
	case n > MaxRefineIterations:
		return MaxRefineIterations
	default:
		return n
	}
}
