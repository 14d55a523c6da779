package vision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

const (
	MinAdaptiveSamples = 4
	// MaxSampleCount bounds the per-frame cast budget.
	MaxSampleCount = 2000

	adaptiveScale = 0.005
)

// DirectionFromAngle maps an angle in degrees, measured from the forward axis
// towards the right axis, to a unit direction in local space.
func DirectionFromAngle(degrees float64) r3.Vec {
	rad := degrees * math.Pi / 180
	return r3.Add(r3.Scale(math.Cos(rad), phys.Forward), r3.Scale(math.Sin(rad), phys.Right))
}

// DirectionFromHalvedAngle is DirectionFromAngle(degrees / 2).
func DirectionFromHalvedAngle(degrees float64) r3.Vec {
	return DirectionFromAngle(degrees * 0.5)
}

// AdaptiveSampleCount derives the sample count from the arc length of the cone
// and a resolution factor, never returning less than MinAdaptiveSamples.
func AdaptiveSampleCount(radius, angleDegrees, resolution float64) int {
	arc := radius * angleDegrees * math.Pi / 180
	n := math.Ceil(arc * resolution * adaptiveScale)
	if math.IsNaN(n) || n < MinAdaptiveSamples {
		return MinAdaptiveSamples
	}
	if n > MaxSampleCount {
		return MaxSampleCount
	}
	return int(n)
}
