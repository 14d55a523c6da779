package physics

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Local axes of a pose. The vision cone lies in the Forward/Right plane.
var (
	Forward = r3.Vec{Z: 1}
	Right   = r3.Vec{X: 1}
	Up      = r3.Vec{Y: 1}
)

// Identity returns the rotation that leaves vectors unchanged.
func Identity() r3.Rotation { return r3.NewRotation(0, Up) }

// Yaw returns a rotation of degrees around the local up axis.
// Positive yaw turns Forward towards Right.
func Yaw(degrees float64) r3.Rotation {
	return r3.NewRotation(degrees*math.Pi/180, Up)
}

// Pose is a rigid transform: rotation followed by translation.
// The zero Pose is not valid; use NewPose.
type Pose struct {
	Position r3.Vec
	Rotation r3.Rotation
}

func NewPose(position r3.Vec, rotation r3.Rotation) Pose {
	return Pose{Position: position, Rotation: rotation}
}

// TransformDirection rotates a local direction into world space. Length is kept.
func (p Pose) TransformDirection(dir r3.Vec) r3.Vec {
	return p.Rotation.Rotate(dir)
}

// TransformPoint maps a local point into world space.
func (p Pose) TransformPoint(pt r3.Vec) r3.Vec {
	return r3.Add(p.Position, p.Rotation.Rotate(pt))
}

// InverseTransformPoint maps a world point into local space.
func (p Pose) InverseTransformPoint(pt r3.Vec) r3.Vec {
	return p.inverse().Rotate(r3.Sub(pt, p.Position))
}

// InverseTransformDirection maps a world direction into local space.
func (p Pose) InverseTransformDirection(dir r3.Vec) r3.Vec {
	return p.inverse().Rotate(dir)
}

func (p Pose) inverse() r3.Rotation {
	return r3.Rotation(quat.Conj(quat.Number(p.Rotation)))
}

// Distance computes the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 { return r3.Norm(r3.Sub(b, a)) }

// IsZero reports whether v is exactly the zero vector.
func IsZero(v r3.Vec) bool { return v == r3.Vec{} }
