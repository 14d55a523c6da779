package vision

import "gonum.org/v1/gonum/spatial/r3"

// Event types published by a Sensor.
const (
	EventTargetAcquired = "vision.target.acquired"
	EventTargetLost     = "vision.target.lost"
	EventTargetChanged  = "vision.target.changed"
	EventMeshRebuilt    = "vision.mesh.rebuilt"
)

// TargetEvent is the payload of the target events.
type TargetEvent struct {
	Sensor   string
	Time     float64
	Previous NearestTarget
	Current  NearestTarget
}

// MeshEvent is the payload of EventMeshRebuilt.
type MeshEvent struct {
	Sensor string
	Frame  uint64
	Stats  MeshStats
}

// Frame is a self-contained copy of one post-transform pass, handed to
// observers such as debug viewers.
type Frame struct {
	Sensor  string
	Number  uint64
	Time    float64
	Origin  r3.Vec
	Points  BoundaryPoints
	Indices []int
	Nearest NearestTarget
}

// FrameObserver receives frames after the mesh has been rebuilt. Frames are
// copies; observers may keep them and must not block.
type FrameObserver interface {
	OnFrame(Frame)
}
