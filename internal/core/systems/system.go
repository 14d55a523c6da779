package systems

import "time"

// System is a per-frame processor driven by a Manager.
//
// Update runs in PhaseUpdate, before the host commits transforms.
// LateUpdate runs in PhaseLateUpdate, after the commit.
type System interface {
	Name() string
	Update(ctx FrameContext) error
	LateUpdate(ctx FrameContext) error
}

// Prioritized lets a system order itself within a phase. Systems that do not
// implement it run at PriorityNormal.
type Prioritized interface {
	Priority() Priority
}

// FrameContext carries the frame clock. Times are simulated seconds.
type FrameContext struct {
	Frame uint64
	Now   float64
	Delta float64
}

// Priority defines execution order within a phase; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 100
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when within a frame a system runs.
type ExecutionPhase uint8

const (
	PhaseUpdate ExecutionPhase = iota
	PhaseCommit
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseCommit:
		return "commit"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system.
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
}

func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}
