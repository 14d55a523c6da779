package vision

import (
	"fmt"
	"math"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// Config describes one field-of-vision sensor.
type Config struct {
	FOVDegrees       float64
	Radius           float64
	SampleCount      int
	Resolution       float64 // > 0 derives the sample count from arc length
	RefineIterations int
	ScanInterval     float64 // seconds of simulated time
	OverlapCapacity  int
	ObstructionMask  phys.Layer
	DetectionMask    phys.Layer
}

func DefaultConfig() Config {
	return Config{
		FOVDegrees:       30,
		Radius:           5,
		SampleCount:      5,
		RefineIterations: 0,
		ScanInterval:     0.1,
		OverlapCapacity:  DefaultOverlapCapacity,
		ObstructionMask:  phys.LayerAll,
		DetectionMask:    phys.LayerAll,
	}
}

// Normalize clamps values that have a natural range instead of rejecting them.
func (c Config) Normalize() Config {
	if c.SampleCount > MaxSampleCount {
		c.SampleCount = MaxSampleCount
	}
	c.RefineIterations = clampIterations(c.RefineIterations)
	if c.OverlapCapacity <= 0 {
		c.OverlapCapacity = DefaultOverlapCapacity
	}
	return c
}

// Validate rejects configurations the builder cannot run with.
func (c Config) Validate() error {
	if math.IsNaN(c.FOVDegrees) || c.FOVDegrees < 0 || c.FOVDegrees > 360 {
		return fmt.Errorf("fov %v: %w", c.FOVDegrees, ErrInvalidAngle)
	}
	if math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) || c.Radius < 0 {
		return fmt.Errorf("radius %v: %w", c.Radius, ErrInvalidRadius)
	}
	if c.Resolution <= 0 && c.SampleCount < 2 {
		return fmt.Errorf("sample count %d: %w", c.SampleCount, ErrInvalidSampleCount)
	}
	if c.RefineIterations < 0 || c.RefineIterations > MaxRefineIterations {
		return fmt.Errorf("iterations %d: %w", c.RefineIterations, ErrInvalidIterations)
	}
	if math.IsNaN(c.ScanInterval) || c.ScanInterval < 0 {
		return fmt.Errorf("scan interval %v: %w", c.ScanInterval, ErrInvalidScanInterval)
	}
	if c.OverlapCapacity <= 0 {
		return fmt.Errorf("capacity %d: %w", c.OverlapCapacity, ErrInvalidCapacity)
	}
	return nil
}

// Samples returns the number of rays cast per frame.
func (c Config) Samples() int {
	if c.Resolution > 0 {
		return AdaptiveSampleCount(c.Radius, c.FOVDegrees, c.Resolution)
	}
	return c.SampleCount
}
