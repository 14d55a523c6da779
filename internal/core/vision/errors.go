package vision

import "errors"

var (
	ErrInvalidSampleCount  = errors.New("sample count must be at least 2")
	ErrInvalidAngle        = errors.New("field of view angle must be within [0, 360]")
	ErrInvalidRadius       = errors.New("radius must be a finite value >= 0")
	ErrInvalidIterations   = errors.New("refine iterations must be within [0, 50]")
	ErrInvalidScanInterval = errors.New("scan interval must be >= 0")
	ErrInvalidCapacity     = errors.New("overlap capacity must be positive")
	ErrNilScene            = errors.New("scene is nil")
)
