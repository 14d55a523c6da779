package vision

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/fieldofview/internal/core/events/bus"
	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/systems"
	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

var _ systems.System = (*Sensor)(nil)

// Sensor drives one field of vision per frame.
//
// The host calls OnSimulationTick with the simulated time, commits the
// sensor pose with SetPose, then calls OnPostTransformTick. The sensor is not
// safe for concurrent use; observers only ever see copies.
type Sensor struct {
	name   string
	cfg    Config
	scene  phys.Scene
	pose   phys.Pose
	bus    bus.EventBus
	logger log.Log

	caster    *RayCaster
	builder   *PolygonBuilder
	scanner   *ProximityScanner
	mesh      Mesh
	points    BoundaryPoints
	observers []FrameObserver

	now   float64
	frame uint64
}

type Option func(*Sensor)

func WithName(name string) Option { return func(s *Sensor) { s.name = name } }

func WithPose(pose phys.Pose) Option { return func(s *Sensor) { s.pose = pose } }

func WithBus(b bus.EventBus) Option { return func(s *Sensor) { s.bus = b } }

func WithLogger(l log.Log) Option { return func(s *Sensor) { s.logger = l } }

func WithObserver(o FrameObserver) Option {
	return func(s *Sensor) { s.observers = append(s.observers, o) }
}

// NewSensor validates cfg after normalizing it and wires the pipeline.
func NewSensor(scene phys.Scene, cfg Config, opts ...Option) (*Sensor, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sensor config: %w", err)
	}

	s := &Sensor{
		cfg:    cfg,
		scene:  scene,
		pose:   phys.NewPose(r3.Vec{}, phys.Identity()),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.name == "" {
		s.name = "sensor-" + uuid.NewString()[:8]
	}
	s.logger = s.logger.With(log.String("sensor", s.name))

	s.caster = NewRayCaster(scene, s.pose, cfg.Radius, cfg.ObstructionMask)
	s.builder = NewPolygonBuilder(s.caster)
	s.scanner = NewProximityScanner(scene, cfg.ScanInterval, cfg.OverlapCapacity)
	s.points = BoundaryPoints{{}}
	return s, nil
}

func (s *Sensor) Name() string { return s.name }

func (s *Sensor) Config() Config { return s.cfg }

func (s *Sensor) Pose() phys.Pose { return s.pose }

// SetPose commits the transform used by the next post-transform tick and scan.
func (s *Sensor) SetPose(pose phys.Pose) {
	s.pose = pose
	s.caster.SetPose(pose)
}

// AddObserver registers a frame observer.
func (s *Sensor) AddObserver(o FrameObserver) { s.observers = append(s.observers, o) }

// OnSimulationTick runs the rate limited proximity scan.
func (s *Sensor) OnSimulationTick(now float64) {
	s.now = now
	prev := s.scanner.Nearest()
	cur, ran := s.scanner.Scan(s.pose.Position, s.cfg.Radius, s.cfg.DetectionMask, now)
	if !ran {
		return
	}

	s.logger.Debug("proximity scan",
		log.Float64("time", now),
		log.Int("matches", len(s.scanner.Detected())),
		log.Stringer("nearest", cur.Target),
	)

	etype, changed := targetTransition(prev.Target, cur.Target)
	if !changed {
		return
	}
	s.logger.Info("nearest target updated",
		log.String("event", etype),
		log.Stringer("previous", prev.Target),
		log.Stringer("current", cur.Target),
		log.Float64("distance", cur.Distance),
	)
	s.publish(etype, TargetEvent{Sensor: s.name, Time: now, Previous: prev, Current: cur})
}

func targetTransition(prev, cur Target) (string, bool) {
	switch {
	case prev == cur:
		return "", false
	case !prev.Valid:
		return EventTargetAcquired, true
	case !cur.Valid:
		return EventTargetLost, true
	default:
		return EventTargetChanged, true
	}
}

// OnPostTransformTick rebuilds the boundary points and the mesh from the
// committed pose.
func (s *Sensor) OnPostTransformTick() error {
	points, err := s.builder.Build(s.cfg.FOVDegrees, s.cfg.Samples(), s.cfg.RefineIterations)
	if err != nil {
		return fmt.Errorf("sensor %s: %w", s.name, err)
	}
	s.points = points
	s.mesh.Rebuild(points)
	s.frame++

	s.publish(EventMeshRebuilt, MeshEvent{Sensor: s.name, Frame: s.frame, Stats: s.mesh.Stats()})
	if len(s.observers) > 0 {
		f := s.snapshot()
		for _, o := range s.observers {
			o.OnFrame(f)
		}
	}
	return nil
}

func (s *Sensor) snapshot() Frame {
	f := Frame{
		Sensor:  s.name,
		Number:  s.frame,
		Time:    s.now,
		Origin:  s.pose.Position,
		Points:  append(BoundaryPoints(nil), s.points...),
		Indices: append([]int(nil), s.mesh.Indices...),
		Nearest: s.scanner.Nearest(),
	}
	return f
}

func (s *Sensor) publish(etype string, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(etype, s.name, data)); err != nil {
		s.logger.Warn("event handler failed", log.String("event", etype), log.Error(err))
	}
}

// Points returns the outline from the last post-transform tick.
func (s *Sensor) Points() BoundaryPoints { return s.points }

// Mesh returns the sensor's mesh. It is rewritten by every post-transform tick.
func (s *Sensor) Mesh() *Mesh { return &s.mesh }

func (s *Sensor) Nearest() NearestTarget { return s.scanner.Nearest() }

func (s *Sensor) Scanner() *ProximityScanner { return s.scanner }

func (s *Sensor) FrameNumber() uint64 { return s.frame }

// Update implements systems.System.
func (s *Sensor) Update(ctx systems.FrameContext) error {
	s.OnSimulationTick(ctx.Now)
	return nil
}

// LateUpdate implements systems.System.
func (s *Sensor) LateUpdate(systems.FrameContext) error {
	return s.OnPostTransformTick()
}
