package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/fieldofview/internal/config"
	"github.com/zeusync/fieldofview/internal/core/events/bus"
	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/perception"
	"github.com/zeusync/fieldofview/internal/core/systems"
	"github.com/zeusync/fieldofview/internal/core/vision"
	"github.com/zeusync/fieldofview/internal/recorder"
	"github.com/zeusync/fieldofview/internal/sim"
	"github.com/zeusync/fieldofview/internal/viewer"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideScene,
	ProvideViewer,
	ProvideRecorder,
	perception.NewBlackboard,
	ProvideTracker,
	ProvideSensor,
	ProvideManager,
	sim.NewRuntime,
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

func ProvideScene(cfg *config.Config) (*config.Scene, error) {
	return cfg.Build()
}

func ProvideViewer(logger log.Log) *viewer.Hub {
	return viewer.NewHub(logger)
}

// ProvideRecorder returns nil when recording is disabled.
func ProvideRecorder(cfg *config.Config, logger log.Log) (*recorder.Recorder, error) {
	if cfg.Record.Path == "" {
		return nil, nil
	}
	return recorder.Create(cfg.Record.Path, logger)
}

func ProvideTracker(b bus.EventBus, bb *perception.Blackboard, logger log.Log) (*perception.Tracker, error) {
	return perception.NewTracker(b, bb, logger)
}

func ProvideSensor(
	cfg *config.Config,
	scene *config.Scene,
	b bus.EventBus,
	logger log.Log,
	hub *viewer.Hub,
	rec *recorder.Recorder,
) (*vision.Sensor, error) {
	opts := []vision.Option{
		vision.WithPose(scene.Pose),
		vision.WithBus(b),
		vision.WithLogger(logger),
	}
	if cfg.Sensor.Name != "" {
		opts = append(opts, vision.WithName(cfg.Sensor.Name))
	}
	if cfg.Viewer.Enabled {
		opts = append(opts, vision.WithObserver(hub))
	}
	if rec != nil {
		opts = append(opts, vision.WithObserver(rec))
	}
	return vision.NewSensor(scene.World, scene.Vision, opts...)
}

func ProvideManager(logger log.Log, sensor *vision.Sensor) (*systems.Manager, error) {
	m := systems.NewManager(logger)
	if err := m.Register(sensor); err != nil {
		return nil, err
	}
	return m, nil
}
