package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/fieldofview/internal/config"
	"github.com/zeusync/fieldofview/internal/core/events/bus"
	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/perception"
	"github.com/zeusync/fieldofview/internal/core/systems"
	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
	"github.com/zeusync/fieldofview/internal/core/vision"
	"github.com/zeusync/fieldofview/internal/recorder"
	"github.com/zeusync/fieldofview/internal/viewer"
)

const shutdownTimeout = 3 * time.Second

// Runtime owns one simulated scene with a single sensor and drives it at a
// fixed tick rate.
type Runtime struct {
	Config   *config.Config
	Logger   log.Log
	Bus      bus.EventBus
	Scene    *config.Scene
	Sensor   *vision.Sensor
	Manager  *systems.Manager
	Viewer   *viewer.Hub        // nil when disabled
	Recorder *recorder.Recorder // nil when disabled
	Tracker  *perception.Tracker

	yaw float64
}

func NewRuntime(
	cfg *config.Config,
	logger log.Log,
	b bus.EventBus,
	scene *config.Scene,
	sensor *vision.Sensor,
	manager *systems.Manager,
	hub *viewer.Hub,
	rec *recorder.Recorder,
	tracker *perception.Tracker,
) *Runtime {
	if !cfg.Viewer.Enabled {
		hub = nil
	}
	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Bus:      b,
		Scene:    scene,
		Sensor:   sensor,
		Manager:  manager,
		Viewer:   hub,
		Recorder: rec,
		Tracker:  tracker,
		yaw:      cfg.Sensor.YawDegrees,
	}
}

// Step advances one frame at simulated time now. The commit hook turns the
// sensor by the configured sweep rate.
func (r *Runtime) Step(now, delta float64) error {
	return r.Manager.Tick(now, func(systems.FrameContext) error {
		if r.Config.SweepDegrees == 0 {
			return nil
		}
		r.yaw += r.Config.SweepDegrees * delta
		pose := r.Sensor.Pose()
		r.Sensor.SetPose(phys.NewPose(pose.Position, phys.Yaw(r.yaw)))
		return nil
	})
}

// Run ticks until ctx is done, or until frames ticks when frames > 0. The
// viewer, when enabled, runs alongside the tick loop.
func (r *Runtime) Run(ctx context.Context, frames uint64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if r.Viewer != nil {
		if _, err := r.Viewer.Start(r.Config.Viewer.Addr); err != nil {
			return err
		}
		g.Go(func() error { return r.Viewer.Run(ctx) })
		g.Go(func() error {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return r.Viewer.Stop(sctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return r.loop(ctx, frames)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if r.Recorder != nil {
		if cerr := r.Recorder.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close recording: %w", cerr))
		}
	}
	return err
}

func (r *Runtime) loop(ctx context.Context, frames uint64) error {
	dt := 1 / r.Config.TickRate
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	r.Logger.Info("simulation started",
		log.String("sensor", r.Sensor.Name()),
		log.Float64("tick_rate", r.Config.TickRate),
		log.Int("colliders", r.Scene.World.Len()),
	)

	var now float64
	for n := uint64(0); frames == 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		now += dt
		if err := r.Step(now, dt); err != nil {
			// a bad frame is logged and the loop keeps going
			r.Logger.Error("frame failed", log.Uint64("frame", r.Manager.Frame()), log.Error(err))
		}
	}

	fields := []log.Field{
		log.Uint64("frames", r.Manager.Frame()),
		log.Stringer("nearest", r.Sensor.Nearest().Target),
	}
	if r.Tracker != nil {
		st := r.Tracker.Stats()
		fields = append(fields,
			log.Uint64("acquired", st.Acquired),
			log.Uint64("changed", st.Changed),
			log.Uint64("lost", st.Lost),
		)
	}
	r.Logger.Info("simulation finished", fields...)
	return nil
}
