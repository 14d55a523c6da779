package sim

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/fieldofview/internal/config"
	"github.com/zeusync/fieldofview/internal/core/events/bus"
	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/systems"
	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
	"github.com/zeusync/fieldofview/internal/core/vision"
	"github.com/zeusync/fieldofview/internal/recorder"
	"github.com/zeusync/fieldofview/internal/viewer"
)

func newRuntime(t *testing.T, cfg config.Config) *Runtime {
	t.Helper()
	require.NoError(t, cfg.Validate())
	scene, err := cfg.Build()
	require.NoError(t, err)

	logger := log.NewNop()
	hub := viewer.NewHub(logger)
	opts := []vision.Option{vision.WithPose(scene.Pose), vision.WithLogger(logger)}
	if cfg.Viewer.Enabled {
		opts = append(opts, vision.WithObserver(hub))
	}
	var rec *recorder.Recorder
	if cfg.Record.Path != "" {
		rec, err = recorder.Create(cfg.Record.Path, logger)
		require.NoError(t, err)
		opts = append(opts, vision.WithObserver(rec))
	}
	sensor, err := vision.NewSensor(scene.World, scene.Vision, opts...)
	require.NoError(t, err)
	m := systems.NewManager(logger)
	require.NoError(t, m.Register(sensor))
	return NewRuntime(&cfg, logger, bus.New(), scene, sensor, m, hub, rec, nil)
}

func TestStepSweepsYaw(t *testing.T) {
	cfg := config.Default()
	cfg.SweepDegrees = 90
	rt := newRuntime(t, cfg)

	require.NoError(t, rt.Step(1, 1))
	fwd := rt.Sensor.Pose().TransformDirection(phys.Forward)
	assert.InDelta(t, 1, fwd.X, 1e-12)
	assert.InDelta(t, 0, fwd.Z, 1e-12)
	assert.Equal(t, uint64(1), rt.Sensor.FrameNumber())
}

func TestStepWithoutSweepKeepsPose(t *testing.T) {
	cfg := config.Default()
	cfg.Sensor.Position = []float64{1, 0, 1}
	rt := newRuntime(t, cfg)

	before := rt.Sensor.Pose()
	require.NoError(t, rt.Step(0.5, 0.5))
	assert.Equal(t, before, rt.Sensor.Pose())
	assert.Equal(t, r3.Vec{X: 1, Z: 1}, rt.Sensor.Pose().Position)
}

func TestRunStopsAfterFrames(t *testing.T) {
	cfg := config.Default()
	cfg.TickRate = 1000
	rt := newRuntime(t, cfg)
	assert.Nil(t, rt.Viewer)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Run(ctx, 3))
	assert.Equal(t, uint64(3), rt.Manager.Frame())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.TickRate = 1000
	cfg.Viewer.Enabled = true
	cfg.Viewer.Addr = "127.0.0.1:0"
	rt := newRuntime(t, cfg)
	require.NotNil(t, rt.Viewer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx, 0) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not stop")
	}
	assert.NotZero(t, rt.Sensor.FrameNumber())
}

func TestRunWritesRecording(t *testing.T) {
	cfg := config.Default()
	cfg.TickRate = 1000
	cfg.Record.Path = filepath.Join(t.TempDir(), "run.jsonl.zst")
	rt := newRuntime(t, cfg)

	require.NoError(t, rt.Run(context.Background(), 4))

	f, err := os.Open(cfg.Record.Path)
	require.NoError(t, err)
	defer f.Close()
	msgs, err := recorder.ReadAll(f)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, uint64(4), msgs[3].Frame)
}
