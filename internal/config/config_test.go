package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/fieldofview/internal/core/observability/log"
	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
	"github.com/zeusync/fieldofview/internal/core/vision"
)

const sceneYAML = `
sensor:
  name: watchtower
  fov_degrees: 90
  radius: 10
  sample_count: 9
  refine_iterations: 3
  scan_interval: 0.2
  obstruction_layers: [walls]
  detection_layers: [enemies, neutrals]
  position: [1, 0, -2]
  yaw_degrees: 90
scene:
  layers: [neutrals]
  colliders:
    - {name: wall-a, shape: box, layer: walls, center: [0, 0, 5], size: [4, 2, 1]}
    - {name: grunt, shape: sphere, layer: enemies, center: [2, 0, 3], radius: 0.5}
viewer: {enabled: true, addr: "127.0.0.1:0"}
log: {level: debug}
tick_rate: 30
sweep_degrees: 15
`

func TestLoadYAML(t *testing.T) {
	c, err := Load(strings.NewReader(sceneYAML))
	require.NoError(t, err)

	assert.Equal(t, 30.0, c.TickRate)
	assert.Equal(t, 15.0, c.SweepDegrees)
	assert.Equal(t, log.LevelDebug, c.LogLevel())
	assert.True(t, c.Viewer.Enabled)

	s, err := c.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, s.World.Len())

	neutrals, err := s.Layers.Lookup("neutrals")
	require.NoError(t, err)
	walls, _ := s.Layers.Lookup("walls")
	enemies, _ := s.Layers.Lookup("enemies")
	assert.Equal(t, phys.Layer(1), neutrals, "explicit layers come first")
	assert.Equal(t, phys.Layer(2), walls)
	assert.Equal(t, phys.Layer(4), enemies)

	assert.Equal(t, vision.Config{
		FOVDegrees:       90,
		Radius:           10,
		SampleCount:      9,
		RefineIterations: 3,
		ScanInterval:     0.2,
		OverlapCapacity:  vision.DefaultOverlapCapacity,
		ObstructionMask:  walls,
		DetectionMask:    enemies | neutrals,
	}, s.Vision)

	assert.Equal(t, r3.Vec{X: 1, Z: -2}, s.Pose.Position)
	right := s.Pose.TransformDirection(phys.Forward)
	assert.InDelta(t, 1, right.X, 1e-12)

	grunt, ok := s.World.Get(phys.IDFromName("grunt"))
	require.True(t, ok)
	assert.Equal(t, enemies, grunt.Layer())
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)

	s, err := c.Build()
	require.NoError(t, err)
	assert.Zero(t, s.World.Len())
	assert.Equal(t, phys.LayerAll, s.Vision.ObstructionMask)
	assert.Equal(t, phys.LayerAll, s.Vision.DetectionMask)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown shape": {
			doc:  "scene: {colliders: [{name: a, shape: cone, center: [0,0,0]}]}",
			want: ErrUnknownShape,
		},
		"unknown layer": {
			doc:  "sensor: {detection_layers: [ghosts]}",
			want: phys.ErrUnknownLayer,
		},
		"short vector": {
			doc:  "sensor: {position: [1, 2]}",
			want: ErrInvalidVector,
		},
		"flat box": {
			doc:  "scene: {colliders: [{name: a, shape: box, center: [0,0,0], size: [1,0,1]}]}",
			want: ErrInvalidSize,
		},
		"anonymous collider": {
			doc:  "scene: {colliders: [{shape: sphere, radius: 1}]}",
			want: ErrMissingName,
		},
		"duplicate collider": {
			doc:  "scene: {colliders: [{name: a, shape: sphere, radius: 1}, {name: a, shape: sphere, radius: 2}]}",
			want: phys.ErrDuplicateCollider,
		},
		"one sample": {
			doc:  "sensor: {sample_count: 1}",
			want: vision.ErrInvalidSampleCount,
		},
		"wide fov": {
			doc:  "sensor: {fov_degrees: 400}",
			want: vision.ErrInvalidAngle,
		},
		"zero tick rate": {
			doc:  "tick_rate: 0",
			want: ErrInvalidTick,
		},
		"viewer without address": {
			doc:  "viewer: {enabled: true, addr: \"\"}",
			want: ErrMissingAddress,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(c.doc))
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("sensor: {fov: 30}"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("log: {level: loud}"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sceneYAML), 0o600))
	c, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "watchtower", c.Sensor.Name)

	jsonPath := filepath.Join(dir, "scene.json")
	doc := `{"sensor": {"fov_degrees": 45, "sample_count": 3}, "tick_rate": 20}`
	require.NoError(t, os.WriteFile(jsonPath, []byte(doc), 0o600))
	c, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 45.0, c.Sensor.FOVDegrees)
	assert.Equal(t, 3, c.Sensor.SampleCount)
	assert.Equal(t, Default().Sensor.Radius, c.Sensor.Radius)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBundledScene(t *testing.T) {
	c, err := LoadFile(filepath.Join("..", "..", "configs", "corridor.yaml"))
	require.NoError(t, err)

	s, err := c.Build()
	require.NoError(t, err)
	assert.Equal(t, 5, s.World.Len())
	assert.Equal(t, 24, s.Vision.Samples())
}
