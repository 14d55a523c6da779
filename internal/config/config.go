package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/fieldofview/internal/core/observability/log"
	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
	"github.com/zeusync/fieldofview/internal/core/vision"
)

var (
	ErrUnknownShape   = errors.New("unknown collider shape")
	ErrInvalidVector  = errors.New("vector must have exactly 3 components")
	ErrInvalidTick    = errors.New("tick rate must be positive")
	ErrInvalidSize    = errors.New("collider size must be positive")
	ErrMissingName    = errors.New("collider name is required")
	ErrMissingAddress = errors.New("viewer address is required")
)

const (
	ShapeBox    = "box"
	ShapeSphere = "sphere"
)

// Config describes a complete simulation: one sensor, its scene and the
// optional debug viewer. It can be written as YAML or JSON.
type Config struct {
	Sensor   SensorConfig `json:"sensor" yaml:"sensor"`
	Scene    SceneConfig  `json:"scene" yaml:"scene"`
	Viewer   ViewerConfig `json:"viewer" yaml:"viewer"`
	Record   RecordConfig `json:"record" yaml:"record"`
	Log      LogConfig    `json:"log" yaml:"log"`
	TickRate float64      `json:"tick_rate" yaml:"tick_rate"`
	// SweepDegrees turns the sensor by this many degrees per simulated second.
	SweepDegrees float64 `json:"sweep_degrees" yaml:"sweep_degrees"`
}

type SensorConfig struct {
	Name              string    `json:"name,omitempty" yaml:"name,omitempty"`
	FOVDegrees        float64   `json:"fov_degrees" yaml:"fov_degrees"`
	Radius            float64   `json:"radius" yaml:"radius"`
	SampleCount       int       `json:"sample_count" yaml:"sample_count"`
	Resolution        float64   `json:"resolution" yaml:"resolution"`
	RefineIterations  int       `json:"refine_iterations" yaml:"refine_iterations"`
	ScanInterval      float64   `json:"scan_interval" yaml:"scan_interval"`
	OverlapCapacity   int       `json:"overlap_capacity" yaml:"overlap_capacity"`
	ObstructionLayers []string  `json:"obstruction_layers,omitempty" yaml:"obstruction_layers,omitempty"`
	DetectionLayers   []string  `json:"detection_layers,omitempty" yaml:"detection_layers,omitempty"`
	Position          []float64 `json:"position,omitempty" yaml:"position,omitempty"`
	YawDegrees        float64   `json:"yaw_degrees" yaml:"yaw_degrees"`
}

type SceneConfig struct {
	// Layers fixes bit order. Layers first named by a collider are appended.
	Layers    []string         `json:"layers,omitempty" yaml:"layers,omitempty"`
	Colliders []ColliderConfig `json:"colliders" yaml:"colliders"`
}

type ColliderConfig struct {
	Name   string    `json:"name" yaml:"name"`
	Shape  string    `json:"shape" yaml:"shape"`
	Layer  string    `json:"layer" yaml:"layer"`
	Center []float64 `json:"center" yaml:"center"`
	Size   []float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Radius float64   `json:"radius,omitempty" yaml:"radius,omitempty"`
}

type ViewerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

// RecordConfig enables the zstd frame recording when Path is set.
type RecordConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns a config with a single sensor and an empty scene.
func Default() Config {
	v := vision.DefaultConfig()
	return Config{
		Sensor: SensorConfig{
			FOVDegrees:       v.FOVDegrees,
			Radius:           v.Radius,
			SampleCount:      v.SampleCount,
			RefineIterations: v.RefineIterations,
			ScanInterval:     v.ScanInterval,
			OverlapCapacity:  v.OverlapCapacity,
		},
		Viewer:   ViewerConfig{Addr: "127.0.0.1:8089"},
		Log:      LogConfig{Level: "info"},
		TickRate: 60,
	}
}

// Load reads YAML from r on top of Default and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadJSON is Load for JSON documents.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile picks the decoder from the file extension; anything but .json is
// treated as YAML.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return Load(f)
}

// Validate checks every section, including that the scene can be built.
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate %v: %w", c.TickRate, ErrInvalidTick)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Viewer.Enabled && c.Viewer.Addr == "" {
		return fmt.Errorf("viewer: %w", ErrMissingAddress)
	}
	_, err := c.Build()
	return err
}

// LogLevel returns the parsed log level, info when unset.
func (c *Config) LogLevel() log.Level {
	l, _ := log.ParseLevel(c.Log.Level)
	return l
}

// Scene is the runtime form of a Config.
type Scene struct {
	Layers *phys.LayerRegistry
	World  *phys.World
	Vision vision.Config
	Pose   phys.Pose
}

// Build allocates layers, populates the world and derives the sensor config.
func (c *Config) Build() (*Scene, error) {
	reg, err := c.Scene.layers()
	if err != nil {
		return nil, err
	}
	world, err := c.Scene.world(reg)
	if err != nil {
		return nil, err
	}
	vc, err := c.Sensor.vision(reg)
	if err != nil {
		return nil, err
	}
	pose, err := c.Sensor.pose()
	if err != nil {
		return nil, err
	}
	return &Scene{Layers: reg, World: world, Vision: vc, Pose: pose}, nil
}

func (s SceneConfig) layers() (*phys.LayerRegistry, error) {
	reg := phys.NewLayerRegistry()
	for _, name := range s.Layers {
		if _, err := reg.Define(name); err != nil {
			return nil, fmt.Errorf("scene layers: %w", err)
		}
	}
	for _, cc := range s.Colliders {
		if cc.Layer == "" {
			continue
		}
		if _, err := reg.Define(cc.Layer); err != nil {
			return nil, fmt.Errorf("collider %q: %w", cc.Name, err)
		}
	}
	return reg, nil
}

func (s SceneConfig) world(reg *phys.LayerRegistry) (*phys.World, error) {
	w := phys.NewWorld()
	for i, cc := range s.Colliders {
		c, err := cc.collider(reg)
		if err != nil {
			return nil, fmt.Errorf("collider %d: %w", i, err)
		}
		if err := w.Add(c); err != nil {
			return nil, fmt.Errorf("collider %q: %w", cc.Name, err)
		}
	}
	return w, nil
}

func (cc ColliderConfig) collider(reg *phys.LayerRegistry) (phys.Collider, error) {
	if cc.Name == "" {
		return nil, ErrMissingName
	}
	layer := phys.LayerAll
	if cc.Layer != "" {
		l, err := reg.Lookup(cc.Layer)
		if err != nil {
			return nil, err
		}
		layer = l
	}
	center, err := vec(cc.Center, "center")
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cc.Shape) {
	case ShapeBox:
		size, err := vec(cc.Size, "size")
		if err != nil {
			return nil, err
		}
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, fmt.Errorf("%q size %v: %w", cc.Name, cc.Size, ErrInvalidSize)
		}
		return phys.NewBox(cc.Name, layer, center, size), nil
	case ShapeSphere:
		if cc.Radius <= 0 {
			return nil, fmt.Errorf("%q radius %v: %w", cc.Name, cc.Radius, ErrInvalidSize)
		}
		return phys.NewSphere(cc.Name, layer, center, cc.Radius), nil
	default:
		return nil, fmt.Errorf("%q shape %q: %w", cc.Name, cc.Shape, ErrUnknownShape)
	}
}

func (s SensorConfig) vision(reg *phys.LayerRegistry) (vision.Config, error) {
	obstruction, err := mask(reg, s.ObstructionLayers)
	if err != nil {
		return vision.Config{}, fmt.Errorf("obstruction_layers: %w", err)
	}
	detection, err := mask(reg, s.DetectionLayers)
	if err != nil {
		return vision.Config{}, fmt.Errorf("detection_layers: %w", err)
	}

	vc := vision.Config{
		FOVDegrees:       s.FOVDegrees,
		Radius:           s.Radius,
		SampleCount:      s.SampleCount,
		Resolution:       s.Resolution,
		RefineIterations: s.RefineIterations,
		ScanInterval:     s.ScanInterval,
		OverlapCapacity:  s.OverlapCapacity,
		ObstructionMask:  obstruction,
		DetectionMask:    detection,
	}
	if err := vc.Validate(); err != nil {
		return vision.Config{}, fmt.Errorf("sensor: %w", err)
	}
	return vc, nil
}

func (s SensorConfig) pose() (phys.Pose, error) {
	pos, err := vec(s.Position, "position")
	if err != nil {
		return phys.Pose{}, fmt.Errorf("sensor: %w", err)
	}
	return phys.NewPose(pos, phys.Yaw(s.YawDegrees)), nil
}

// mask returns LayerAll for an empty list.
func mask(reg *phys.LayerRegistry, names []string) (phys.Layer, error) {
	if len(names) == 0 {
		return phys.LayerAll, nil
	}
	return reg.Mask(names...)
}

// vec accepts a missing value as the zero vector.
func vec(v []float64, field string) (r3.Vec, error) {
	switch len(v) {
	case 0:
		return r3.Vec{}, nil
	case 3:
		return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return r3.Vec{}, fmt.Errorf("%s %v: %w", field, v, ErrInvalidVector)
	}
}
