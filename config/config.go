// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Segment limits for the particle circle mesh.
const (
	MinSegments = 4
	MaxSegments = 64
)

// Spawn policies.
const (
	PolicyDisk = "disk"
	PolicyGrid = "grid"
)

// Force model names.
const (
	ForceNone         = "none"
	ForceInfluence    = "influence"
	ForceStiffness    = "stiffness"
	ForceLennardJones = "lennard-jones"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Particle  ParticleConfig  `yaml:"particle"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Forces    ForcesConfig    `yaml:"forces"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// SpawnConfig selects how initial particle state is generated.
type SpawnConfig struct {
	Policy  string     `yaml:"policy"`  // disk or grid
	Count   int        `yaml:"count"`   // number of particles
	Radius  float32    `yaml:"radius"`  // disk radius in world units
	Centre  mgl32.Vec2 `yaml:"centre"`  // disk centre / grid origin
	Spacing float32    `yaml:"spacing"` // grid spacing (0 = 2.5 * particle radius)
}

// ParticleConfig holds per-particle geometry.
type ParticleConfig struct {
	Radius   float32 `yaml:"radius"`
	Segments int     `yaml:"segments"` // circle mesh segments, 4..64
}

// PhysicsConfig holds the scalar kernel parameters.
type PhysicsConfig struct {
	CollisionDamping float32    `yaml:"collision_damping"`
	Gravity          float32    `yaml:"gravity"`
	BoundsSize       mgl32.Vec2 `yaml:"bounds_size"`
	ObstacleSize     mgl32.Vec2 `yaml:"obstacle_size"`
	ObstacleCentre   mgl32.Vec2 `yaml:"obstacle_centre"`
	Substeps         int        `yaml:"substeps"`
	FixedDT          float32    `yaml:"fixed_dt"` // headless frame delta-time
}

// ForcesConfig selects the pairwise force model and its parameters.
type ForcesConfig struct {
	Model           string  `yaml:"model"`
	Cutoff          float32 `yaml:"cutoff"`
	InfluenceRadius float32 `yaml:"influence_radius"`
	Multiplier      float32 `yaml:"multiplier"`
	Stiffness       float32 `yaml:"stiffness"`
	Sigma           float32 `yaml:"sigma"`
	Epsilon         float32 `yaml:"epsilon"`
}

// RenderConfig holds rendering parameters.
type RenderConfig struct {
	MaxSpeed     float32 `yaml:"max_speed"`     // speed mapped to the hottest colour
	ViewMargin   float32 `yaml:"view_margin"`   // world units around the bounds
	ShowOverlays bool    `yaml:"show_overlays"` // bounds and obstacle outlines
	ShowHUD      bool    `yaml:"show_hud"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // frames per stats window
	PerfWindow  int `yaml:"perf_window"`  // frames averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridSpacing float32    // Spawn.Spacing or 2.5 * Particle.Radius
	HalfBounds  mgl32.Vec2 // Physics.BoundsSize / 2
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first out-of-range value.
func (c *Config) Validate() error {
	switch {
	case c.Spawn.Count < 0:
		return fmt.Errorf("%w: spawn.count %d is negative", ErrInvalid, c.Spawn.Count)
	case c.Spawn.Policy != PolicyDisk && c.Spawn.Policy != PolicyGrid:
		return fmt.Errorf("%w: spawn.policy %q", ErrInvalid, c.Spawn.Policy)
	case c.Particle.Segments < MinSegments || c.Particle.Segments > MaxSegments:
		return fmt.Errorf("%w: particle.segments %d outside [%d, %d]",
			ErrInvalid, c.Particle.Segments, MinSegments, MaxSegments)
	case c.Particle.Radius <= 0:
		return fmt.Errorf("%w: particle.radius must be positive", ErrInvalid)
	case c.Physics.Substeps < 1:
		return fmt.Errorf("%w: physics.substeps %d < 1", ErrInvalid, c.Physics.Substeps)
	case c.Physics.BoundsSize.X() <= 0 || c.Physics.BoundsSize.Y() <= 0:
		return fmt.Errorf("%w: physics.bounds_size must be positive", ErrInvalid)
	case c.Physics.FixedDT <= 0:
		return fmt.Errorf("%w: physics.fixed_dt must be positive", ErrInvalid)
	case c.Forces.Cutoff < 0:
		return fmt.Errorf("%w: forces.cutoff %g is negative", ErrInvalid, c.Forces.Cutoff)
	}

	switch c.Forces.Model {
	case ForceNone, ForceInfluence, ForceStiffness, ForceLennardJones:
	default:
		return fmt.Errorf("%w: forces.model %q", ErrInvalid, c.Forces.Model)
	}
	if c.Forces.Model == ForceLennardJones && c.Forces.Sigma <= 0 {
		return fmt.Errorf("%w: forces.sigma must be positive for lennard-jones", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GridSpacing = c.Spawn.Spacing
	if c.Derived.GridSpacing == 0 {
		c.Derived.GridSpacing = 2.5 * c.Particle.Radius
	}
	c.Derived.HalfBounds = c.Physics.BoundsSize.Mul(0.5)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
