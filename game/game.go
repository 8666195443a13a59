// Package game owns the particle simulation loop: it builds every component
// from the loaded config and drives the simulation in graphical or headless
// mode.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/camera"
	"github.com/pthm-cable/particles/config"
	"github.com/pthm-cable/particles/mesh"
	"github.com/pthm-cable/particles/renderer"
	"github.com/pthm-cable/particles/scene"
	"github.com/pthm-cable/particles/sim"
	"github.com/pthm-cable/particles/spawn"
	"github.com/pthm-cable/particles/telemetry"
)

// Options configures a new Game.
type Options struct {
	Config    *config.Config // nil uses config.Cfg()
	Seed      int64
	LogStats  bool
	OutputDir string
	Headless  bool
	FixedDT   float32 // headless frame delta-time, 0 uses physics.fixed_dt
	Logger    *slog.Logger
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	rng    *rand.Rand
	logger *slog.Logger

	driver  *sim.Driver
	mesh    *mesh.Mesh
	backend *backend

	// Graphics only
	camera     *camera.Camera
	scene      *scene.Scene
	background *renderer.BackgroundRenderer

	// Telemetry
	perf        *telemetry.PerfCollector
	sampler     *telemetry.Sampler
	output      *telemetry.OutputManager
	hostPos     []mgl32.Vec3
	hostVel     []mgl32.Vec3
	windowStart int
	lastWindow  telemetry.WindowStats

	// State
	headless     bool
	logStats     bool
	paused       bool
	showOverlays bool
	showHUD      bool
	fixedDT      float32
	simTime      float64

	// Window dimensions
	width, height float32
}

// NewGameWithOptions builds the simulation. In graphical mode the raylib
// window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fixedDT := opts.FixedDT
	if fixedDT <= 0 {
		fixedDT = cfg.Physics.FixedDT
	}

	g := &Game{
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		logger:       logger,
		headless:     opts.Headless,
		logStats:     opts.LogStats,
		showOverlays: cfg.Render.ShowOverlays,
		showHUD:      cfg.Render.ShowHUD,
		fixedDT:      fixedDT,
		width:        float32(cfg.Screen.Width),
		height:       float32(cfg.Screen.Height),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		sampler:      telemetry.NewSampler(cfg.Physics.BoundsSize, cfg.Particle.Radius),
	}

	data, err := spawn.Generate(cfg.Spawn, cfg.Derived.GridSpacing, g.rng)
	if err != nil {
		return nil, fmt.Errorf("generating particles: %w", err)
	}
	g.mesh = mesh.Circle(cfg.Particle.Segments, cfg.Particle.Radius)

	params, err := sim.ParamsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if opts.Headless {
		g.backend = newCPUBackend()
	} else {
		if g.backend, err = newGPUBackend(); err != nil {
			return nil, err
		}
	}

	g.driver = sim.NewDriver(g.backend.device, g.backend.renderer, params, logger)
	if err := g.driver.Init(data, g.mesh); err != nil {
		g.backend.unload()
		return nil, fmt.Errorf("initializing simulation: %w", err)
	}

	if !opts.Headless {
		g.camera = camera.New(g.width, g.height, cfg.Physics.BoundsSize.X(), cfg.Physics.BoundsSize.Y(), cfg.Render.ViewMargin)
		g.scene = scene.New(cfg)
		g.background = renderer.NewBackgroundRenderer(cfg.Physics.BoundsSize.X(), cfg.Physics.BoundsSize.Y(), 10, 14, 22)
		g.background.Init()
	}

	g.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Unload()
		return nil, err
	}
	if err := g.output.WriteConfig(cfg); err != nil {
		g.logger.Error("failed to write config snapshot", "error", err)
	}

	g.logger.Info("game created",
		"backend", g.backend.name,
		"headless", opts.Headless,
		"seed", opts.Seed,
		"policy", cfg.Spawn.Policy,
		"run_id", g.output.RunID(),
	)
	return g, nil
}

// Unload shuts the simulation down and frees every resource.
func (g *Game) Unload() {
	if g.driver != nil {
		g.driver.Shutdown()
	}
	if g.backend != nil {
		g.backend.unload()
	}
	if g.background != nil {
		g.background.Unload()
	}
	if err := g.output.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}

// Frame returns the number of completed simulation frames.
func (g *Game) Frame() int {
	return int(g.driver.Frames())
}

// SimTime returns the simulated time in seconds.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// Driver exposes the simulation driver.
func (g *Game) Driver() *sim.Driver {
	return g.driver
}

// Paused reports whether the graphical loop is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// LastWindow returns the most recently flushed stats window.
func (g *Game) LastWindow() telemetry.WindowStats {
	return g.lastWindow
}
