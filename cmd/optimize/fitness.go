package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/particles/config"
	"github.com/pthm-cable/particles/cpu"
	"github.com/pthm-cable/particles/game"
)

// Fitness component weights.
const (
	weightSpeed   = 1.0  // mean speed in world units per second
	weightOverlap = 10.0 // mean penetration depth in particle radii
	weightEscaped = 50.0 // fraction of particles outside the bounds
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu          sync.Mutex
	lastSummary runSummary // averaged over seeds, most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// runSummary holds the settling measurements of one run.
type runSummary struct {
	MeanSpeed   float64
	MeanOverlap float64 // in particle radii
	Escaped     float64 // fraction of particles
}

// LastSummary returns the seed-averaged summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Evaluate computes fitness for a parameter vector (lower = better).
// A run that fails to build or step scores +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runSummary, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	fitness := make([]float64, len(results))
	var speed, overlap, escaped []float64
	for i, r := range results {
		if errs[i] != nil {
			slog.Error("evaluation run failed", "seed", fe.seeds[i], "error", errs[i])
			return math.Inf(1)
		}
		fitness[i] = computeFitness(r)
		speed = append(speed, r.MeanSpeed)
		overlap = append(overlap, r.MeanOverlap)
		escaped = append(escaped, r.Escaped)
	}

	fe.mu.Lock()
	fe.lastSummary = runSummary{
		MeanSpeed:   stat.Mean(speed, nil),
		MeanOverlap: stat.Mean(overlap, nil),
		Escaped:     stat.Mean(escaped, nil),
	}
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless run and measures the final state.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (runSummary, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.NewGameWithOptions(game.Options{
		Config:   cfg,
		Seed:     seed,
		Headless: true,
		Logger:   fe.logger,
	})
	if err != nil {
		return runSummary{}, err
	}
	defer g.Unload()

	for g.Frame() < fe.frames {
		if err := g.UpdateHeadless(); err != nil {
			return runSummary{}, err
		}
	}

	pos, vel, err := g.ReadParticles()
	if err != nil {
		return runSummary{}, err
	}
	return summarize(pos, vel, cfg), nil
}

// copyConfig returns an independent copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// summarize measures how settled the particles are.
func summarize(pos, vel []mgl32.Vec3, cfg *config.Config) runSummary {
	n := len(pos)
	if n == 0 {
		return runSummary{}
	}
	r := cfg.Particle.Radius
	half := cfg.Derived.HalfBounds

	var s runSummary
	speeds := make([]float64, n)
	for i, v := range vel {
		speeds[i] = float64(v.Vec2().Len())
	}
	s.MeanSpeed = stat.Mean(speeds, nil)

	escaped := 0
	for _, p := range pos {
		if abs(p.X()) > half.X()-r+1e-4 || abs(p.Y()) > half.Y()-r+1e-4 {
			escaped++
		}
	}
	s.Escaped = float64(escaped) / float64(n)
	s.MeanOverlap = meanOverlap(pos, r, cfg.Physics.BoundsSize) / float64(r)
	return s
}

// meanOverlap returns the mean per-particle penetration depth summed over
// touching neighbours.
func meanOverlap(pos []mgl32.Vec3, radius float32, bounds mgl32.Vec2) float64 {
	contact := 2 * radius
	grid := cpu.NewSpatialGrid(bounds.X(), bounds.Y(), contact, 4*len(pos)+1024)
	for i, p := range pos {
		grid.Insert(int32(i), p.X(), p.Y())
	}

	var total float64
	var scratch []cpu.Neighbor
	for i, p := range pos {
		scratch = grid.QueryRadiusInto(scratch[:0], p.X(), p.Y(), contact, int32(i), pos)
		for _, nb := range scratch {
			d := float32(math.Sqrt(float64(nb.DistSq)))
			total += float64(contact - d)
		}
	}
	// Each contact was counted from both sides.
	return total / 2 / float64(len(pos))
}

// computeFitness combines the settling measurements (lower = better).
func computeFitness(s runSummary) float64 {
	return weightSpeed*s.MeanSpeed + weightOverlap*s.MeanOverlap + weightEscaped*s.Escaped
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
