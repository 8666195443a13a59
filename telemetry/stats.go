package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats summarises the particle state at the end of a window.
type WindowStats struct {
	RunID       string  `csv:"run_id"`
	WindowStart int     `csv:"-"`
	WindowEnd   int     `csv:"window_end"`
	SimTimeSec  float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	// Speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Unit mass, so this is sum(|v|^2)/2.
	KineticEnergy float64 `csv:"kinetic_energy"`

	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`

	// Particles outside bounds minus radius. Nonzero means the kernel leaked.
	Escaped int `csv:"escaped"`
}

// Percentile returns the p-th quantile (p in [0, 1]) of a sorted slice with
// linear interpolation between order statistics. Empty input gives 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// Sampler computes WindowStats from particle buffers. It reuses its scratch
// slices between calls.
type Sampler struct {
	halfBounds mgl32.Vec2
	radius     float32

	speeds []float64
	xs     []float64
	ys     []float64
}

// NewSampler creates a sampler for the given bounds and particle radius.
func NewSampler(bounds mgl32.Vec2, radius float32) *Sampler {
	return &Sampler{halfBounds: bounds.Mul(0.5), radius: radius}
}

// Sample summarises positions and velocities. The two slices must have the
// same length.
func (s *Sampler) Sample(positions, velocities []mgl32.Vec3) WindowStats {
	n := min(len(positions), len(velocities))
	ws := WindowStats{Particles: n}
	if n == 0 {
		return ws
	}

	s.speeds = s.speeds[:0]
	s.xs = s.xs[:0]
	s.ys = s.ys[:0]

	limX := float64(s.halfBounds.X()-s.radius) + 1e-4
	limY := float64(s.halfBounds.Y()-s.radius) + 1e-4
	for i := 0; i < n; i++ {
		p, v := positions[i], velocities[i]
		s.speeds = append(s.speeds, float64(v.Vec2().Len()))
		s.xs = append(s.xs, float64(p.X()))
		s.ys = append(s.ys, float64(p.Y()))
		if math.Abs(float64(p.X())) > limX || math.Abs(float64(p.Y())) > limY {
			ws.Escaped++
		}
	}

	ws.SpeedMean, ws.SpeedStd = stat.MeanStdDev(s.speeds, nil)
	if n == 1 {
		ws.SpeedStd = 0
	}
	ws.KineticEnergy = floats.Dot(s.speeds, s.speeds) / 2
	ws.CentroidX = stat.Mean(s.xs, nil)
	ws.CentroidY = stat.Mean(s.ys, nil)

	sort.Float64s(s.speeds)
	ws.SpeedP10 = Percentile(s.speeds, 0.10)
	ws.SpeedP50 = Percentile(s.speeds, 0.50)
	ws.SpeedP90 = Percentile(s.speeds, 0.90)
	ws.SpeedMax = s.speeds[n-1]
	return ws
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Int("escaped", s.Escaped),
	)
}
