package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/metrics"
	"github.com/pthm-cable/particles/telemetry"
)

// flushTelemetry closes the stats window every telemetry.stats_window frames.
func (g *Game) flushTelemetry() {
	window := g.cfg.Telemetry.StatsWindow
	frame := g.Frame()
	if window <= 0 || frame == 0 || frame%window != 0 || frame == g.windowStart {
		return
	}

	stats, err := g.sampleWindow()
	if err != nil {
		g.logger.Error("failed to sample particles", "error", err)
		return
	}
	stats.WindowStart = g.windowStart
	stats.WindowEnd = frame
	stats.SimTimeSec = g.simTime
	g.windowStart = frame
	g.lastWindow = stats

	perfStats := g.perf.Stats()
	metrics.ObserveWindow(stats)
	metrics.ObservePerf(perfStats)

	// Log stats if enabled (console output)
	if g.logStats {
		g.logger.Info("stats", "window", stats)
		g.logger.Info("perf", "stats", perfStats)
	}
	if stats.Escaped > 0 {
		g.logger.Warn("particles escaped bounds", "escaped", stats.Escaped, "frame", frame)
	}

	// Write to CSV if output manager is enabled
	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			g.logger.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, frame); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}
}

// ReadParticles copies the particle state back to the host. The returned
// slices are reused by the next call.
func (g *Game) ReadParticles() (positions, velocities []mgl32.Vec3, err error) {
	pos, vel := g.driver.Buffers()
	if pos == nil || vel == nil {
		return nil, nil, fmt.Errorf("reading particles: driver is %s", g.driver.State())
	}

	n := g.driver.ParticleCount()
	if cap(g.hostPos) < n {
		g.hostPos = make([]mgl32.Vec3, n)
		g.hostVel = make([]mgl32.Vec3, n)
	}
	g.hostPos, g.hostVel = g.hostPos[:n], g.hostVel[:n]

	if err := g.backend.read(pos, g.hostPos); err != nil {
		return nil, nil, fmt.Errorf("reading positions: %w", err)
	}
	if err := g.backend.read(vel, g.hostVel); err != nil {
		return nil, nil, fmt.Errorf("reading velocities: %w", err)
	}
	return g.hostPos, g.hostVel, nil
}

// sampleWindow summarises the current particle state.
func (g *Game) sampleWindow() (telemetry.WindowStats, error) {
	pos, vel, err := g.ReadParticles()
	if err != nil {
		return telemetry.WindowStats{}, err
	}
	return g.sampler.Sample(pos, vel), nil
}
