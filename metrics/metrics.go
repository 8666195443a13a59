// Package metrics exposes simulation counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/particles/telemetry"
)

var (
	// Frames counts completed simulation frames.
	Frames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "particles_frames_total",
		Help: "Total number of simulated frames",
	})

	// Dispatches counts kernel dispatches across all frames.
	Dispatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "particles_dispatches_total",
		Help: "Total number of compute kernel dispatches",
	})

	// FrameSeconds tracks host time spent per frame.
	FrameSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "particles_frame_seconds",
		Help:    "Host time spent simulating and drawing one frame",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// PhaseSeconds is the window-average time per frame phase.
	PhaseSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "particles_phase_seconds",
		Help: "Average time per frame spent in each phase over the last perf window",
	}, []string{"phase"})

	Particles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "particles_count",
		Help: "Number of simulated particles",
	})

	SpeedMean = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "particles_speed_mean",
		Help: "Mean particle speed at the end of the last stats window",
	})

	KineticEnergy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "particles_kinetic_energy",
		Help: "Total kinetic energy at the end of the last stats window",
	})

	Escaped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "particles_escaped",
		Help: "Particles found outside the bounds at the end of the last stats window",
	})
)

// ObserveFrame records one completed frame.
func ObserveFrame(d time.Duration, dispatches int) {
	Frames.Inc()
	Dispatches.Add(float64(dispatches))
	FrameSeconds.Observe(d.Seconds())
}

// ObserveWindow publishes the latest particle statistics.
func ObserveWindow(ws telemetry.WindowStats) {
	Particles.Set(float64(ws.Particles))
	SpeedMean.Set(ws.SpeedMean)
	KineticEnergy.Set(ws.KineticEnergy)
	Escaped.Set(float64(ws.Escaped))
}

// ObservePerf publishes the per-phase averages.
func ObservePerf(ps telemetry.PerfStats) {
	for phase, d := range ps.PhaseAvg {
		PhaseSeconds.WithLabelValues(phase).Set(d.Seconds())
	}
}

// NewServer returns an HTTP server exposing /metrics on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
