package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame.
const (
	PhaseSimulate  = "simulate" // kernel dispatches and the indirect draw
	PhaseOverlay   = "overlay"
	PhaseHUD       = "hud"
	PhaseTelemetry = "telemetry"
)

// Phases lists every phase in frame order.
var Phases = []string{PhaseSimulate, PhaseOverlay, PhaseHUD, PhaseTelemetry}

// FrameSample holds timing data for a single frame.
type FrameSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// PerfCollector keeps a rolling window of frame timings.
type PerfCollector struct {
	window  []FrameSample
	next    int
	filled  int
	current map[string]time.Duration

	frameStart time.Time
	phaseStart time.Time
	phase      string

	// Wall-clock spacing between frames (graphics mode).
	lastPresent time.Time
	presentGap  time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		window:  make([]FrameSample, windowSize),
		current: make(map[string]time.Duration),
		now:     time.Now,
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = p.now()
	p.current = make(map[string]time.Duration, len(Phases))
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.phase = phase
}

// EndFrame closes the running phase and records the frame.
func (p *PerfCollector) EndFrame() {
	now := p.now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
		p.phase = ""
	}

	p.window[p.next] = FrameSample{Duration: now.Sub(p.frameStart), Phases: p.current}
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

// Present records the wall-clock time a frame reached the screen.
func (p *PerfCollector) Present() {
	now := p.now()
	if !p.lastPresent.IsZero() {
		p.presentGap = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration

	// Average duration and share of the frame per phase.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	FramesPerSecond float64 // from average frame work time
	FPS             float64 // from presentation spacing, graphics mode only
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.presentGap > 0 {
		stats.FPS = float64(time.Second) / float64(p.presentGap)
	}
	if p.filled == 0 {
		return stats
	}

	var total time.Duration
	sums := make(map[string]time.Duration)
	for i, s := range p.window[:p.filled] {
		total += s.Duration
		if i == 0 || s.Duration < stats.MinFrame {
			stats.MinFrame = s.Duration
		}
		stats.MaxFrame = max(stats.MaxFrame, s.Duration)
		for phase, d := range s.Phases {
			sums[phase] += d
		}
	}

	n := time.Duration(p.filled)
	stats.AvgFrame = total / n
	for phase, sum := range sums {
		stats.PhaseAvg[phase] = sum / n
		if stats.AvgFrame > 0 {
			stats.PhasePct[phase] = float64(sum/n) / float64(stats.AvgFrame) * 100
		}
	}
	if stats.AvgFrame > 0 {
		stats.FramesPerSecond = float64(time.Second) / float64(stats.AvgFrame)
	}
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	RunID        string  `csv:"run_id"`
	WindowEnd    int     `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	FPS          float64 `csv:"fps"`
	SimulatePct  float64 `csv:"simulate_pct"`
	OverlayPct   float64 `csv:"overlay_pct"`
	HUDPct       float64 `csv:"hud_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at frame windowEnd.
func (s PerfStats) ToCSV(runID string, windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		RunID:        runID,
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrame.Microseconds(),
		MinFrameUS:   s.MinFrame.Microseconds(),
		MaxFrameUS:   s.MaxFrame.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		FPS:          s.FPS,
		SimulatePct:  s.PhasePct[PhaseSimulate],
		OverlayPct:   s.PhasePct[PhaseOverlay],
		HUDPct:       s.PhasePct[PhaseHUD],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
