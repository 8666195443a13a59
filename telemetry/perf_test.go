package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances by step on every read.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Millisecond}
	pc.now = clock.now

	// Reads per frame: start, simulate, overlay, end. Each gap is 1ms.
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseSimulate)
		pc.StartPhase(PhaseOverlay)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrame != 3*time.Millisecond {
		t.Errorf("expected 3ms average frame, got %v", stats.AvgFrame)
	}
	if stats.PhaseAvg[PhaseSimulate] != time.Millisecond {
		t.Errorf("expected 1ms simulate phase, got %v", stats.PhaseAvg[PhaseSimulate])
	}
	if math.Abs(stats.PhasePct[PhaseOverlay]-100.0/3) > 0.01 {
		t.Errorf("expected overlay at 33.3%%, got %.2f", stats.PhasePct[PhaseOverlay])
	}
	if math.Abs(stats.FramesPerSecond-1000.0/3) > 0.01 {
		t.Errorf("expected %.2f frames/s, got %.2f", 1000.0/3, stats.FramesPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Millisecond}
	pc.now = clock.now

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.EndFrame()
	}

	if pc.filled != 3 {
		t.Errorf("expected window of 3, got %d", pc.filled)
	}
	stats := pc.Stats()
	if stats.MinFrame != time.Millisecond || stats.MaxFrame != time.Millisecond {
		t.Errorf("expected 1ms frames, got min %v max %v", stats.MinFrame, stats.MaxFrame)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	pc := NewPerfCollector(0)
	stats := pc.Stats()

	if stats.AvgFrame != 0 || stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Errorf("unexpected empty stats: %+v", stats)
	}
	if len(pc.window) != 60 {
		t.Errorf("expected default window 60, got %d", len(pc.window))
	}
}

func TestPerfCollector_Present(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0), step: 20 * time.Millisecond}
	pc.now = clock.now

	pc.Present()
	pc.Present()

	if fps := pc.Stats().FPS; math.Abs(fps-50) > 0.01 {
		t.Errorf("expected 50 fps, got %.2f", fps)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgFrame: 2 * time.Millisecond,
		PhasePct: map[string]float64{PhaseSimulate: 75, PhaseHUD: 5},
	}
	row := s.ToCSV("run", 120)

	if row.RunID != "run" || row.WindowEnd != 120 {
		t.Errorf("unexpected identity columns: %+v", row)
	}
	if row.AvgFrameUS != 2000 || row.SimulatePct != 75 || row.HUDPct != 5 || row.OverlayPct != 0 {
		t.Errorf("unexpected values: %+v", row)
	}
}
