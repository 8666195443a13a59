package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/particles/telemetry"
)

func TestObserveFrame(t *testing.T) {
	frames := testutil.ToFloat64(Frames)
	dispatches := testutil.ToFloat64(Dispatches)

	ObserveFrame(2*time.Millisecond, 4)
	ObserveFrame(3*time.Millisecond, 4)

	assert.Equal(t, frames+2, testutil.ToFloat64(Frames))
	assert.Equal(t, dispatches+8, testutil.ToFloat64(Dispatches))
}

func TestObserveWindow(t *testing.T) {
	ObserveWindow(telemetry.WindowStats{Particles: 2000, SpeedMean: 1.5, KineticEnergy: 42, Escaped: 1})

	assert.Equal(t, 2000.0, testutil.ToFloat64(Particles))
	assert.Equal(t, 1.5, testutil.ToFloat64(SpeedMean))
	assert.Equal(t, 42.0, testutil.ToFloat64(KineticEnergy))
	assert.Equal(t, 1.0, testutil.ToFloat64(Escaped))
}

func TestObservePerf(t *testing.T) {
	ObservePerf(telemetry.PerfStats{PhaseAvg: map[string]time.Duration{
		telemetry.PhaseSimulate: 4 * time.Millisecond,
	}})

	assert.InDelta(t, 0.004, testutil.ToFloat64(PhaseSeconds.WithLabelValues(telemetry.PhaseSimulate)), 1e-12)
}

func TestNewServerExposesMetrics(t *testing.T) {
	srv := NewServer(":0")
	ObserveFrame(time.Millisecond, 1)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "particles_frames_total")
	assert.Contains(t, string(body), "particles_frame_seconds_bucket")
}
