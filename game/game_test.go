package game

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/particles/config"
	"github.com/pthm-cable/particles/sim"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Spawn.Count = 200
	cfg.Physics.Substeps = 2
	cfg.Telemetry.StatsWindow = 10
	cfg.Telemetry.PerfWindow = 10
	return cfg
}

func TestHeadlessRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	g, err := NewGameWithOptions(Options{
		Config:    testConfig(),
		Seed:      42,
		OutputDir: dir,
		Headless:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, BackendCPU, g.backend.name)
	assert.Equal(t, sim.Initialized, g.Driver().State())

	for i := 0; i < 30; i++ {
		require.NoError(t, g.UpdateHeadless())
	}
	assert.Equal(t, 30, g.Frame())
	assert.Equal(t, uint64(60), g.Driver().Dispatches())
	assert.InDelta(t, 30*config.Default().Physics.FixedDT, g.SimTime(), 1e-4)

	ws := g.LastWindow()
	assert.Equal(t, 20, ws.WindowStart)
	assert.Equal(t, 30, ws.WindowEnd)
	assert.Equal(t, 200, ws.Particles)
	assert.Zero(t, ws.Escaped)
	assert.Greater(t, ws.SpeedMean, 0.0, "particles fall under gravity")
	assert.Less(t, ws.CentroidY, 1.0, "centroid moves down from the spawn centre")

	g.Unload()
	assert.Equal(t, sim.Destroyed, g.Driver().State())
	assert.Zero(t, g.backend.live())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4, "header plus three windows")

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestHeadlessSameSeedSameState(t *testing.T) {
	run := func() [2]float64 {
		g, err := NewGameWithOptions(Options{Config: testConfig(), Seed: 7, Headless: true})
		require.NoError(t, err)
		defer g.Unload()
		for i := 0; i < 10; i++ {
			require.NoError(t, g.UpdateHeadless())
		}
		ws := g.LastWindow()
		return [2]float64{ws.CentroidX, ws.KineticEnergy}
	}
	assert.Equal(t, run(), run())
}

func TestFixedDTOverride(t *testing.T) {
	g, err := NewGameWithOptions(Options{Config: testConfig(), Headless: true, FixedDT: 0.01})
	require.NoError(t, err)
	defer g.Unload()

	require.NoError(t, g.UpdateHeadless())
	assert.InDelta(t, 0.01, g.SimTime(), 1e-6)
}

func TestNewGameRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown policy", func(c *config.Config) { c.Spawn.Policy = "spiral" }},
		{"unknown force model", func(c *config.Config) { c.Forces.Model = "gravity-well" }},
		{"zero substeps", func(c *config.Config) { c.Physics.Substeps = 0 }},
		{"zero fixed dt", func(c *config.Config) { c.Physics.FixedDT = 0 }},
		{"negative cutoff", func(c *config.Config) { c.Forces.Cutoff = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			g, err := NewGameWithOptions(Options{Config: cfg, Headless: true})
			assert.ErrorIs(t, err, config.ErrInvalid)
			assert.Nil(t, g)
		})
	}
}

func TestSetSubstepsClamped(t *testing.T) {
	g, err := NewGameWithOptions(Options{Config: testConfig(), Headless: true})
	require.NoError(t, err)
	defer g.Unload()

	g.setSubsteps(0)
	assert.Equal(t, 1, g.Driver().Params().Substeps)
	g.setSubsteps(1000)
	assert.Equal(t, 16, g.Driver().Params().Substeps)
}

func TestReadParticles(t *testing.T) {
	g, err := NewGameWithOptions(Options{Config: testConfig(), Seed: 3, Headless: true})
	require.NoError(t, err)

	pos, vel, err := g.ReadParticles()
	require.NoError(t, err)
	assert.Len(t, pos, 200)
	assert.Len(t, vel, 200)
	for _, v := range vel {
		assert.Zero(t, v.Y(), "disk spawn velocities are horizontal")
	}

	g.Unload()
	_, _, err = g.ReadParticles()
	assert.Error(t, err)
}

func TestTelemetryErrorsUseInjectedLogger(t *testing.T) {
	var logs bytes.Buffer
	g, err := NewGameWithOptions(Options{
		Config:    testConfig(),
		Seed:      3,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Headless:  true,
		Logger:    slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	require.NoError(t, err)
	defer g.Unload()

	// Closed files make the next window's CSV writes fail.
	require.NoError(t, g.output.Close())
	for i := 0; i < 10; i++ {
		require.NoError(t, g.UpdateHeadless())
	}

	out := logs.String()
	assert.Contains(t, out, "failed to write telemetry")
	assert.Contains(t, out, "failed to write perf")
}
