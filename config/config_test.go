package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, PolicyDisk, cfg.Spawn.Policy)
	assert.Equal(t, 32, cfg.Particle.Segments)
	assert.Equal(t, 1, cfg.Physics.Substeps)
	assert.Equal(t, ForceStiffness, cfg.Forces.Model)
	assert.InDelta(t, 16.0, cfg.Physics.BoundsSize.X(), 1e-6)

	// spacing 0 in defaults falls back to 2.5 * radius
	assert.InDelta(t, 2.5*cfg.Particle.Radius, cfg.Derived.GridSpacing, 1e-6)
	assert.InDelta(t, 8.0, cfg.Derived.HalfBounds.X(), 1e-6)
	assert.InDelta(t, 4.5, cfg.Derived.HalfBounds.Y(), 1e-6)
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("spawn:\n  policy: grid\n  count: 9\n  spacing: 0.5\nphysics:\n  substeps: 4\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, PolicyGrid, cfg.Spawn.Policy)
	assert.Equal(t, 9, cfg.Spawn.Count)
	assert.Equal(t, 4, cfg.Physics.Substeps)
	assert.InDelta(t, 0.5, cfg.Derived.GridSpacing, 1e-6)

	// Untouched sections keep the embedded defaults
	assert.Equal(t, 32, cfg.Particle.Segments)
	assert.InDelta(t, -9.8, cfg.Physics.Gravity, 1e-6)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative count", func(c *Config) { c.Spawn.Count = -1 }},
		{"unknown policy", func(c *Config) { c.Spawn.Policy = "spiral" }},
		{"too few segments", func(c *Config) { c.Particle.Segments = 3 }},
		{"too many segments", func(c *Config) { c.Particle.Segments = 65 }},
		{"zero radius", func(c *Config) { c.Particle.Radius = 0 }},
		{"zero substeps", func(c *Config) { c.Physics.Substeps = 0 }},
		{"flat bounds", func(c *Config) { c.Physics.BoundsSize[1] = 0 }},
		{"zero fixed dt", func(c *Config) { c.Physics.FixedDT = 0 }},
		{"negative fixed dt", func(c *Config) { c.Physics.FixedDT = -0.01 }},
		{"negative cutoff", func(c *Config) { c.Forces.Cutoff = -0.1 }},
		{"unknown force model", func(c *Config) { c.Forces.Model = "coulomb" }},
		{"lj without sigma", func(c *Config) {
			c.Forces.Model = ForceLennardJones
			c.Forces.Sigma = 0
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Spawn.Count = 123
	cfg.Forces.Model = ForceLennardJones

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 123, loaded.Spawn.Count)
	assert.Equal(t, ForceLennardJones, loaded.Forces.Model)
	assert.Equal(t, cfg.Physics.ObstacleCentre, loaded.Physics.ObstacleCentre)
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() { global = saved }()

	assert.Panics(t, func() { Cfg() })

	require.NoError(t, Init(""))
	assert.NotNil(t, Cfg())
}
