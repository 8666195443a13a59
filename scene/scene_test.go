package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/particles/components"
	"github.com/pthm-cable/particles/config"
)

func byLayer(t *testing.T, s *Scene) map[components.Layer]Outline {
	t.Helper()
	out := make(map[components.Layer]Outline)
	for _, o := range s.Outlines() {
		out[o.Style.Layer] = o
	}
	return out
}

func TestNew_DefaultScene(t *testing.T) {
	cfg := config.Default()
	s := New(cfg)

	require.Equal(t, 3, s.Len())
	layers := byLayer(t, s)

	bounds := layers[components.LayerBounds]
	assert.Equal(t, components.ShapeBox, bounds.Shape.Kind)
	assert.Equal(t, cfg.Physics.BoundsSize.X()/2, bounds.Shape.HalfW)
	assert.Equal(t, cfg.Physics.BoundsSize.Y()/2, bounds.Shape.HalfH)

	obs := layers[components.LayerObstacle]
	assert.Equal(t, cfg.Physics.ObstacleCentre.X(), obs.Position.X)
	assert.Equal(t, cfg.Physics.ObstacleCentre.Y(), obs.Position.Y)
	assert.Equal(t, "obstacle", obs.Label)

	spawn := layers[components.LayerSpawn]
	assert.Equal(t, components.ShapeCircle, spawn.Shape.Kind)
	assert.Equal(t, cfg.Spawn.Radius, spawn.Shape.Radius)
}

func TestNew_NoObstacle(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.ObstacleSize = mgl32.Vec2{}
	s := New(cfg)

	assert.Equal(t, 2, s.Len())
	_, ok := byLayer(t, s)[components.LayerObstacle]
	assert.False(t, ok)
}

func TestNew_GridSpawnRegion(t *testing.T) {
	cfg := config.Default()
	cfg.Spawn.Policy = config.PolicyGrid
	cfg.Spawn.Count = 10
	cfg.Spawn.Centre = mgl32.Vec2{-1, -1}
	cfg.Derived.GridSpacing = 0.5

	spawn := byLayer(t, New(cfg))[components.LayerSpawn]
	// ceil(sqrt(10)) = 4 columns, 3 gaps of 0.5.
	assert.Equal(t, components.ShapeBox, spawn.Shape.Kind)
	assert.InDelta(t, 0.75, spawn.Shape.HalfW, 1e-6)
	assert.InDelta(t, -0.25, spawn.Position.X, 1e-6)
	assert.Equal(t, "spawn grid 4x4", spawn.Label)
}

func TestVisibilityAndHit(t *testing.T) {
	s := New(config.Default())

	label, ok := s.Hit(0.9, -2.4)
	require.True(t, ok)
	assert.Equal(t, "obstacle", label)

	s.SetVisible(components.LayerObstacle, false)
	assert.False(t, s.Visible(components.LayerObstacle))
	assert.Len(t, s.Outlines(), 2)

	label, ok = s.Hit(7.5, -4)
	require.True(t, ok)
	assert.Contains(t, label, "bounds")

	_, ok = s.Hit(50, 50)
	assert.False(t, ok)
}

func TestShapeContains(t *testing.T) {
	box := components.Shape{Kind: components.ShapeBox, HalfW: 1, HalfH: 0.5}
	assert.True(t, box.Contains(0.9, 0.4))
	assert.False(t, box.Contains(0.9, 0.6))

	circle := components.Shape{Kind: components.ShapeCircle, Radius: 1}
	assert.True(t, circle.Contains(0.6, 0.6))
	assert.False(t, circle.Contains(0.8, 0.8))
}
