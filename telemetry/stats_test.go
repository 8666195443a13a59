package telemetry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSampler_Sample(t *testing.T) {
	s := NewSampler(mgl32.Vec2{10, 10}, 0.1)

	positions := []mgl32.Vec3{{-1, 0, 0}, {1, 2, 0}, {3, 1, 0}, {1, -3, 0}}
	velocities := []mgl32.Vec3{{3, 4, 0}, {0, 0, 0}, {1, 0, 0}, {0, -2, 0}}

	ws := s.Sample(positions, velocities)

	assert.Equal(t, 4, ws.Particles)
	// Speeds: 5, 0, 1, 2.
	assert.InDelta(t, 2.0, ws.SpeedMean, 1e-9)
	assert.InDelta(t, math.Sqrt(14.0/3), ws.SpeedStd, 1e-9)
	assert.InDelta(t, 1.5, ws.SpeedP50, 1e-9)
	assert.InDelta(t, 5.0, ws.SpeedMax, 1e-9)
	assert.InDelta(t, 15.0, ws.KineticEnergy, 1e-9)
	assert.InDelta(t, 1.0, ws.CentroidX, 1e-9)
	assert.InDelta(t, 0.0, ws.CentroidY, 1e-9)
	assert.Zero(t, ws.Escaped)
}

func TestSampler_Escaped(t *testing.T) {
	s := NewSampler(mgl32.Vec2{4, 2}, 0.1)

	positions := []mgl32.Vec3{{1.9, 0, 0}, {1.95, 0, 0}, {0, -0.9, 0}, {0, 0.95, 0}}
	velocities := make([]mgl32.Vec3, len(positions))

	ws := s.Sample(positions, velocities)
	assert.Equal(t, 2, ws.Escaped)
}

func TestSampler_EdgeCases(t *testing.T) {
	s := NewSampler(mgl32.Vec2{10, 10}, 0.1)

	empty := s.Sample(nil, nil)
	assert.Equal(t, 0, empty.Particles)
	assert.Zero(t, empty.SpeedMean)

	one := s.Sample([]mgl32.Vec3{{0, 0, 0}}, []mgl32.Vec3{{0, 2, 0}})
	assert.Equal(t, 1, one.Particles)
	assert.Zero(t, one.SpeedStd)
	assert.InDelta(t, 2.0, one.SpeedP90, 1e-9)
	assert.False(t, math.IsNaN(one.SpeedStd))
}
