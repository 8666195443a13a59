// Package spawn generates initial particle positions and velocities.
package spawn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/config"
)

var (
	ErrUnknownPolicy = errors.New("spawn: unknown policy")
	ErrNegativeCount = errors.New("spawn: negative particle count")
)

// InitialData holds per-particle initial state. Positions and Velocities
// always have the same length and are index-aligned.
type InitialData struct {
	Positions  []mgl32.Vec3
	Velocities []mgl32.Vec3
}

// NewInitialData allocates zeroed state for n particles.
func NewInitialData(n int) InitialData {
	return InitialData{
		Positions:  make([]mgl32.Vec3, n),
		Velocities: make([]mgl32.Vec3, n),
	}
}

// Len returns the particle count.
func (d InitialData) Len() int {
	return len(d.Positions)
}

// Disk scatters n particles uniformly inside a disk of the given radius
// around centre, each with a random horizontal velocity in [-1, 1).
func Disk(rng *rand.Rand, n int, centre mgl32.Vec2, radius float32) InitialData {
	data := NewInitialData(n)
	for i := 0; i < n; i++ {
		p := insideUnitCircle(rng).Mul(radius).Add(centre)
		data.Positions[i] = mgl32.Vec3{p.X(), p.Y(), 0}
		data.Velocities[i] = mgl32.Vec3{rng.Float32()*2 - 1, 0, 0}
	}
	return data
}

// Grid lays n particles out row by row on a ceil(sqrt(n)) square grid
// starting at origin. Velocity carries the (row, column) indices of the cell.
// Cells beyond n are skipped.
func Grid(n int, origin mgl32.Vec2, spacing float32) InitialData {
	data := NewInitialData(n)
	root := int(math.Ceil(math.Sqrt(float64(n))))

	total := 0
	for i := 0; i < root; i++ {
		for j := 0; j < root; j++ {
			if total >= n {
				continue
			}
			data.Positions[total] = mgl32.Vec3{
				origin.X() + float32(j)*spacing,
				origin.Y() + float32(i)*spacing,
				0,
			}
			data.Velocities[total] = mgl32.Vec3{float32(i), float32(j), 0}
			total++
		}
	}
	return data
}

// Generate builds initial state from spawn config. spacing is the grid
// spacing already resolved against the particle radius.
func Generate(cfg config.SpawnConfig, spacing float32, rng *rand.Rand) (InitialData, error) {
	if cfg.Count < 0 {
		return InitialData{}, fmt.Errorf("%w: %d", ErrNegativeCount, cfg.Count)
	}

	switch cfg.Policy {
	case config.PolicyDisk:
		return Disk(rng, cfg.Count, cfg.Centre, cfg.Radius), nil
	case config.PolicyGrid:
		return Grid(cfg.Count, cfg.Centre, spacing), nil
	default:
		return InitialData{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, cfg.Policy)
	}
}

// insideUnitCircle returns a point uniformly distributed in the unit disk.
func insideUnitCircle(rng *rand.Rand) mgl32.Vec2 {
	r := float32(math.Sqrt(rng.Float64()))
	theta := rng.Float64() * 2 * math.Pi
	return mgl32.Vec2{
		r * float32(math.Cos(theta)),
		r * float32(math.Sin(theta)),
	}
}
