package spawn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/particles/config"
)

func TestLengthsMatchCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 2, 5, 16, 17, 100, 1001} {
		disk := Disk(rng, n, mgl32.Vec2{}, 5)
		assert.Len(t, disk.Positions, n, "disk positions n=%d", n)
		assert.Len(t, disk.Velocities, n, "disk velocities n=%d", n)

		grid := Grid(n, mgl32.Vec2{}, 1)
		assert.Len(t, grid.Positions, n, "grid positions n=%d", n)
		assert.Len(t, grid.Velocities, n, "grid velocities n=%d", n)
		assert.Equal(t, n, grid.Len())
	}
}

func TestDiskStaysInsideRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	centre := mgl32.Vec2{3, -2}
	data := Disk(rng, 2000, centre, 5)

	for i, p := range data.Positions {
		d := mgl32.Vec2{p.X(), p.Y()}.Sub(centre).Len()
		require.LessOrEqual(t, d, float32(5.0001), "particle %d outside disk", i)
		require.Zero(t, p.Z())

		v := data.Velocities[i]
		require.GreaterOrEqual(t, v.X(), float32(-1))
		require.Less(t, v.X(), float32(1))
		require.Zero(t, v.Y())
		require.Zero(t, v.Z())
	}
}

func TestDiskIsSeeded(t *testing.T) {
	a := Disk(rand.New(rand.NewSource(42)), 50, mgl32.Vec2{}, 1)
	b := Disk(rand.New(rand.NewSource(42)), 50, mgl32.Vec2{}, 1)
	assert.Equal(t, a, b)
}

func TestGridRowMajorLayout(t *testing.T) {
	origin := mgl32.Vec2{1, 2}
	data := Grid(5, origin, 0.5)

	// root = ceil(sqrt(5)) = 3: row 0 has 3 cells, row 1 gets the remaining 2
	want := []struct{ i, j int }{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}}
	for k, w := range want {
		pos := data.Positions[k]
		assert.InDelta(t, 1+float32(w.j)*0.5, pos.X(), 1e-6, "x of %d", k)
		assert.InDelta(t, 2+float32(w.i)*0.5, pos.Y(), 1e-6, "y of %d", k)
		assert.Equal(t, mgl32.Vec3{float32(w.i), float32(w.j), 0}, data.Velocities[k])
	}
}

func TestGridScansCeilSquareCells(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 10, 99, 100} {
		data := Grid(n, mgl32.Vec2{}, 1)
		root := int(math.Ceil(math.Sqrt(float64(n))))

		// The last emitted particle sits on the expected cell of the root x root scan
		last := n - 1
		wantRow, wantCol := last/root, last%root
		v := data.Velocities[last]
		assert.Equal(t, float32(wantRow), v.X(), "row n=%d", n)
		assert.Equal(t, float32(wantCol), v.Y(), "col n=%d", n)
		assert.Less(t, wantRow, root)
	}
}

func TestGenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	data, err := Generate(config.SpawnConfig{Policy: config.PolicyGrid, Count: 4, Centre: mgl32.Vec2{0, 0}}, 2, rng)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{2, 2, 0}, data.Positions[3])

	data, err = Generate(config.SpawnConfig{Policy: config.PolicyDisk, Count: 10, Radius: 1}, 0, rng)
	require.NoError(t, err)
	assert.Equal(t, 10, data.Len())

	_, err = Generate(config.SpawnConfig{Policy: "spiral", Count: 1}, 0, rng)
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = Generate(config.SpawnConfig{Policy: config.PolicyGrid, Count: -3}, 1, rng)
	assert.ErrorIs(t, err, ErrNegativeCount)
}
