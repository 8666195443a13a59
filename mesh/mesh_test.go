package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleCounts(t *testing.T) {
	for s := 4; s <= 64; s++ {
		m := Circle(s, 1)
		require.Equal(t, s+1, m.VertexCount(), "segments=%d", s)
		require.Len(t, m.Indices, 3*s, "segments=%d", s)
		require.Equal(t, uint32(3*s), m.IndexCount())
		require.Equal(t, uint32(0), m.Indices[0], "first triangle must start at the centre")
	}
}

func TestCircleFanTopology(t *testing.T) {
	m := Circle(4, 1)
	want := []uint32{
		0, 2, 1,
		0, 3, 2,
		0, 4, 3,
		0, 1, 4, // last segment wraps back to vertex 1
	}
	assert.Equal(t, want, m.Indices)
}

func TestCircleVerticesOnRim(t *testing.T) {
	const radius = 0.25
	m := Circle(32, radius)

	assert.Equal(t, mgl32.Vec3{}, m.Vertices[0])
	for i := 1; i < len(m.Vertices); i++ {
		assert.InDelta(t, radius, m.Vertices[i].Len(), 1e-6, "vertex %d", i)
		assert.Zero(t, m.Vertices[i].Z())
	}

	// Vertex 1 lies on +X
	assert.InDelta(t, radius, m.Vertices[1].X(), 1e-6)
	assert.InDelta(t, 0, m.Vertices[1].Y(), 1e-6)
}

func TestCircleNormalsFaceOneWay(t *testing.T) {
	m := Circle(16, 1)
	require.Len(t, m.Normals, len(m.Vertices))

	for i, n := range m.Normals {
		assert.InDelta(t, 1, n.Len(), 1e-5, "normal %d not unit", i)
		assert.InDelta(t, 0, n.X(), 1e-5)
		assert.InDelta(t, 0, n.Y(), 1e-5)
		// Winding (0, i+2, i+1) is clockwise seen from +Z
		assert.Less(t, n.Z(), float32(0))
	}
}

func TestSubmeshInfo(t *testing.T) {
	m := Circle(8, 1)
	assert.Equal(t, uint32(0), m.IndexStart())
	assert.Equal(t, int32(0), m.BaseVertex())
	assert.Len(t, m.FlatVertices(), 9*3)
}
