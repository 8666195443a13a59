// Package mesh builds the per-particle render proxy geometry.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with a single submesh.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
}

// Circle builds a triangle fan: vertex 0 at the centre plus one vertex per
// segment on the rim. Triangle i is (0, i+2, i+1), with the last one wrapping
// back to vertex 1. Config validation keeps segments within [4, 64].
func Circle(segments int, radius float32) *Mesh {
	m := &Mesh{
		Vertices: make([]mgl32.Vec3, segments+1),
		Indices:  make([]uint32, segments*3),
	}

	for i := 0; i < segments; i++ {
		angle := float64(i) * math.Pi * 2 / float64(segments)
		m.Vertices[i+1] = mgl32.Vec3{
			float32(math.Cos(angle)),
			float32(math.Sin(angle)),
			0,
		}.Mul(radius)

		next := i + 2
		if next > segments {
			next = 1
		}
		tri := i * 3
		m.Indices[tri] = 0
		m.Indices[tri+1] = uint32(next)
		m.Indices[tri+2] = uint32(i + 1)
	}

	m.RecalculateNormals()
	return m
}

// RecalculateNormals sets each vertex normal to the normalized sum of the
// face normals of the triangles that use it.
func (m *Mesh) RecalculateNormals() {
	m.Normals = make([]mgl32.Vec3, len(m.Vertices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		face := m.Vertices[b].Sub(m.Vertices[a]).Cross(m.Vertices[c].Sub(m.Vertices[a]))
		m.Normals[a] = m.Normals[a].Add(face)
		m.Normals[b] = m.Normals[b].Add(face)
		m.Normals[c] = m.Normals[c].Add(face)
	}
	for i, n := range m.Normals {
		if n.Len() > 0 {
			m.Normals[i] = n.Normalize()
		}
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the index count of the submesh.
func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// IndexStart returns the first index of the submesh.
func (m *Mesh) IndexStart() uint32 {
	return 0
}

// BaseVertex returns the value added to each index of the submesh.
func (m *Mesh) BaseVertex() int32 {
	return 0
}

// FlatVertices returns the vertex positions as a packed xyz float slice.
func (m *Mesh) FlatVertices() []float32 {
	out := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		out = append(out, v.X(), v.Y(), v.Z())
	}
	return out
}
