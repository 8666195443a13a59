package sim

import "github.com/pthm-cable/particles/mesh"

// IndirectArgs matches the GL DrawElementsIndirectCommand layout.
type IndirectArgs struct {
	IndexCountPerInstance uint32
	InstanceCount         uint32
	StartIndex            uint32
	BaseVertexIndex       int32
	StartInstance         uint32
}

// IndirectArgsStride is the byte size of one IndirectArgs record.
const IndirectArgsStride = 5 * 4

// NewIndirectArgs describes drawing particleCount instances of m's submesh.
func NewIndirectArgs(m *mesh.Mesh, particleCount int) IndirectArgs {
	return IndirectArgs{
		IndexCountPerInstance: m.IndexCount(),
		InstanceCount:         uint32(particleCount),
		StartIndex:            m.IndexStart(),
		BaseVertexIndex:       m.BaseVertex(),
		StartInstance:         0,
	}
}

// ThreadGroups returns the number of work groups needed to cover n particles.
// At least one group is always dispatched.
func ThreadGroups(n int) int {
	groups := (n + ThreadGroupSize - 1) / ThreadGroupSize
	if groups < 1 {
		groups = 1
	}
	return groups
}
