package sim

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/mesh"
)

// KernelName is the compute entry point the driver dispatches.
const KernelName = "CSMain"

// ThreadGroupSize is the number of particles one work group integrates.
const ThreadGroupSize = 64

// Buffer and uniform names shared by the kernel and the particle material.
const (
	BufPositions  = "_particlePositions"
	BufVelocities = "_particleVelocities"

	UniParticleCount   = "_particleCount"
	UniDeltaTime       = "_deltaTime"
	UniParticleRadius  = "_particleRadius"
	UniCollisionDamp   = "_collisionDamping"
	UniGravity         = "_gravity"
	UniBoundsSize      = "_boundsSize"
	UniObstacleSize    = "_obstacleSize"
	UniObstacleCentre  = "_obstacleCentre"
	UniForceModel      = "_forceModel"
	UniForceCutoff     = "_forceCutoff"
	UniInfluenceRadius = "_particleInfluenceRadius"
	UniForceMultiplier = "_forceMultiplier"
	UniStiffness       = "_stiffness"
	UniLJSigma         = "_ljSigma"
	UniLJEpsilon       = "_ljEpsilon"
	UniMaxSpeed        = "_maxSpeed"
)

// Vec3Stride is the byte size of one position or velocity element.
const Vec3Stride = 3 * 4

var (
	ErrKernelNotFound = errors.New("kernel not found")
	ErrUnknownBinding = errors.New("unknown binding name")
	ErrBufferSize     = errors.New("buffer size mismatch")
	ErrReleased       = errors.New("buffer already released")
)

// BufferKind is the intended use of a device buffer.
type BufferKind uint8

const (
	BufferStructured BufferKind = iota
	BufferIndirectArgs
)

func (k BufferKind) String() string {
	switch k {
	case BufferStructured:
		return "structured"
	case BufferIndirectArgs:
		return "indirect_args"
	default:
		return "unknown"
	}
}

// Buffer is a fixed-size device allocation of Count elements of Stride bytes.
type Buffer interface {
	// SetData uploads a []mgl32.Vec3 or []IndirectArgs whose length matches Count.
	SetData(data any) error
	Count() int
	Stride() int
	// Release frees the allocation. Releasing twice is a no-op.
	Release()
}

// Device allocates buffers and resolves kernels.
type Device interface {
	NewBuffer(kind BufferKind, count, stride int) (Buffer, error)
	FindKernel(name string) (Kernel, error)
}

// Kernel is a compute program with named parameters.
type Kernel interface {
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVector(name string, v mgl32.Vec2)
	SetBuffer(name string, b Buffer) error
	Dispatch(groupsX, groupsY, groupsZ int) error
}

// Renderer draws mesh instances whose placement comes from bound buffers.
type Renderer interface {
	SetBuffer(name string, b Buffer) error
	SetFloat(name string, v float32)
	DrawIndirect(m *mesh.Mesh, args Buffer) error
}
