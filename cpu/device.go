package cpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/sim"
)

// Device allocates host buffers and resolves the Go kernels.
type Device struct {
	live int
}

// NewDevice creates a host-memory device.
func NewDevice() *Device {
	return &Device{}
}

// NewBuffer allocates count elements. The stride must match the element type
// implied by kind.
func (d *Device) NewBuffer(kind sim.BufferKind, count, stride int) (sim.Buffer, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", sim.ErrBufferSize, count)
	}

	b := &Buffer{kind: kind, count: count, stride: stride, device: d}
	switch kind {
	case sim.BufferStructured:
		if stride != sim.Vec3Stride {
			return nil, fmt.Errorf("%w: structured stride %d, want %d", sim.ErrBufferSize, stride, sim.Vec3Stride)
		}
		b.vec3 = make([]mgl32.Vec3, count)
	case sim.BufferIndirectArgs:
		if stride != sim.IndirectArgsStride {
			return nil, fmt.Errorf("%w: args stride %d, want %d", sim.ErrBufferSize, stride, sim.IndirectArgsStride)
		}
		b.args = make([]sim.IndirectArgs, count)
	default:
		return nil, fmt.Errorf("%w: unknown buffer kind %d", sim.ErrBufferSize, kind)
	}

	d.live++
	return b, nil
}

// FindKernel returns a fresh instance of the named kernel.
func (d *Device) FindKernel(name string) (sim.Kernel, error) {
	if name != sim.KernelName {
		return nil, fmt.Errorf("%w: %q", sim.ErrKernelNotFound, name)
	}
	return NewKernel(), nil
}

// Live returns the number of buffers allocated and not yet released.
func (d *Device) Live() int { return d.live }
