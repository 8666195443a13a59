// Package cpu implements the simulation device in host memory: buffers are
// Go slices and the CSMain kernel is a Go implementation of the particle
// physics. It backs headless runs and tests.
package cpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/sim"
)

// Buffer is a host-memory device buffer.
type Buffer struct {
	kind     sim.BufferKind
	count    int
	stride   int
	vec3     []mgl32.Vec3
	args     []sim.IndirectArgs
	released bool
	device   *Device
}

func (b *Buffer) SetData(data any) error {
	if b.released {
		return sim.ErrReleased
	}

	switch v := data.(type) {
	case []mgl32.Vec3:
		if b.kind != sim.BufferStructured {
			return fmt.Errorf("%w: vec3 data for %s buffer", sim.ErrBufferSize, b.kind)
		}
		if len(v) != b.count {
			return fmt.Errorf("%w: %d elements for a %d element buffer", sim.ErrBufferSize, len(v), b.count)
		}
		copy(b.vec3, v)
	case []sim.IndirectArgs:
		if b.kind != sim.BufferIndirectArgs {
			return fmt.Errorf("%w: indirect args for %s buffer", sim.ErrBufferSize, b.kind)
		}
		if len(v) != b.count {
			return fmt.Errorf("%w: %d records for a %d record buffer", sim.ErrBufferSize, len(v), b.count)
		}
		copy(b.args, v)
	default:
		return fmt.Errorf("%w: unsupported data type %T", sim.ErrBufferSize, data)
	}
	return nil
}

func (b *Buffer) Count() int  { return b.count }
func (b *Buffer) Stride() int { return b.stride }

func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.vec3 = nil
	b.args = nil
	if b.device != nil {
		b.device.live--
	}
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.released }

// Vec3s returns the live contents of a structured buffer.
func (b *Buffer) Vec3s() []mgl32.Vec3 { return b.vec3 }

// Args returns the live contents of an indirect-args buffer.
func (b *Buffer) Args() []sim.IndirectArgs { return b.args }
