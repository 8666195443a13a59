package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/sim"
)

// Buffer is a GL buffer object. Structured buffers bind as shader storage,
// indirect-args buffers bind as GL_DRAW_INDIRECT_BUFFER.
type Buffer struct {
	id     uint32
	kind   sim.BufferKind
	count  int
	stride int
	device *Device
}

func (b *Buffer) target() uint32 {
	if b.kind == sim.BufferIndirectArgs {
		return gl.DRAW_INDIRECT_BUFFER
	}
	return gl.SHADER_STORAGE_BUFFER
}

func (b *Buffer) size() int { return b.count * b.stride }

func (b *Buffer) SetData(data any) error {
	if b.id == 0 {
		return sim.ErrReleased
	}

	var n int
	var ptr any
	switch v := data.(type) {
	case []mgl32.Vec3:
		if b.kind != sim.BufferStructured {
			return fmt.Errorf("%w: vec3 data for %s buffer", sim.ErrBufferSize, b.kind)
		}
		n = len(v)
		if n > 0 {
			ptr = &v[0][0]
		}
	case []sim.IndirectArgs:
		if b.kind != sim.BufferIndirectArgs {
			return fmt.Errorf("%w: indirect args for %s buffer", sim.ErrBufferSize, b.kind)
		}
		n = len(v)
		if n > 0 {
			ptr = &v[0]
		}
	default:
		return fmt.Errorf("%w: unsupported data type %T", sim.ErrBufferSize, data)
	}
	if n != b.count {
		return fmt.Errorf("%w: %d elements for a %d element buffer", sim.ErrBufferSize, n, b.count)
	}
	if n == 0 {
		return nil
	}

	gl.BindBuffer(b.target(), b.id)
	gl.BufferSubData(b.target(), 0, b.size(), gl.Ptr(ptr))
	gl.BindBuffer(b.target(), 0)
	return checkError("uploading buffer")
}

// Read copies a structured buffer back to host memory. It stalls until the
// GPU has finished writing the buffer.
func (b *Buffer) Read(dst []mgl32.Vec3) error {
	if b.id == 0 {
		return sim.ErrReleased
	}
	if b.kind != sim.BufferStructured || len(dst) != b.count {
		return fmt.Errorf("%w: reading %d vec3 from %s buffer of %d", sim.ErrBufferSize, len(dst), b.kind, b.count)
	}
	if b.count == 0 {
		return nil
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, b.size(), gl.Ptr(&dst[0][0]))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return checkError("reading buffer")
}

func (b *Buffer) Count() int  { return b.count }
func (b *Buffer) Stride() int { return b.stride }

// ID returns the GL buffer name, 0 once released.
func (b *Buffer) ID() uint32 { return b.id }

func (b *Buffer) Release() {
	if b.id == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
	if b.device != nil {
		b.device.live--
	}
}
