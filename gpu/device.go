package gpu

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/pthm-cable/particles/sim"
)

// storage bindings shared by the compute and render programs.
var storageBindings = map[string]uint32{
	sim.BufPositions:  0,
	sim.BufVelocities: 1,
}

// Device allocates GL buffers and compiles the compute kernels.
type Device struct {
	programs map[string]uint32
	live     int
}

// NewDevice creates a device on the current GL context. Init must have been called.
func NewDevice() *Device {
	slog.Info("gpu device created", "gl_version", Version())
	return &Device{programs: make(map[string]uint32)}
}

func (d *Device) NewBuffer(kind sim.BufferKind, count, stride int) (sim.Buffer, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", sim.ErrBufferSize, count)
	}
	switch kind {
	case sim.BufferStructured:
		if stride != sim.Vec3Stride {
			return nil, fmt.Errorf("%w: structured stride %d, want %d", sim.ErrBufferSize, stride, sim.Vec3Stride)
		}
	case sim.BufferIndirectArgs:
		if stride != sim.IndirectArgsStride {
			return nil, fmt.Errorf("%w: args stride %d, want %d", sim.ErrBufferSize, stride, sim.IndirectArgsStride)
		}
	default:
		return nil, fmt.Errorf("%w: unknown buffer kind %d", sim.ErrBufferSize, kind)
	}

	b := &Buffer{kind: kind, count: count, stride: stride, device: d}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target(), b.id)
	gl.BufferData(b.target(), b.size(), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(b.target(), 0)
	if err := checkError("allocating buffer"); err != nil {
		gl.DeleteBuffers(1, &b.id)
		return nil, err
	}

	d.live++
	return b, nil
}

// FindKernel compiles the named kernel on first use and returns a fresh
// binding set over the shared program.
func (d *Device) FindKernel(name string) (sim.Kernel, error) {
	if name != sim.KernelName {
		return nil, fmt.Errorf("%w: %q", sim.ErrKernelNotFound, name)
	}
	prog, ok := d.programs[name]
	if !ok {
		var err error
		if prog, err = NewComputeProgram(computeSource); err != nil {
			return nil, fmt.Errorf("compiling %s: %w", name, err)
		}
		d.programs[name] = prog
	}
	return newKernel(prog), nil
}

// Live returns the number of buffers allocated and not yet released.
func (d *Device) Live() int { return d.live }

// Unload deletes the compiled programs. Buffers are owned by their callers.
func (d *Device) Unload() {
	for name, prog := range d.programs {
		gl.DeleteProgram(prog)
		delete(d.programs, name)
	}
}
