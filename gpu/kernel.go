package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/sim"
)

// Kernel is a compute program plus its storage bindings.
type Kernel struct {
	program  uint32
	uniforms uniformCache
	buffers  map[uint32]*Buffer
}

func newKernel(program uint32) *Kernel {
	return &Kernel{
		program:  program,
		uniforms: newUniformCache(program),
		buffers:  make(map[uint32]*Buffer),
	}
}

func (k *Kernel) SetInt(name string, v int32) {
	gl.ProgramUniform1i(k.program, k.uniforms.location(name), v)
}

func (k *Kernel) SetFloat(name string, v float32) {
	gl.ProgramUniform1f(k.program, k.uniforms.location(name), v)
}

func (k *Kernel) SetVector(name string, v mgl32.Vec2) {
	gl.ProgramUniform2f(k.program, k.uniforms.location(name), v.X(), v.Y())
}

func (k *Kernel) SetBuffer(name string, b sim.Buffer) error {
	binding, ok := storageBindings[name]
	if !ok {
		return fmt.Errorf("%w: %q", sim.ErrUnknownBinding, name)
	}
	gb, ok := b.(*Buffer)
	if !ok {
		return fmt.Errorf("gpu: cannot bind %T as %s", b, name)
	}
	if gb.kind != sim.BufferStructured {
		return fmt.Errorf("%w: %s needs a structured buffer, got %s", sim.ErrBufferSize, name, gb.kind)
	}
	k.buffers[binding] = gb
	return nil
}

// Dispatch binds the storage buffers, runs the program and waits for its
// writes to be visible to the next dispatch and the particle draw.
func (k *Kernel) Dispatch(groupsX, groupsY, groupsZ int) error {
	if groupsX < 1 || groupsY < 1 || groupsZ < 1 {
		return fmt.Errorf("gpu: invalid dispatch %dx%dx%d", groupsX, groupsY, groupsZ)
	}
	gl.UseProgram(k.program)
	for binding, b := range k.buffers {
		if b.id == 0 {
			return sim.ErrReleased
		}
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, b.id)
	}
	gl.DispatchCompute(uint32(groupsX), uint32(groupsY), uint32(groupsZ))
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT)
	gl.UseProgram(0)
	return checkError("dispatching " + sim.KernelName)
}
