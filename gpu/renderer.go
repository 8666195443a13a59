package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/particles/mesh"
	"github.com/pthm-cable/particles/sim"
)

// UniViewProj is the world-to-clip matrix uniform of the particle material.
const UniViewProj = "_viewProj"

type meshObjects struct {
	vao, vbo, ebo uint32
}

// Renderer is the particle material: it places one mesh instance per
// particle from the bound storage buffers and colours it by speed.
type Renderer struct {
	program  uint32
	uniforms uniformCache
	buffers  map[uint32]*Buffer
	meshes   map[*mesh.Mesh]meshObjects
}

// NewRenderer compiles the particle material.
func NewRenderer() (*Renderer, error) {
	prog, err := NewRenderProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("compiling particle material: %w", err)
	}
	return &Renderer{
		program:  prog,
		uniforms: newUniformCache(prog),
		buffers:  make(map[uint32]*Buffer),
		meshes:   make(map[*mesh.Mesh]meshObjects),
	}, nil
}

func (r *Renderer) SetBuffer(name string, b sim.Buffer) error {
	binding, ok := storageBindings[name]
	if !ok {
		return fmt.Errorf("%w: %q", sim.ErrUnknownBinding, name)
	}
	gb, ok := b.(*Buffer)
	if !ok {
		return fmt.Errorf("gpu: cannot bind %T as %s", b, name)
	}
	r.buffers[binding] = gb
	return nil
}

func (r *Renderer) SetFloat(name string, v float32) {
	gl.ProgramUniform1f(r.program, r.uniforms.location(name), v)
}

// SetViewProjection sets the world-to-clip transform.
func (r *Renderer) SetViewProjection(m mgl32.Mat4) {
	gl.ProgramUniformMatrix4fv(r.program, r.uniforms.location(UniViewProj), 1, false, &m[0])
}

// DrawIndirect issues one glDrawElementsIndirect for the mesh using the
// command stored in args.
func (r *Renderer) DrawIndirect(m *mesh.Mesh, args sim.Buffer) error {
	ab, err := r.checkDraw(args)
	if err != nil {
		return err
	}
	objs := r.upload(m)

	cull := gl.IsEnabled(gl.CULL_FACE)
	gl.Disable(gl.CULL_FACE)

	gl.UseProgram(r.program)
	for binding, b := range r.buffers {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, b.id)
	}
	gl.BindVertexArray(objs.vao)
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, ab.id)
	gl.DrawElementsIndirect(gl.TRIANGLES, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindBuffer(gl.DRAW_INDIRECT_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)

	if cull {
		gl.Enable(gl.CULL_FACE)
	}
	return checkError("drawing particles")
}

// checkDraw validates args and every bound storage buffer before any GL
// state is touched.
func (r *Renderer) checkDraw(args sim.Buffer) (*Buffer, error) {
	ab, ok := args.(*Buffer)
	if !ok || ab.kind != sim.BufferIndirectArgs {
		return nil, fmt.Errorf("%w: draw needs an indirect args buffer", sim.ErrBufferSize)
	}
	if ab.id == 0 {
		return nil, sim.ErrReleased
	}
	for _, b := range r.buffers {
		if b.id == 0 {
			return nil, sim.ErrReleased
		}
	}
	return ab, nil
}

// upload creates the vertex and index buffers for m on first use.
func (r *Renderer) upload(m *mesh.Mesh) meshObjects {
	if objs, ok := r.meshes[m]; ok {
		return objs
	}

	var objs meshObjects
	verts := m.FlatVertices()

	gl.GenVertexArrays(1, &objs.vao)
	gl.BindVertexArray(objs.vao)

	gl.GenBuffers(1, &objs.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, objs.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, gl.PtrOffset(0))

	gl.GenBuffers(1, &objs.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, objs.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes[m] = objs
	return objs
}

// Unload releases the program and every uploaded mesh.
func (r *Renderer) Unload() {
	for m, objs := range r.meshes {
		gl.DeleteVertexArrays(1, &objs.vao)
		gl.DeleteBuffers(1, &objs.vbo)
		gl.DeleteBuffers(1, &objs.ebo)
		delete(r.meshes, m)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
