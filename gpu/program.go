// Package gpu implements the simulation device on OpenGL 4.3: particle state
// lives in shader storage buffers, CSMain is a compute program, and the
// particle material draws instanced circles with glDrawElementsIndirect.
//
// Every call must run on the thread that owns the GL context, after Init.
package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

//go:embed shaders/particles.comp
var computeSource string

//go:embed shaders/particle.vert
var vertexSource string

//go:embed shaders/particle.frag
var fragmentSource string

var (
	ErrCompile = errors.New("gpu: shader compile failed")
	ErrLink    = errors.New("gpu: program link failed")
	ErrGL      = errors.New("gpu: GL error")
)

// Init loads the GL function pointers for the current context.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gpu: loading GL: %w", err)
	}
	return nil
}

// Version returns the driver's GL version string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Sources returns the embedded shader sources by stage name.
func Sources() map[string]string {
	return map[string]string{
		"compute":  computeSource,
		"vertex":   vertexSource,
		"fragment": fragmentSource,
	}
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", ErrCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func linkProgram(shaders ...uint32) (uint32, error) {
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s)
	}
	gl.LinkProgram(prog)
	for _, s := range shaders {
		gl.DetachShader(prog, s)
		gl.DeleteShader(s)
	}

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(prog, logLength, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("%w: %s", ErrLink, strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

// NewComputeProgram compiles and links a compute shader.
func NewComputeProgram(src string) (uint32, error) {
	cs, err := compileShader(src, gl.COMPUTE_SHADER)
	if err != nil {
		return 0, fmt.Errorf("compute stage: %w", err)
	}
	return linkProgram(cs)
}

// NewRenderProgram compiles and links a vertex/fragment pair.
func NewRenderProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex stage: %w", err)
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("fragment stage: %w", err)
	}
	return linkProgram(vs, fs)
}

// DeletePrograms deletes linked programs.
func DeletePrograms(programs ...uint32) {
	for _, p := range programs {
		gl.DeleteProgram(p)
	}
}

// checkError drains the GL error queue and reports the first error.
func checkError(op string) error {
	first := uint32(gl.NO_ERROR)
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == gl.NO_ERROR {
			first = code
		}
	}
	if first != gl.NO_ERROR {
		return fmt.Errorf("%w: %s: 0x%04X", ErrGL, op, first)
	}
	return nil
}

// uniformCache resolves uniform locations once per name.
type uniformCache struct {
	program uint32
	locs    map[string]int32
}

func newUniformCache(program uint32) uniformCache {
	return uniformCache{program: program, locs: make(map[string]int32)}
}

// location returns -1 for names the program does not declare. GL ignores
// uniform writes to -1.
func (u uniformCache) location(name string) int32 {
	if loc, ok := u.locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(u.program, gl.Str(name+"\x00"))
	u.locs[name] = loc
	return loc
}
