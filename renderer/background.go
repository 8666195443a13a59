// Package renderer draws everything around the particles: the background
// grid, scene overlays and the HUD.
package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/camera"
)

//go:embed shaders/background.fs
var backgroundFS string

// BackgroundRenderer fills the screen with a vignette and a one-unit world
// grid inside the simulation bounds.
type BackgroundRenderer struct {
	shader        rl.Shader
	resolutionLoc int32
	cameraPosLoc  int32
	cameraZoomLoc int32
	boundsLoc     int32
	baseColorLoc  int32

	boundsW, boundsH float32
	baseColor        [3]float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(boundsW, boundsH float32, baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		boundsW: boundsW,
		boundsH: boundsH,
		baseColor: [3]float32{
			float32(baseR) / 255.0,
			float32(baseG) / 255.0,
			float32(baseB) / 255.0,
		},
	}
}

// Init compiles the shader (must be called after the raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.cameraPosLoc = rl.GetShaderLocation(b.shader, "cameraPos")
	b.cameraZoomLoc = rl.GetShaderLocation(b.shader, "cameraZoom")
	b.boundsLoc = rl.GetShaderLocation(b.shader, "boundsSize")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")

	rl.SetShaderValue(b.shader, b.boundsLoc, []float32{b.boundsW, b.boundsH}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.baseColorLoc, b.baseColor[:], rl.ShaderUniformVec3)

	b.initialized = true
}

// Draw renders the background for the current camera.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{cam.ViewportW, cam.ViewportH}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.cameraPosLoc, []float32{cam.X, cam.Y}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.cameraZoomLoc, []float32{cam.Zoom}, rl.ShaderUniformFloat)
	rl.DrawRectangle(0, 0, int32(cam.ViewportW), int32(cam.ViewportH), rl.White)
	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
