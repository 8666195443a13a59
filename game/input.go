package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/components"
	"github.com/pthm-cable/particles/renderer"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.showOverlays = !g.showOverlays
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHUD = !g.showHUD
	}

	// Substeps with < > keys (comma and period)
	substeps := g.driver.Params().Substeps
	if rl.IsKeyPressed(rl.KeyComma) && substeps > 1 {
		g.setSubsteps(substeps - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.setSubsteps(substeps + 1)
	}

	// Layer toggles on 1..3
	for l := components.Layer(0); l < components.LayerCount; l++ {
		if rl.IsKeyPressed(rl.KeyOne + int32(l)) {
			g.scene.SetVisible(l, !g.scene.Visible(l))
		}
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.width && h == g.height {
		return
	}
	g.width = w
	g.height = h

	if g.camera != nil {
		g.camera.Resize(w, h)
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Pan in screen pixels per frame
	const panSpeed = float32(8.0)

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panSpeed)
	}

	// Drag to pan; the world follows the cursor
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !g.overHUD(rl.GetMousePosition()) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			g.camera.Pan(delta.X, delta.Y)
		}
	}

	// Zoom controls: mouse wheel or +/- keys
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		zoomFactor := float32(1.0) + wheelMove*0.1
		g.camera.ZoomBy(zoomFactor)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home or R resets the camera
	if rl.IsKeyPressed(rl.KeyHome) || rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
	}
}

// overHUD reports whether p lies on the HUD control panel.
func (g *Game) overHUD(p rl.Vector2) bool {
	if !g.showHUD {
		return false
	}
	return rl.CheckCollisionPointRec(p, renderer.PanelRect(int32(g.width)))
}
