package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particles/components"
)

// MaxSubsteps bounds the HUD substep slider.
const MaxSubsteps = 16

const (
	panelW = 220
	panelH = 38 + 18 + 30 + 26*int(components.LayerCount)
)

// PanelRect returns the screen rectangle of the HUD control panel.
func PanelRect(screenW int32) rl.Rectangle {
	return rl.Rectangle{X: float32(screenW - panelW - 10), Y: 10, Width: panelW, Height: panelH}
}

// HUDData holds all the data needed to render the HUD.
type HUDData struct {
	Title      string
	Backend    string
	Particles  int
	Frames     uint64
	Dispatches uint64
	SimTime    float32
	Substeps   int
	ForceModel string
	FPS        int32
	Paused     bool
	Layers     [components.LayerCount]bool
}

// HUDActions reports what the user changed this frame.
type HUDActions struct {
	TogglePause bool
	ResetCamera bool
	Substeps    int // equals HUDData.Substeps when unchanged
	ToggleLayer [components.LayerCount]bool
}

// DrawHUD renders the status text and the control panel, returning the
// user's interactions.
func DrawHUD(data HUDData, screenW, screenH int32) HUDActions {
	actions := HUDActions{Substeps: data.Substeps}

	rl.DrawText(data.Title, 10, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Particles: %d | Model: %s | Backend: %s", data.Particles, data.ForceModel, data.Backend),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Dispatches: %d | Sim time: %.2fs | FPS: %d",
			data.Frames, data.Dispatches, data.SimTime, data.FPS),
		10, 55, 16, rl.LightGray,
	)
	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)

	panel := PanelRect(screenW)
	panelX, panelY := panel.X, panel.Y

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 105, Height: 26}, toggleText(data.Paused, "Resume", "Pause")) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: panelX + 115, Y: panelY, Width: 105, Height: 26}, "Reset View") {
		actions.ResetCamera = true
	}
	panelY += 38

	rl.DrawText(fmt.Sprintf("Substeps: %d", data.Substeps), int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	v := gui.SliderBar(
		rl.Rectangle{X: panelX + 10, Y: panelY, Width: 190, Height: 18},
		"1", fmt.Sprint(MaxSubsteps),
		float32(data.Substeps), 1, MaxSubsteps,
	)
	if n := int(v + 0.5); n != data.Substeps && n >= 1 {
		actions.Substeps = n
	}
	panelY += 30

	for l := components.Layer(0); l < components.LayerCount; l++ {
		text := toggleText(data.Layers[l], "Hide ", "Show ") + l.String()
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 220, Height: 22}, text) {
			actions.ToggleLayer[l] = true
		}
		panelY += 26
	}

	rl.DrawText("Space: pause | Drag: pan | Wheel: zoom | R: reset | O: overlays | H: HUD",
		10, screenH-25, 14, rl.Gray)
	return actions
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
